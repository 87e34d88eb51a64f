// Package filter implements the caller-side post-processing applied to
// ranked results: attribute filters and explicit re-sorts. The engine
// itself never enforces these; they run over its output.
package filter

import (
	"sort"
	"strings"

	"github.com/rummage-io/rummage/pkg/rummage"
	"github.com/rummage-io/rummage/pkg/rummage/catalog"
)

// Params narrows a result list. Zero values leave a dimension
// unconstrained; PriceMax <= 0 means no upper bound.
type Params struct {
	Category   catalog.Category
	Conditions []catalog.Condition
	Location   string
	PriceMin   float64
	PriceMax   float64
}

// Apply filters the results, preserving their order.
func Apply(recs []rummage.Recommendation, p Params) []rummage.Recommendation {
	out := make([]rummage.Recommendation, 0, len(recs))
	for _, r := range recs {
		if p.matches(r.Listing) {
			out = append(out, r)
		}
	}
	return out
}

func (p Params) matches(l catalog.Listing) bool {
	if p.Category != "" && l.Category != p.Category {
		return false
	}
	if len(p.Conditions) > 0 && !containsCondition(p.Conditions, l.Condition) {
		return false
	}
	if p.Location != "" && !strings.Contains(strings.ToLower(l.Location), strings.ToLower(p.Location)) {
		return false
	}
	if l.Price < p.PriceMin {
		return false
	}
	if p.PriceMax > 0 && l.Price > p.PriceMax {
		return false
	}
	return true
}

func containsCondition(conds []catalog.Condition, c catalog.Condition) bool {
	for _, cond := range conds {
		if cond == c {
			return true
		}
	}
	return false
}

// SortKey selects an explicit re-sort of ranked results.
type SortKey string

const (
	SortRelevance SortKey = "relevance" // keep the engine's order
	SortPriceLow  SortKey = "price_low"
	SortPriceHigh SortKey = "price_high"
	SortNewest    SortKey = "newest"
	SortPopular   SortKey = "popular"
)

// Sort reorders results in place. Unknown keys (and SortRelevance)
// leave the engine's relevance order untouched.
func Sort(recs []rummage.Recommendation, key SortKey) {
	switch key {
	case SortPriceLow:
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].Listing.Price < recs[j].Listing.Price
		})
	case SortPriceHigh:
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].Listing.Price > recs[j].Listing.Price
		})
	case SortNewest:
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].Listing.PostedAt.After(recs[j].Listing.PostedAt)
		})
	case SortPopular:
		// Raw engagement, not the popularity subscore.
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].Listing.Likes+recs[i].Listing.Views >
				recs[j].Listing.Likes+recs[j].Listing.Views
		})
	}
}
