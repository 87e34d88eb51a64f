// Package score holds the pure scoring functions the recommendation
// engine composes. The constants here are calibration values: changing
// them changes observable ranking.
package score

import (
	"math"
	"strings"
	"time"

	"github.com/kljensen/snowball/english"

	"github.com/rummage-io/rummage/pkg/rummage/catalog"
)

// Weights defines the composite weights for the three ranking paths.
type Weights struct {
	// searchAndRecommend, text-matched candidates
	SearchText       float64
	SearchContent    float64
	SearchAffinity   float64
	SearchPopularity float64
	SearchFreshness  float64

	// searchAndRecommend, affinity backfill candidates
	BackfillAffinity   float64
	BackfillPopularity float64
	BackfillFreshness  float64

	// per-user recommendations
	PersonalAffinity   float64
	PersonalPopularity float64
	PersonalFreshness  float64
}

// DefaultWeights returns the calibrated composite weights.
func DefaultWeights() Weights {
	return Weights{
		SearchText:       0.4,
		SearchContent:    0.2,
		SearchAffinity:   0.2,
		SearchPopularity: 0.1,
		SearchFreshness:  0.1,

		BackfillAffinity:   0.6,
		BackfillPopularity: 0.2,
		BackfillFreshness:  0.2,

		PersonalAffinity:   0.5,
		PersonalPopularity: 0.3,
		PersonalFreshness:  0.2,
	}
}

// ContentOverlap measures stemmed-token overlap between the query and
// the listing's title, description, and tags. A query token counts as
// matched when it is a substring of, or contains, any listing token.
// The result is the matched fraction of the query tokens.
func ContentOverlap(query string, l catalog.Listing) float64 {
	qTerms := stemmed(query)
	if len(qTerms) == 0 {
		return 0
	}
	text := l.Title + " " + l.Description + " " + strings.Join(l.Tags, " ")
	lTerms := stemmed(text)

	matched := 0
	for _, q := range qTerms {
		for _, t := range lTerms {
			if strings.Contains(t, q) || strings.Contains(q, t) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(qTerms))
}

func stemmed(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, english.Stem(f, false))
	}
	return out
}

// Popularity is the engagement subscore. It is intentionally not
// normalized per catalog and has no upper bound.
func Popularity(l catalog.Listing) float64 {
	const (
		viewWeight = 0.1
		likeWeight = 0.3
	)
	return (float64(l.Views)*viewWeight + float64(l.Likes)*likeWeight) / 100
}

// Freshness decays linearly from 1 to 0 over 30 days since posting.
// Future-dated listings score above 1.
func Freshness(l catalog.Listing, now time.Time) float64 {
	ageDays := now.Sub(l.PostedAt).Hours() / 24
	return math.Max(0, 1-ageDays/30)
}
