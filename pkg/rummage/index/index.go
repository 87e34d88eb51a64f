// Package index provides a fuzzy, field-weighted text index over the
// catalog. It is built once from the full listing set and rebuilt on
// demand; searching never mutates it.
package index

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/rummage-io/rummage/pkg/rummage/catalog"
)

// Config controls field weighting and match looseness. Field weights
// establish relative importance only; they do not need to sum to 1.
// Threshold is on a 0=exact .. 1=very loose distance scale: a listing
// matches when its best field distance does not exceed it.
type Config struct {
	TitleWeight       float64
	DescriptionWeight float64
	TagsWeight        float64
	CategoryWeight    float64
	Threshold         float64
}

// DefaultConfig returns the calibrated index configuration.
func DefaultConfig() Config {
	return Config{
		TitleWeight:       0.3,
		DescriptionWeight: 0.2,
		TagsWeight:        0.3,
		CategoryWeight:    0.2,
		Threshold:         0.4,
	}
}

// Match is one search hit. Distance is a combined quality measure
// where lower means better; callers conventionally report
// 1 - Distance as the search score.
type Match struct {
	ListingID string
	Distance  float64
}

// Index is the searchable form of the catalog.
type Index struct {
	cfg     Config
	tok     *Tokenizer
	entries []entry
}

// entry holds the tokenized fields of one listing, in catalog order.
type entry struct {
	id     string
	fields [numFields][]string
}

const (
	fieldTitle = iota
	fieldDescription
	fieldTags
	fieldCategory
	numFields
)

// epsilon stands in for a perfect field match so the weighted product
// stays well-defined.
const epsilon = 0.001

// New creates an empty index.
func New(cfg Config, tok *Tokenizer) *Index {
	if tok == nil {
		tok = NewTokenizer(nil)
	}
	return &Index{cfg: cfg, tok: tok}
}

// Build (re)indexes the given listings, replacing any previous state.
// Calling it twice with the same catalog yields an identical index.
func (ix *Index) Build(listings []catalog.Listing) {
	entries := make([]entry, 0, len(listings))
	for _, l := range listings {
		e := entry{id: l.ID}
		e.fields[fieldTitle] = ix.tok.Tokenize(l.Title)
		e.fields[fieldDescription] = ix.tok.Tokenize(l.Description)
		e.fields[fieldTags] = ix.tok.Tokenize(strings.Join(l.Tags, " "))
		e.fields[fieldCategory] = ix.tok.Tokenize(string(l.Category))
		entries = append(entries, e)
	}
	ix.entries = entries
}

// Search returns listings matching the query, best first. Ties keep
// catalog order. An empty query matches nothing.
func (ix *Index) Search(query string) []Match {
	qTokens := ix.tok.Tokenize(query)
	if len(qTokens) == 0 {
		return nil
	}

	weights := [numFields]float64{
		fieldTitle:       ix.cfg.TitleWeight,
		fieldDescription: ix.cfg.DescriptionWeight,
		fieldTags:        ix.cfg.TagsWeight,
		fieldCategory:    ix.cfg.CategoryWeight,
	}

	var matches []Match
	for _, e := range ix.entries {
		best := 1.0
		combined := 1.0
		for f := 0; f < numFields; f++ {
			if len(e.fields[f]) == 0 || weights[f] <= 0 {
				continue
			}
			d := fieldDistance(qTokens, e.fields[f])
			if d < best {
				best = d
			}
			// Weighted multiplicative combination: a strong match in
			// any one field dominates the listing's distance.
			combined *= math.Pow(math.Max(d, epsilon), weights[f])
		}
		if best > ix.cfg.Threshold {
			continue
		}
		matches = append(matches, Match{ListingID: e.id, Distance: combined})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	return matches
}

// fieldDistance averages, over the query tokens, the distance to the
// closest field token.
func fieldDistance(qTokens, fTokens []string) float64 {
	sum := 0.0
	for _, q := range qTokens {
		best := 1.0
		for _, t := range fTokens {
			if d := tokenDistance(q, t); d < best {
				best = d
			}
			if best == 0 {
				break
			}
		}
		sum += best
	}
	return sum / float64(len(qTokens))
}

// tokenDistance measures how far apart two tokens are on a 0..1 scale.
// Exact matches are 0; substring containment is penalized only by the
// unmatched remainder; everything else falls back to normalized edit
// distance.
func tokenDistance(q, t string) float64 {
	if q == t {
		return 0
	}
	lq, lt := utf8.RuneCountInString(q), utf8.RuneCountInString(t)
	long, short := float64(lq), float64(lt)
	if lt > lq {
		long, short = float64(lt), float64(lq)
	}
	if short >= 2 && (strings.Contains(q, t) || strings.Contains(t, q)) {
		return 0.5 * (long - short) / long
	}
	return float64(levenshtein.ComputeDistance(q, t)) / long
}
