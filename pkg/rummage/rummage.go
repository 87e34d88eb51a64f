// Package rummage is a recommendation and ranking engine for a
// second-hand marketplace catalog. It combines fuzzy text search,
// per-user preference modeling, popularity, and freshness into a
// single relevance score and returns ordered, explained result lists.
//
// The engine owns two pieces of derived state, a text index and a
// preference model, both rebuilt deterministically from the store's
// catalog and interaction log. Scoring itself is pure and synchronous.
package rummage

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rummage-io/rummage/pkg/rummage/catalog"
	"github.com/rummage-io/rummage/pkg/rummage/config"
	"github.com/rummage-io/rummage/pkg/rummage/index"
	"github.com/rummage-io/rummage/pkg/rummage/prefs"
	"github.com/rummage-io/rummage/pkg/rummage/score"
	"github.com/rummage-io/rummage/pkg/rummage/store"
)

// Default result list sizes, applied by callers that have no better
// idea (the engine itself treats the limit argument as authoritative).
const (
	DefaultSearchLimit   = 10
	DefaultPersonalLimit = 6
)

// Human-readable reason tags attached to results.
const (
	reasonSearchMatch    = "Matches your search"
	reasonSimilarContent = "Similar content"
	reasonInterests      = "Based on your interests"
	reasonPopular        = "Popular item"
	reasonRecent         = "Recently posted"
	reasonRecommended    = "Recommended for you"
	reasonFallback       = "You might like this"
)

// Reason thresholds. Calibration constants; the raw like-count check
// deliberately bypasses the popularity subscore on the search path.
const (
	searchReasonCutoff     = 0.6
	contentReasonCutoff    = 0.5
	affinityReasonCutoff   = 2.0
	likesReasonCutoff      = 10
	popularityReasonCutoff = 0.5
	freshnessReasonCutoff  = 0.8
	backfillAffinityGate   = 1.0
)

// Recommendation is one ranked result: the listing, its composite
// score, and the reasons it was included. Plain data, safe to
// serialize.
type Recommendation struct {
	Listing catalog.Listing
	Score   float64
	Reasons []string
}

// Options configures an Engine.
type Options struct {
	Store  store.Store
	Config config.Config // zero value means config.Default()
	Now    func() time.Time
}

// Engine is the recommendation orchestrator. It is safe for
// concurrent readers; Rebuild swaps the derived state atomically.
type Engine struct {
	store   store.Store
	cfg     config.Config
	weights score.Weights
	now     func() time.Time

	mu   sync.RWMutex
	snap *snapshot
}

// snapshot is the immutable derived state one query runs against.
type snapshot struct {
	listings []catalog.Listing
	byID     map[string]catalog.Listing
	index    *index.Index
	prefs    *prefs.Model
}

// New creates an engine and eagerly builds its index and preference
// model from the store.
func New(ctx context.Context, opts Options) (*Engine, error) {
	cfg := opts.Config
	if cfg.Index == (config.Index{}) {
		cfg = config.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	e := &Engine{
		store:   opts.Store,
		cfg:     cfg,
		weights: cfg.ScoreWeights(),
		now:     now,
	}
	if err := e.Rebuild(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// Close releases the underlying store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Rebuild reloads the catalog and interaction log and reconstructs the
// index and preference model. It is idempotent and safe to call while
// queries are running: readers see either the old snapshot or the new
// one, never a mix.
func (e *Engine) Rebuild(ctx context.Context) error {
	listings, err := e.store.ListListings(ctx)
	if err != nil {
		return err
	}
	interactions, err := e.store.ListInteractions(ctx)
	if err != nil {
		return err
	}

	next := &snapshot{
		listings: listings,
		byID:     make(map[string]catalog.Listing, len(listings)),
	}
	for _, l := range listings {
		next.byID[l.ID] = l
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		ix := index.New(e.cfg.IndexConfig(), index.NewTokenizer(e.cfg.Stopwords))
		ix.Build(listings)
		next.index = ix
		return nil
	})
	g.Go(func() error {
		next.prefs = prefs.Build(listings, interactions)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	e.mu.Lock()
	e.snap = next
	e.mu.Unlock()
	return nil
}

func (e *Engine) snapshot() *snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

// SearchAndRecommend ranks listings for a free-text query, optionally
// personalized. When the query matches fewer than limit listings and a
// user is given, high-affinity listings backfill the tail. Sold
// listings never appear; empty queries, unknown users, and zero
// matches all degrade to shorter (possibly empty) lists.
func (e *Engine) SearchAndRecommend(query, userID string, limit int) []Recommendation {
	snap := e.snapshot()
	if snap == nil || limit <= 0 {
		return nil
	}
	now := e.now()
	w := e.weights

	recs := make([]Recommendation, 0, limit)
	seen := make(map[string]struct{})

	for _, m := range snap.index.Search(query) {
		l, ok := snap.byID[m.ListingID]
		if !ok || l.Sold {
			continue
		}

		var reasons []string
		total := 0.0

		// The index reports distance; invert so 1.0 is a perfect match.
		searchScore := 1 - m.Distance
		total += searchScore * w.SearchText
		if searchScore > searchReasonCutoff {
			reasons = append(reasons, reasonSearchMatch)
		}

		contentScore := score.ContentOverlap(query, l)
		total += contentScore * w.SearchContent
		if contentScore > contentReasonCutoff {
			reasons = append(reasons, reasonSimilarContent)
		}

		if userID != "" {
			affinity := snap.prefs.Affinity(userID, l)
			total += affinity * w.SearchAffinity
			if affinity > affinityReasonCutoff {
				reasons = append(reasons, reasonInterests)
			}
		}

		total += score.Popularity(l) * w.SearchPopularity
		if l.Likes > likesReasonCutoff {
			reasons = append(reasons, reasonPopular)
		}

		freshness := score.Freshness(l, now)
		total += freshness * w.SearchFreshness
		if freshness > freshnessReasonCutoff {
			reasons = append(reasons, reasonRecent)
		}

		seen[l.ID] = struct{}{}
		recs = append(recs, Recommendation{Listing: l, Score: total, Reasons: reasons})
	}

	// Backfill with listings the user has shown affinity for. Only
	// kicks in when search produced strictly fewer results than asked
	// for.
	if userID != "" && len(recs) < limit {
		for _, l := range snap.listings {
			if l.Sold {
				continue
			}
			if _, dup := seen[l.ID]; dup {
				continue
			}
			affinity := snap.prefs.Affinity(userID, l)
			if affinity <= backfillAffinityGate {
				continue
			}

			popularity := score.Popularity(l)
			freshness := score.Freshness(l, now)
			total := affinity*w.BackfillAffinity + popularity*w.BackfillPopularity + freshness*w.BackfillFreshness

			reasons := []string{reasonRecommended}
			if popularity > popularityReasonCutoff {
				reasons = append(reasons, reasonPopular)
			}
			if freshness > freshnessReasonCutoff {
				reasons = append(reasons, reasonRecent)
			}
			recs = append(recs, Recommendation{Listing: l, Score: total, Reasons: reasons})
		}
	}

	sortByScore(recs)
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

// RecommendForUser produces personalized recommendations. Users with
// no interaction history get the popularity-ranked catalog (cold
// start); everyone else gets affinity-led scoring with a guaranteed
// non-empty reason list.
func (e *Engine) RecommendForUser(userID string, limit int) []Recommendation {
	snap := e.snapshot()
	if snap == nil || limit <= 0 {
		return nil
	}
	now := e.now()
	w := e.weights

	recs := make([]Recommendation, 0, limit)

	if !snap.prefs.HasProfile(userID) {
		for _, l := range snap.listings {
			if l.Sold {
				continue
			}
			recs = append(recs, Recommendation{
				Listing: l,
				Score:   score.Popularity(l),
				Reasons: []string{reasonPopular},
			})
		}
		sortByScore(recs)
		if len(recs) > limit {
			recs = recs[:limit]
		}
		return recs
	}

	for _, l := range snap.listings {
		if l.Sold {
			continue
		}

		affinity := snap.prefs.Affinity(userID, l)
		popularity := score.Popularity(l)
		freshness := score.Freshness(l, now)
		total := affinity*w.PersonalAffinity + popularity*w.PersonalPopularity + freshness*w.PersonalFreshness

		var reasons []string
		if affinity > affinityReasonCutoff {
			reasons = append(reasons, reasonInterests)
		}
		if popularity > popularityReasonCutoff {
			reasons = append(reasons, reasonPopular)
		}
		if freshness > freshnessReasonCutoff {
			reasons = append(reasons, reasonRecent)
		}
		if len(reasons) == 0 {
			reasons = append(reasons, reasonFallback)
		}
		recs = append(recs, Recommendation{Listing: l, Score: total, Reasons: reasons})
	}

	sortByScore(recs)
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

// sortByScore orders by score descending. The sort is stable so ties
// keep discovery order: text matches before backfill, catalog order
// within each.
func sortByScore(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
}
