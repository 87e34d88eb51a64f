// Package prefs derives per-user preference weights from the
// interaction log. The log is the source of truth; a Model is a
// deterministic aggregation that can be rebuilt at any time.
package prefs

import (
	"github.com/rummage-io/rummage/pkg/rummage/catalog"
)

// Affinity dimension weights. Calibration constants.
const (
	categoryWeight = 0.3
	tagWeight      = 0.2
	bucketWeight   = 0.1
)

// Model maps each user to accumulated weights over category, tag and
// price-bucket keys.
type Model struct {
	users map[string]map[string]float64
}

// Build aggregates the interaction log in one pass. Interactions that
// reference a listing absent from the catalog are skipped silently.
func Build(listings []catalog.Listing, interactions []catalog.Interaction) *Model {
	byID := make(map[string]catalog.Listing, len(listings))
	for _, l := range listings {
		byID[l.ID] = l
	}

	m := &Model{users: make(map[string]map[string]float64)}
	for _, in := range interactions {
		l, ok := byID[in.ListingID]
		if !ok {
			continue
		}
		prefs := m.users[in.UserID]
		if prefs == nil {
			prefs = make(map[string]float64)
			m.users[in.UserID] = prefs
		}

		w := in.Weight()
		prefs["category:"+string(l.Category)] += w
		for _, tag := range l.Tags {
			prefs["tag:"+tag] += w
		}
		prefs["price_bucket:"+string(catalog.PriceBucket(l.Price))] += w
	}
	return m
}

// HasProfile reports whether the user has any recorded preference,
// i.e. whether the cold-start path applies.
func (m *Model) HasProfile(userID string) bool {
	_, ok := m.users[userID]
	return ok
}

// Affinity scores how well a listing fits a user's accumulated
// preferences. Unknown users and missing keys contribute zero.
func (m *Model) Affinity(userID string, l catalog.Listing) float64 {
	prefs, ok := m.users[userID]
	if !ok {
		return 0
	}

	score := prefs["category:"+string(l.Category)] * categoryWeight
	for _, tag := range l.Tags {
		score += prefs["tag:"+tag] * tagWeight
	}
	score += prefs["price_bucket:"+string(catalog.PriceBucket(l.Price))] * bucketWeight
	return score
}
