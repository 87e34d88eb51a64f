package memstore

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rummage-io/rummage/pkg/rummage/catalog"
	"github.com/rummage-io/rummage/pkg/rummage/internalerr"
)

// Store is an in-memory implementation of store.Store. It is the
// default backend for tests and demos; listings are returned in
// insertion order so results stay deterministic.
type Store struct {
	mu           sync.RWMutex
	order        []string
	listings     map[string]catalog.Listing
	interactions []catalog.Interaction
	entropy      *ulid.MonotonicEntropy
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		listings: make(map[string]catalog.Listing),
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// UpsertListing inserts or replaces a listing, keyed by ID.
func (s *Store) UpsertListing(ctx context.Context, l catalog.Listing) error {
	if err := l.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.listings[l.ID]; !ok {
		s.order = append(s.order, l.ID)
	}
	s.listings[l.ID] = copyListing(l)
	return nil
}

// GetListing returns a listing by ID.
func (s *Store) GetListing(ctx context.Context, id string) (catalog.Listing, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if l, ok := s.listings[id]; ok {
		return copyListing(l), true, nil
	}
	return catalog.Listing{}, false, nil
}

// ListListings returns all listings in insertion order.
func (s *Store) ListListings(ctx context.Context) ([]catalog.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Listing, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, copyListing(s.listings[id]))
	}
	return out, nil
}

// IncrementViews bumps the view counter of a listing.
func (s *Store) IncrementViews(ctx context.Context, id string) error {
	return s.update(id, func(l *catalog.Listing) { l.Views++ })
}

// IncrementLikes bumps the like counter of a listing.
func (s *Store) IncrementLikes(ctx context.Context, id string) error {
	return s.update(id, func(l *catalog.Listing) { l.Likes++ })
}

// MarkSold flags a listing as sold.
func (s *Store) MarkSold(ctx context.Context, id string) error {
	return s.update(id, func(l *catalog.Listing) { l.Sold = true })
}

func (s *Store) update(id string, fn func(*catalog.Listing)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok {
		return fmt.Errorf("listing %s: %w", id, internalerr.ErrNotFound)
	}
	fn(&l)
	s.listings[id] = l
	return nil
}

// RecordInteraction appends an interaction to the log and returns the
// assigned ID. The referenced listing does not have to exist.
func (s *Store) RecordInteraction(ctx context.Context, i catalog.Interaction) (string, error) {
	if i.UserID == "" || i.ListingID == "" {
		return "", fmt.Errorf("interaction needs user and listing: %w", internalerr.ErrInvalidInput)
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i.ID = ulid.MustNew(ulid.Timestamp(i.Timestamp), s.entropy).String()
	s.interactions = append(s.interactions, i)
	return i.ID, nil
}

// ListInteractions returns the full interaction log in append order.
func (s *Store) ListInteractions(ctx context.Context) ([]catalog.Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Interaction, len(s.interactions))
	copy(out, s.interactions)
	return out, nil
}

func copyListing(l catalog.Listing) catalog.Listing {
	if l.Tags != nil {
		tags := make([]string, len(l.Tags))
		copy(tags, l.Tags)
		l.Tags = tags
	}
	return l
}
