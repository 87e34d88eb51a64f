package store

import (
	"context"

	"github.com/rummage-io/rummage/pkg/rummage/catalog"
)

// Store is the main interface for persisting and querying catalog data.
//
// The catalog and the interaction log are the engine's two inputs; both
// are re-suppliable in full so the engine can rebuild its derived state
// at any time. Counter mutation (views, likes, sold) is the concern of
// the hosting application, not of the engine.
type Store interface {
	Close() error

	// Listings
	UpsertListing(ctx context.Context, l catalog.Listing) error
	GetListing(ctx context.Context, id string) (catalog.Listing, bool, error)
	ListListings(ctx context.Context) ([]catalog.Listing, error)
	IncrementViews(ctx context.Context, id string) error
	IncrementLikes(ctx context.Context, id string) error
	MarkSold(ctx context.Context, id string) error

	// Interaction log (append-only). RecordInteraction assigns and
	// returns the interaction ID. The listing reference is soft: an
	// interaction on an unknown listing is still recorded.
	RecordInteraction(ctx context.Context, i catalog.Interaction) (string, error)
	ListInteractions(ctx context.Context) ([]catalog.Interaction, error)
}
