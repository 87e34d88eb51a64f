package catalog

import (
	"fmt"
	"time"

	"github.com/rummage-io/rummage/pkg/rummage/internalerr"
)

// Category is the fixed set of listing categories.
type Category string

const (
	CategoryAccessories Category = "accessories"
	CategoryArt         Category = "art"
	CategoryClothing    Category = "clothing"
	CategoryElectronics Category = "electronics"
	CategoryFurniture   Category = "furniture"
	CategoryHome        Category = "home"
	CategoryMusic       Category = "music"
	CategorySports      Category = "sports"
)

// Condition describes the physical state of a listed item.
type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
)

// Listing is a single second-hand item offered for sale.
// Listings are immutable once loaded; only the engagement counters
// (Views, Likes) and the Sold flag change, via the store.
type Listing struct {
	ID          string
	Title       string
	Description string
	Price       float64
	Category    Category
	Condition   Condition
	Tags        []string
	SellerID    string
	SellerName  string
	Location    string
	Image       string
	PostedAt    time.Time
	Views       int
	Likes       int
	Sold        bool
}

// Validate rejects listings that must not enter the catalog: a listing
// needs an identity and a non-negative price. Everything else degrades
// gracefully at query time.
func (l Listing) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("listing without id: %w", internalerr.ErrInvalidListing)
	}
	if l.Price < 0 {
		return fmt.Errorf("listing %s has negative price %.2f: %w", l.ID, l.Price, internalerr.ErrInvalidListing)
	}
	return nil
}

// Action is the kind of user interaction recorded in the log.
type Action string

const (
	ActionView Action = "view"
	ActionLike Action = "like"
)

// Interaction is one append-only log entry: a user viewed or liked a
// listing at some point in time. The ID is assigned by the store.
type Interaction struct {
	ID        string
	UserID    string
	ListingID string
	Action    Action
	Timestamp time.Time
}

// Weight returns the preference weight an interaction contributes: a
// like counts double a view.
func (i Interaction) Weight() float64 {
	if i.Action == ActionLike {
		return 2
	}
	return 1
}

// Bucket is a coarse price band used for preference modeling.
type Bucket string

const (
	BucketLow     Bucket = "low"
	BucketMedium  Bucket = "medium"
	BucketHigh    Bucket = "high"
	BucketPremium Bucket = "premium"
)

// PriceBucket maps a price to its band. Boundaries are inclusive on
// the lower bound of each bucket.
func PriceBucket(price float64) Bucket {
	switch {
	case price < 50:
		return BucketLow
	case price < 200:
		return BucketMedium
	case price < 500:
		return BucketHigh
	default:
		return BucketPremium
	}
}
