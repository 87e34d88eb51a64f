package prefs

import (
	"math"
	"testing"

	"github.com/rummage-io/rummage/pkg/rummage/catalog"
)

var guitar = catalog.Listing{
	ID:       "g1",
	Title:    "Acoustic Guitar",
	Price:    180,
	Category: catalog.CategoryMusic,
	Tags:     []string{"guitar", "acoustic"},
}

func TestLikeWeighsDoubleView(t *testing.T) {
	listings := []catalog.Listing{guitar}

	viewer := Build(listings, []catalog.Interaction{
		{UserID: "u", ListingID: "g1", Action: catalog.ActionView},
	})
	liker := Build(listings, []catalog.Interaction{
		{UserID: "u", ListingID: "g1", Action: catalog.ActionLike},
	})

	va := viewer.Affinity("u", guitar)
	la := liker.Affinity("u", guitar)
	if va <= 0 {
		t.Fatalf("view affinity should be positive, got %v", va)
	}
	if math.Abs(la-2*va) > 1e-9 {
		t.Errorf("like affinity %v should be exactly double view affinity %v", la, va)
	}
}

func TestAffinityDimensions(t *testing.T) {
	listings := []catalog.Listing{guitar}
	m := Build(listings, []catalog.Interaction{
		{UserID: "u", ListingID: "g1", Action: catalog.ActionView},
	})

	// One view: weight 1 on category:music, tag:guitar, tag:acoustic,
	// price_bucket:medium. Affinity = 0.3 + 2*0.2 + 0.1.
	if got := m.Affinity("u", guitar); math.Abs(got-0.8) > 1e-9 {
		t.Errorf("Affinity = %v, want 0.8", got)
	}

	// A listing sharing only the price bucket.
	lamp := catalog.Listing{ID: "l1", Price: 60, Category: catalog.CategoryHome, Tags: []string{"lamp"}}
	if got := m.Affinity("u", lamp); math.Abs(got-0.1) > 1e-9 {
		t.Errorf("bucket-only affinity = %v, want 0.1", got)
	}
}

func TestUnknownUser(t *testing.T) {
	m := Build([]catalog.Listing{guitar}, nil)

	if m.HasProfile("stranger") {
		t.Error("user without interactions must not have a profile")
	}
	if got := m.Affinity("stranger", guitar); got != 0 {
		t.Errorf("unknown user affinity = %v, want 0", got)
	}
}

func TestMissingListingSkipped(t *testing.T) {
	m := Build([]catalog.Listing{guitar}, []catalog.Interaction{
		{UserID: "u", ListingID: "deleted", Action: catalog.ActionLike},
	})

	if m.HasProfile("u") {
		t.Error("interaction on a missing listing must not create a profile")
	}
	if got := m.Affinity("u", guitar); got != 0 {
		t.Errorf("Affinity = %v, want 0", got)
	}
}

func TestAccumulation(t *testing.T) {
	listings := []catalog.Listing{guitar}
	m := Build(listings, []catalog.Interaction{
		{UserID: "u", ListingID: "g1", Action: catalog.ActionView},
		{UserID: "u", ListingID: "g1", Action: catalog.ActionLike},
	})

	// Weights sum: 3 on every key the listing contributes to.
	if got := m.Affinity("u", guitar); math.Abs(got-2.4) > 1e-9 {
		t.Errorf("accumulated affinity = %v, want 2.4", got)
	}
}
