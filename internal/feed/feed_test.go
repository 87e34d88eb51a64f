package feed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rummage-io/rummage/pkg/rummage/catalog"
)

func writeFeed(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write feed: %v", err)
	}
	return path
}

func TestLoadListings(t *testing.T) {
	path := writeFeed(t, "catalog.jsonl", `
{"id":"l1","title":"Vintage Jacket","price":85,"category":"clothing","condition":"good","tags":["vintage"],"posted_at":"2024-01-15","views":45,"likes":12}
not json at all
{"id":"","title":"missing id","price":10}
{"id":"l2","title":"Desk Lamp","description":"<p>Works <b>great</b></p>","price":-5}
{"id":"l3","title":"Film Camera","description":"<em>Classic</em> body","price":320,"posted_at":"2024-01-20T10:00:00Z"}
`)

	listings, err := LoadListings(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 valid listings, got %d: %v", len(listings), listings)
	}

	l1 := listings[0]
	if l1.ID != "l1" || l1.Category != catalog.CategoryClothing || l1.Views != 45 {
		t.Errorf("first listing mismatch: %+v", l1)
	}
	if want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC); !l1.PostedAt.Equal(want) {
		t.Errorf("bare date parsed as %v", l1.PostedAt)
	}

	l3 := listings[1]
	if l3.Description != "Classic body" {
		t.Errorf("HTML not stripped: %q", l3.Description)
	}
	if want := time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC); !l3.PostedAt.Equal(want) {
		t.Errorf("RFC3339 date parsed as %v", l3.PostedAt)
	}
}

func TestLoadListingsAllInvalid(t *testing.T) {
	path := writeFeed(t, "catalog.jsonl", `{"id":"","price":1}`)
	if _, err := LoadListings(path); err == nil {
		t.Fatal("expected error when no listing survives")
	}
}

func TestLoadInteractions(t *testing.T) {
	path := writeFeed(t, "interactions.jsonl", `
{"user_id":"user1","listing_id":"l2","action":"view","timestamp":"2024-01-15T10:30:00Z"}
{"user_id":"user1","listing_id":"l4","action":"like","timestamp":"2024-01-15T11:00:00Z"}
{"user_id":"","listing_id":"l4","action":"like"}
{"user_id":"user2","listing_id":"l1","action":"purchase"}
`)

	got, err := LoadInteractions(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 valid interactions, got %d: %v", len(got), got)
	}
	if got[0].Action != catalog.ActionView || got[1].Action != catalog.ActionLike {
		t.Errorf("actions mismatch: %v", got)
	}
	if got[0].UserID != "user1" || got[0].ListingID != "l2" {
		t.Errorf("first interaction mismatch: %+v", got[0])
	}
}
