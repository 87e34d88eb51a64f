package index

import (
	"reflect"
	"testing"

	"github.com/rummage-io/rummage/pkg/rummage/catalog"
)

func testCatalog() []catalog.Listing {
	return []catalog.Listing{
		{
			ID:          "guitar",
			Title:       "Fender Acoustic Guitar",
			Description: "Beautiful acoustic guitar in pristine condition.",
			Category:    catalog.CategoryMusic,
			Tags:        []string{"guitar", "acoustic", "fender"},
		},
		{
			ID:          "laptop",
			Title:       "MacBook Pro 2019",
			Description: "Well-maintained laptop with charger included.",
			Category:    catalog.CategoryElectronics,
			Tags:        []string{"laptop", "apple", "macbook"},
		},
		{
			ID:          "table",
			Title:       "Wooden Coffee Table",
			Description: "Handcrafted oak table with storage compartment.",
			Category:    catalog.CategoryFurniture,
			Tags:        []string{"wood", "table", "handmade"},
		},
	}
}

func buildIndex(t *testing.T) *Index {
	t.Helper()
	ix := New(DefaultConfig(), NewTokenizer(nil))
	ix.Build(testCatalog())
	return ix
}

func TestSearchExactTerm(t *testing.T) {
	ix := buildIndex(t)

	matches := ix.Search("guitar")
	if len(matches) != 1 {
		t.Fatalf("expected exactly the guitar listing, got %v", matches)
	}
	if matches[0].ListingID != "guitar" {
		t.Fatalf("wrong listing: %v", matches[0])
	}
	if score := 1 - matches[0].Distance; score <= 0.6 {
		t.Errorf("exact term should be a strong match, search score = %v", score)
	}
}

func TestSearchTypoTolerance(t *testing.T) {
	ix := buildIndex(t)

	exact := ix.Search("guitar")
	typo := ix.Search("guitr")
	if len(typo) != 1 || typo[0].ListingID != "guitar" {
		t.Fatalf("typo should still match the guitar listing, got %v", typo)
	}
	if typo[0].Distance <= exact[0].Distance {
		t.Errorf("typo distance (%v) should exceed exact distance (%v)",
			typo[0].Distance, exact[0].Distance)
	}
}

func TestSearchPartialToken(t *testing.T) {
	ix := buildIndex(t)

	matches := ix.Search("tab")
	if len(matches) != 1 || matches[0].ListingID != "table" {
		t.Fatalf("partial token should match the table listing, got %v", matches)
	}
}

func TestSearchNoMatch(t *testing.T) {
	ix := buildIndex(t)

	if matches := ix.Search("spaceship"); len(matches) != 0 {
		t.Fatalf("unrelated query matched: %v", matches)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	ix := buildIndex(t)

	if matches := ix.Search(""); matches != nil {
		t.Fatalf("empty query should match nothing, got %v", matches)
	}
	if matches := ix.Search("  ,  "); matches != nil {
		t.Fatalf("punctuation-only query should match nothing, got %v", matches)
	}
}

func TestSearchRanksCloserFirst(t *testing.T) {
	ix := buildIndex(t)

	// "acoustic guitar" hits the guitar listing on both tokens; nothing
	// else clears the threshold.
	matches := ix.Search("acoustic guitar")
	if len(matches) == 0 || matches[0].ListingID != "guitar" {
		t.Fatalf("expected guitar listing first, got %v", matches)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Distance < matches[i-1].Distance {
			t.Fatalf("matches not sorted by distance: %v", matches)
		}
	}
}

func TestRebuildIsIdempotent(t *testing.T) {
	ix := buildIndex(t)
	first := ix.Search("guitar")

	ix.Build(testCatalog())
	second := ix.Search("guitar")

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("rebuild changed results: %v vs %v", first, second)
	}
}

func TestTokenize(t *testing.T) {
	tok := NewTokenizer([]string{"the"})

	got := tok.Tokenize("The Vintage-Style 13-inch, jacket!")
	want := []string{"vintage-style", "13-inch", "jacket"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}

	if got := tok.Tokenize("a I -"); got != nil {
		t.Errorf("single-char tokens should be dropped, got %v", got)
	}
}
