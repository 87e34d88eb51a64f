package filter

import (
	"reflect"
	"testing"
	"time"

	"github.com/rummage-io/rummage/pkg/rummage"
	"github.com/rummage-io/rummage/pkg/rummage/catalog"
)

func fixture() []rummage.Recommendation {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []rummage.Recommendation{
		{Listing: catalog.Listing{
			ID: "a", Price: 85, Category: catalog.CategoryClothing,
			Condition: catalog.ConditionGood, Location: "Los Angeles, CA",
			PostedAt: base.AddDate(0, 0, 14), Views: 45, Likes: 12,
		}, Score: 3},
		{Listing: catalog.Listing{
			ID: "b", Price: 750, Category: catalog.CategoryElectronics,
			Condition: catalog.ConditionExcellent, Location: "San Francisco, CA",
			PostedAt: base.AddDate(0, 0, 13), Views: 89, Likes: 23,
		}, Score: 2},
		{Listing: catalog.Listing{
			ID: "c", Price: 120, Category: catalog.CategoryFurniture,
			Condition: catalog.ConditionFair, Location: "Portland, OR",
			PostedAt: base.AddDate(0, 0, 15), Views: 10, Likes: 2,
		}, Score: 1},
	}
}

func ids(recs []rummage.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Listing.ID
	}
	return out
}

func TestApplyCategory(t *testing.T) {
	got := Apply(fixture(), Params{Category: catalog.CategoryElectronics})
	if !reflect.DeepEqual(ids(got), []string{"b"}) {
		t.Errorf("category filter = %v", ids(got))
	}
}

func TestApplyConditions(t *testing.T) {
	got := Apply(fixture(), Params{
		Conditions: []catalog.Condition{catalog.ConditionGood, catalog.ConditionFair},
	})
	if !reflect.DeepEqual(ids(got), []string{"a", "c"}) {
		t.Errorf("condition filter = %v", ids(got))
	}
}

func TestApplyLocationCaseInsensitive(t *testing.T) {
	got := Apply(fixture(), Params{Location: "san francisco"})
	if !reflect.DeepEqual(ids(got), []string{"b"}) {
		t.Errorf("location filter = %v", ids(got))
	}
}

func TestApplyPriceRangeInclusive(t *testing.T) {
	got := Apply(fixture(), Params{PriceMin: 85, PriceMax: 120})
	if !reflect.DeepEqual(ids(got), []string{"a", "c"}) {
		t.Errorf("price filter = %v", ids(got))
	}
	// Unbounded when PriceMax is unset.
	got = Apply(fixture(), Params{PriceMin: 100})
	if !reflect.DeepEqual(ids(got), []string{"b", "c"}) {
		t.Errorf("open-ended price filter = %v", ids(got))
	}
}

func TestApplyPreservesOrder(t *testing.T) {
	got := Apply(fixture(), Params{})
	if !reflect.DeepEqual(ids(got), []string{"a", "b", "c"}) {
		t.Errorf("no-op filter reordered results: %v", ids(got))
	}
}

func TestSortKeys(t *testing.T) {
	cases := []struct {
		key  SortKey
		want []string
	}{
		{SortRelevance, []string{"a", "b", "c"}},
		{SortKey("unknown"), []string{"a", "b", "c"}},
		{SortPriceLow, []string{"a", "c", "b"}},
		{SortPriceHigh, []string{"b", "c", "a"}},
		{SortNewest, []string{"c", "a", "b"}},
		{SortPopular, []string{"b", "a", "c"}},
	}
	for _, c := range cases {
		recs := fixture()
		Sort(recs, c.key)
		if !reflect.DeepEqual(ids(recs), c.want) {
			t.Errorf("Sort(%s) = %v, want %v", c.key, ids(recs), c.want)
		}
	}
}
