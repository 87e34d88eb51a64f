// rummage-cli runs the recommendation engine from the command line:
// free-text search, personalized recommendations, or both, with the
// presentation-layer filters applied on top of the ranked output.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/rummage-io/rummage/internal/feed"
	"github.com/rummage-io/rummage/pkg/rummage"
	"github.com/rummage-io/rummage/pkg/rummage/catalog"
	"github.com/rummage-io/rummage/pkg/rummage/config"
	"github.com/rummage-io/rummage/pkg/rummage/filter"
	"github.com/rummage-io/rummage/pkg/rummage/store"
	"github.com/rummage-io/rummage/pkg/rummage/store/memstore"
	"github.com/rummage-io/rummage/pkg/rummage/store/sqlite"
)

func main() {
	var (
		dbPath           = flag.String("db", "", "SQLite database path")
		catalogPath      = flag.String("catalog", "", "Catalog JSONL file (alternative to --db)")
		interactionsPath = flag.String("interactions", "", "Interaction JSONL file (with --catalog)")
		configPath       = flag.String("config", "", "Engine config YAML (optional)")
		query            = flag.String("query", "", "Free-text search query")
		user             = flag.String("user", "", "User ID for personalization")
		limit            = flag.Int("limit", 0, "Result limit (defaults per operation)")

		filterCategory   = flag.String("category", "", "Filter: category")
		filterConditions = flag.String("conditions", "", "Filter: comma-separated conditions")
		filterLocation   = flag.String("location", "", "Filter: location substring")
		filterMinPrice   = flag.Float64("min-price", 0, "Filter: minimum price")
		filterMaxPrice   = flag.Float64("max-price", 0, "Filter: maximum price (0 = unbounded)")
		sortKey          = flag.String("sort", "relevance", "Sort: relevance, price_low, price_high, newest, popular")
	)
	flag.Parse()

	if *query == "" && *user == "" {
		log.Fatal("--query or --user required")
	}

	ctx := context.Background()

	s, err := openStore(ctx, *dbPath, *catalogPath, *interactionsPath)
	if err != nil {
		log.Fatal("Failed to open store:", err)
	}

	cfg := config.Default()
	if *configPath != "" {
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatal("Failed to load config:", err)
		}
	}

	engine, err := rummage.New(ctx, rummage.Options{Store: s, Config: cfg})
	if err != nil {
		log.Fatal("Failed to build engine:", err)
	}
	defer engine.Close()

	var recs []rummage.Recommendation
	if *query != "" {
		n := *limit
		if n <= 0 {
			n = cfg.Limits.Search
		}
		recs = engine.SearchAndRecommend(*query, *user, n)
	} else {
		n := *limit
		if n <= 0 {
			n = cfg.Limits.Personal
		}
		recs = engine.RecommendForUser(*user, n)
	}

	recs = filter.Apply(recs, filterParams(*filterCategory, *filterConditions, *filterLocation, *filterMinPrice, *filterMaxPrice))
	filter.Sort(recs, filter.SortKey(*sortKey))

	if len(recs) == 0 {
		fmt.Println("No results.")
		return
	}
	for i, r := range recs {
		l := r.Listing
		fmt.Printf("%2d. %-40s $%-8.2f score=%.3f\n", i+1, l.Title, l.Price, r.Score)
		fmt.Printf("    %s | %s | %s\n", l.Category, l.Condition, l.Location)
		fmt.Printf("    %s\n", strings.Join(r.Reasons, ", "))
	}
}

func openStore(ctx context.Context, dbPath, catalogPath, interactionsPath string) (store.Store, error) {
	if dbPath != "" {
		return sqlite.Open(ctx, dbPath)
	}
	if catalogPath == "" {
		return nil, fmt.Errorf("--db or --catalog required")
	}

	s := memstore.New()
	listings, err := feed.LoadListings(catalogPath)
	if err != nil {
		return nil, err
	}
	for _, l := range listings {
		if err := s.UpsertListing(ctx, l); err != nil {
			log.Printf("Warning: skipping listing %s: %v", l.ID, err)
		}
	}
	if interactionsPath != "" {
		interactions, err := feed.LoadInteractions(interactionsPath)
		if err != nil {
			return nil, err
		}
		for _, in := range interactions {
			if _, err := s.RecordInteraction(ctx, in); err != nil {
				log.Printf("Warning: skipping interaction for %s: %v", in.ListingID, err)
			}
		}
	}
	return s, nil
}

func filterParams(category, conditions, location string, minPrice, maxPrice float64) filter.Params {
	p := filter.Params{
		Category: catalog.Category(category),
		Location: location,
		PriceMin: minPrice,
		PriceMax: maxPrice,
	}
	if conditions != "" {
		for _, c := range strings.Split(conditions, ",") {
			if c = strings.TrimSpace(c); c != "" {
				p.Conditions = append(p.Conditions, catalog.Condition(c))
			}
		}
	}
	return p
}
