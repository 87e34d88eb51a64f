// catalog-loader imports JSONL catalog and interaction feeds into a
// SQLite store so the engine (and rummage-cli) can run against them.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/rummage-io/rummage/internal/feed"
	"github.com/rummage-io/rummage/pkg/rummage/store/sqlite"
)

func main() {
	var (
		dbPath           = flag.String("db", "", "Database path (required)")
		catalogPath      = flag.String("catalog", "", "Catalog JSONL file (required)")
		interactionsPath = flag.String("interactions", "", "Interaction JSONL file (optional)")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}
	if *catalogPath == "" {
		log.Fatal("--catalog required")
	}

	ctx := context.Background()

	s, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatal("Failed to open store:", err)
	}
	defer s.Close()

	listings, err := feed.LoadListings(*catalogPath)
	if err != nil {
		log.Fatal("Failed to load catalog:", err)
	}
	for _, l := range listings {
		if err := s.UpsertListing(ctx, l); err != nil {
			log.Printf("Warning: skipping listing %s: %v", l.ID, err)
		}
	}
	log.Printf("Imported %d listings", len(listings))

	if *interactionsPath != "" {
		interactions, err := feed.LoadInteractions(*interactionsPath)
		if err != nil {
			log.Fatal("Failed to load interactions:", err)
		}
		for _, in := range interactions {
			if _, err := s.RecordInteraction(ctx, in); err != nil {
				log.Printf("Warning: skipping interaction for %s: %v", in.ListingID, err)
			}
		}
		log.Printf("Imported %d interactions", len(interactions))
	}
}
