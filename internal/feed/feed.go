// Package feed loads catalog and interaction feeds from JSONL files.
// Malformed rows are skipped with a warning rather than failing the
// whole load; descriptions are stripped of any HTML markup before they
// reach the engine.
package feed

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/rummage-io/rummage/pkg/rummage/catalog"
)

// ListingRecord is one catalog feed row.
type ListingRecord struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Condition   string   `json:"condition"`
	Tags        []string `json:"tags"`
	SellerID    string   `json:"seller_id"`
	SellerName  string   `json:"seller_name"`
	Location    string   `json:"location"`
	Image       string   `json:"image"`
	PostedAt    string   `json:"posted_at"`
	Views       int      `json:"views"`
	Likes       int      `json:"likes"`
	Sold        bool     `json:"sold"`
}

// InteractionRecord is one interaction feed row.
type InteractionRecord struct {
	UserID    string    `json:"user_id"`
	ListingID string    `json:"listing_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// LoadListings reads a JSONL catalog feed. Rows that fail to parse or
// validate are skipped with a warning.
func LoadListings(path string) ([]catalog.Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var listings []catalog.Listing
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var rec ListingRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			log.Printf("Warning: skipping malformed JSON at line %d in %s: %v", i+1, path, err)
			continue
		}

		l, err := rec.toListing()
		if err != nil {
			log.Printf("Warning: skipping listing at line %d in %s: %v", i+1, path, err)
			continue
		}
		listings = append(listings, l)
	}

	if len(listings) == 0 {
		return nil, fmt.Errorf("no valid listings found in %s", path)
	}
	return listings, nil
}

func (r ListingRecord) toListing() (catalog.Listing, error) {
	l := catalog.Listing{
		ID:          r.ID,
		Title:       r.Title,
		Description: stripHTML(r.Description),
		Price:       r.Price,
		Category:    catalog.Category(r.Category),
		Condition:   catalog.Condition(r.Condition),
		Tags:        r.Tags,
		SellerID:    r.SellerID,
		SellerName:  r.SellerName,
		Location:    r.Location,
		Image:       r.Image,
		Views:       r.Views,
		Likes:       r.Likes,
		Sold:        r.Sold,
	}
	if r.PostedAt != "" {
		ts, err := parseDate(r.PostedAt)
		if err != nil {
			return catalog.Listing{}, err
		}
		l.PostedAt = ts
	}
	return l, l.Validate()
}

// parseDate accepts RFC3339 timestamps or bare dates.
func parseDate(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable date %q", s)
	}
	return ts, nil
}

// LoadInteractions reads a JSONL interaction feed, skipping malformed
// or incomplete rows with a warning.
func LoadInteractions(path string) ([]catalog.Interaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var interactions []catalog.Interaction
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var rec InteractionRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			log.Printf("Warning: skipping malformed JSON at line %d in %s: %v", i+1, path, err)
			continue
		}
		if rec.UserID == "" || rec.ListingID == "" {
			log.Printf("Warning: skipping interaction without user or listing at line %d in %s", i+1, path)
			continue
		}
		action := catalog.Action(rec.Action)
		if action != catalog.ActionView && action != catalog.ActionLike {
			log.Printf("Warning: skipping interaction with unknown action %q at line %d in %s", rec.Action, i+1, path)
			continue
		}

		interactions = append(interactions, catalog.Interaction{
			UserID:    rec.UserID,
			ListingID: rec.ListingID,
			Action:    action,
			Timestamp: rec.Timestamp,
		})
	}
	return interactions, nil
}

func stripHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		// Fallback to string if parsing fails
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.TrimSpace(buf.String())
}
