package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rummage-io/rummage/pkg/rummage/catalog"
	"github.com/rummage-io/rummage/pkg/rummage/internalerr"
	"github.com/rummage-io/rummage/pkg/rummage/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db      *sql.DB
	entropy *ulid.MonotonicEntropy
}

// Open opens a SQLite-backed store with WAL mode enabled and
// initializes the schema.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS listings (
	id TEXT PRIMARY KEY,
	title TEXT,
	description TEXT,
	price REAL NOT NULL,
	category TEXT,
	condition TEXT,
	seller_id TEXT,
	seller_name TEXT,
	location TEXT,
	image TEXT,
	posted_at TEXT,
	views INTEGER NOT NULL DEFAULT 0,
	likes INTEGER NOT NULL DEFAULT 0,
	sold INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS listing_tags (
	listing_id TEXT NOT NULL,
	tag TEXT NOT NULL,
	UNIQUE(listing_id, tag),
	FOREIGN KEY(listing_id) REFERENCES listings(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS interactions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	listing_id TEXT NOT NULL,
	action TEXT NOT NULL,
	ts TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_interactions_user ON interactions(user_id);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// UpsertListing inserts or updates a listing
func (s *sqliteStore) UpsertListing(ctx context.Context, l catalog.Listing) error {
	if err := l.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO listings (id, title, description, price, category, condition,
	seller_id, seller_name, location, image, posted_at, views, likes, sold)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	title=excluded.title,
	description=excluded.description,
	price=excluded.price,
	category=excluded.category,
	condition=excluded.condition,
	seller_id=excluded.seller_id,
	seller_name=excluded.seller_name,
	location=excluded.location,
	image=excluded.image,
	posted_at=excluded.posted_at,
	views=excluded.views,
	likes=excluded.likes,
	sold=excluded.sold;
`

	_, err = tx.ExecContext(ctx, stmt,
		l.ID, l.Title, l.Description, l.Price, string(l.Category), string(l.Condition),
		l.SellerID, l.SellerName, l.Location, l.Image,
		l.PostedAt.UTC().Format(time.RFC3339), l.Views, l.Likes, boolToInt(l.Sold),
	)
	if err != nil {
		return err
	}

	if err := replaceListingTags(ctx, tx, l.ID, l.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

func replaceListingTags(ctx context.Context, tx *sql.Tx, listingID string, tags []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM listing_tags WHERE listing_id=?`, listingID); err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO listing_tags (listing_id, tag) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, listingID, tag); err != nil {
			return err
		}
	}
	return nil
}

// GetListing returns a listing by ID
func (s *sqliteStore) GetListing(ctx context.Context, id string) (catalog.Listing, bool, error) {
	const q = `
SELECT id, title, description, price, category, condition,
	seller_id, seller_name, location, image, posted_at, views, likes, sold
FROM listings WHERE id=?`

	l, err := scanListing(s.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return catalog.Listing{}, false, nil
	}
	if err != nil {
		return catalog.Listing{}, false, err
	}

	if l.Tags, err = s.listingTags(ctx, l.ID); err != nil {
		return catalog.Listing{}, false, err
	}
	return l, true, nil
}

// ListListings returns all listings in insertion order
func (s *sqliteStore) ListListings(ctx context.Context) ([]catalog.Listing, error) {
	const q = `
SELECT id, title, description, price, category, condition,
	seller_id, seller_name, location, image, posted_at, views, likes, sold
FROM listings ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Tags, err = s.listingTags(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *sqliteStore) listingTags(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tag FROM listing_tags WHERE listing_id=? ORDER BY rowid`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// IncrementViews bumps the view counter of a listing
func (s *sqliteStore) IncrementViews(ctx context.Context, id string) error {
	return s.bump(ctx, `UPDATE listings SET views=views+1 WHERE id=?`, id)
}

// IncrementLikes bumps the like counter of a listing
func (s *sqliteStore) IncrementLikes(ctx context.Context, id string) error {
	return s.bump(ctx, `UPDATE listings SET likes=likes+1 WHERE id=?`, id)
}

// MarkSold flags a listing as sold
func (s *sqliteStore) MarkSold(ctx context.Context, id string) error {
	return s.bump(ctx, `UPDATE listings SET sold=1 WHERE id=?`, id)
}

func (s *sqliteStore) bump(ctx context.Context, stmt, id string) error {
	res, err := s.db.ExecContext(ctx, stmt, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("listing %s: %w", id, internalerr.ErrNotFound)
	}
	return nil
}

// RecordInteraction appends an interaction to the log
func (s *sqliteStore) RecordInteraction(ctx context.Context, i catalog.Interaction) (string, error) {
	if i.UserID == "" || i.ListingID == "" {
		return "", fmt.Errorf("interaction needs user and listing: %w", internalerr.ErrInvalidInput)
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
	id := ulid.MustNew(ulid.Timestamp(i.Timestamp), s.entropy).String()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interactions (id, user_id, listing_id, action, ts) VALUES (?, ?, ?, ?, ?)`,
		id, i.UserID, i.ListingID, string(i.Action), i.Timestamp.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListInteractions returns the full interaction log in append order
func (s *sqliteStore) ListInteractions(ctx context.Context) ([]catalog.Interaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, listing_id, action, ts FROM interactions ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Interaction
	for rows.Next() {
		var (
			i  catalog.Interaction
			a  string
			ts string
		)
		if err := rows.Scan(&i.ID, &i.UserID, &i.ListingID, &a, &ts); err != nil {
			return nil, err
		}
		i.Action = catalog.Action(a)
		if i.Timestamp, err = time.Parse(time.RFC3339, ts); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (catalog.Listing, error) {
	var (
		l        catalog.Listing
		cat      string
		cond     string
		postedAt string
		sold     int
	)
	err := row.Scan(&l.ID, &l.Title, &l.Description, &l.Price, &cat, &cond,
		&l.SellerID, &l.SellerName, &l.Location, &l.Image, &postedAt,
		&l.Views, &l.Likes, &sold)
	if err != nil {
		return catalog.Listing{}, err
	}
	l.Category = catalog.Category(cat)
	l.Condition = catalog.Condition(cond)
	l.Sold = sold != 0
	if postedAt != "" {
		if l.PostedAt, err = time.Parse(time.RFC3339, postedAt); err != nil {
			return catalog.Listing{}, err
		}
	}
	return l, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
