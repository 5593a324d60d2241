package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SheetCache is the last successfully fetched CSV payload plus the HTTP
// validators needed for conditional refresh. One row, replaced wholesale.
type SheetCache struct {
	Body         []byte
	ETag         string
	LastModified string
	FetchedAt    time.Time
}

// SaveSheet stores the payload, overwriting any previous one.
func (s *Store) SaveSheet(ctx context.Context, c SheetCache) error {
	const query = `
	INSERT INTO sheet_cache (id, body, etag, last_modified, fetched_at)
	VALUES (1, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		body = excluded.body,
		etag = excluded.etag,
		last_modified = excluded.last_modified,
		fetched_at = excluded.fetched_at
	`
	fetchedAt := c.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, query,
		c.Body, c.ETag, c.LastModified, fetchedAt.UTC().Format(TimeFormat))
	if err != nil {
		return fmt.Errorf("save sheet cache: %w", err)
	}
	return nil
}

// LoadSheet returns the cached payload. The second return value is false
// when nothing has been cached yet.
func (s *Store) LoadSheet(ctx context.Context) (SheetCache, bool, error) {
	const query = `SELECT body, etag, last_modified, fetched_at FROM sheet_cache WHERE id = 1`

	var (
		c         SheetCache
		fetchedAt string
	)
	err := s.db.QueryRowContext(ctx, query).Scan(&c.Body, &c.ETag, &c.LastModified, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SheetCache{}, false, nil
	}
	if err != nil {
		return SheetCache{}, false, fmt.Errorf("load sheet cache: %w", err)
	}

	t, err := time.Parse(TimeFormat, fetchedAt)
	if err != nil {
		return SheetCache{}, false, fmt.Errorf("parse fetched_at %q: %w", fetchedAt, err)
	}
	c.FetchedAt = t

	return c, true, nil
}
