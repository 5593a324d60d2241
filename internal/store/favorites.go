package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ToggleFavorite flips the favorite state for slug and returns the new
// state. Each toggle is its own transaction, persisted immediately.
// Toggling is keyed by slug alone, so repeated toggles from different UI
// surfaces converge to one boolean state.
func (s *Store) ToggleFavorite(ctx context.Context, slug string) (bool, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return false, ErrInvalidSlug
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin toggle: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorites WHERE slug = ?`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}

	if exists > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE slug = ?`, slug); err != nil {
			return false, fmt.Errorf("remove favorite: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("commit toggle: %w", err)
		}
		return false, nil
	}

	createdAt := time.Now().UTC().Format(TimeFormat)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO favorites (slug, created_at) VALUES (?, ?) ON CONFLICT(slug) DO NOTHING`,
		slug, createdAt,
	)
	if err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit toggle: %w", err)
	}
	return true, nil
}

// IsFavorited reports whether slug is in the favorites set.
func (s *Store) IsFavorited(ctx context.Context, slug string) (bool, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return false, ErrInvalidSlug
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorites WHERE slug = ?`, slug).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query favorite: %w", err)
	}
	return count > 0, nil
}

// ListFavorites returns all favorited slugs, oldest first with slug as a
// tiebreaker, matching the serialized-list shape the page persists.
func (s *Store) ListFavorites(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slug FROM favorites ORDER BY created_at ASC, slug ASC`)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	slugs := make([]string, 0)
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		slugs = append(slugs, slug)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return slugs, nil
}

// CountFavorites returns the size of the favorites set.
func (s *Store) CountFavorites(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorites`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count favorites: %w", err)
	}
	return count, nil
}
