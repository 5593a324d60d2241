// Package fetch retrieves the published spreadsheet CSV over HTTP with
// conditional requests and a store-backed fallback body, so a failed
// refresh never leaves the service without data it previously had.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pvsaraivar/Planilha-festas/internal/store"
)

const defaultTimeout = 15 * time.Second

// Cache persists the last good payload between runs.
type Cache interface {
	LoadSheet(ctx context.Context) (store.SheetCache, bool, error)
	SaveSheet(ctx context.Context, c store.SheetCache) error
}

// Result carries the CSV body and whether it came from the local cache
// instead of a fresh response.
type Result struct {
	Body      []byte
	FromCache bool
}

// Fetcher downloads the sheet export, honoring ETag and Last-Modified
// validators from the cache.
type Fetcher struct {
	client *http.Client
	url    string
	cache  Cache
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithLogger sets the logger for the Fetcher.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New creates a Fetcher for the given CSV export URL. cache may be nil,
// in which case every fetch is unconditional and failures are terminal.
func New(url string, cache Cache, opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{Timeout: defaultTimeout},
		url:    url,
		cache:  cache,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs one retrieval. Network errors, non-OK statuses and 304
// responses all fall back to the cached body when one exists; only a
// failure with no cached body returns an error.
func (f *Fetcher) Fetch(ctx context.Context) (Result, error) {
	var (
		cached    store.SheetCache
		haveCache bool
	)
	if f.cache != nil {
		c, ok, err := f.cache.LoadSheet(ctx)
		if err != nil {
			f.logger.Warn("sheet cache read failed", "error", err)
		} else {
			cached, haveCache = c, ok
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	if haveCache {
		if cached.ETag != "" {
			req.Header.Set("If-None-Match", cached.ETag)
		}
		if cached.LastModified != "" {
			req.Header.Set("If-Modified-Since", cached.LastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if haveCache && len(cached.Body) > 0 {
			f.logger.Warn("sheet fetch failed, serving cached body", "error", err)
			return Result{Body: cached.Body, FromCache: true}, nil
		}
		return Result{}, fmt.Errorf("fetch sheet: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			if haveCache && len(cached.Body) > 0 {
				f.logger.Warn("sheet body read failed, serving cached body", "error", err)
				return Result{Body: cached.Body, FromCache: true}, nil
			}
			return Result{}, fmt.Errorf("read sheet body: %w", err)
		}

		if f.cache != nil {
			save := store.SheetCache{
				Body:         body,
				ETag:         resp.Header.Get("ETag"),
				LastModified: resp.Header.Get("Last-Modified"),
				FetchedAt:    time.Now().UTC(),
			}
			if err := f.cache.SaveSheet(ctx, save); err != nil {
				f.logger.Warn("sheet cache save failed", "error", err)
			}
		}
		return Result{Body: body}, nil

	case http.StatusNotModified:
		if haveCache && len(cached.Body) > 0 {
			return Result{Body: cached.Body, FromCache: true}, nil
		}
		return Result{}, errors.New("not modified but no cached sheet body")

	default:
		if haveCache && len(cached.Body) > 0 {
			f.logger.Warn("sheet fetch non-OK, serving cached body", "status", resp.StatusCode)
			return Result{Body: cached.Body, FromCache: true}, nil
		}
		return Result{}, fmt.Errorf("fetch sheet: %s", resp.Status)
	}
}
