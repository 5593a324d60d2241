// Package refresh coordinates the fetch, parse and normalize pipeline
// that replaces the catalog snapshot.
package refresh

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pvsaraivar/Planilha-festas/internal/catalog"
	"github.com/pvsaraivar/Planilha-festas/internal/event"
	"github.com/pvsaraivar/Planilha-festas/internal/fetch"
	"github.com/pvsaraivar/Planilha-festas/internal/sheet"
)

// Clock provides time for deterministic testing.
type Clock interface {
	Now() time.Time
}

type locClock struct {
	loc *time.Location
}

func (c locClock) Now() time.Time { return time.Now().In(c.loc) }

// LocationClock returns wall-clock time in the given zone.
func LocationClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return locClock{loc: loc}
}

// Source produces the raw CSV payload.
type Source interface {
	Fetch(ctx context.Context) (fetch.Result, error)
}

// Refresher runs the pipeline: fetch, parse, normalize, replace. A fetch
// failure leaves the current snapshot untouched.
type Refresher struct {
	source     Source
	catalog    *catalog.Catalog
	normalizer *event.Normalizer
	clock      Clock
	logger     *slog.Logger
	onReplace  func(count int, checksum string)

	attempts int
	backoff  *BackoffCalculator
}

// Option configures a Refresher.
type Option func(*Refresher)

// WithLogger sets the logger for the Refresher.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Refresher) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock sets the clock (for testing).
func WithClock(clock Clock) Option {
	return func(r *Refresher) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithOnReplace registers a callback invoked after each accepted
// replacement, the "collection replaced" notification consumed by the
// SSE hub.
func WithOnReplace(fn func(count int, checksum string)) Option {
	return func(r *Refresher) { r.onReplace = fn }
}

// WithRetry enables in-run fetch retries with the given backoff.
func WithRetry(attempts int, cfg BackoffConfig) Option {
	return func(r *Refresher) {
		if attempts > 1 {
			r.attempts = attempts
			r.backoff = NewBackoffCalculator(cfg)
		}
	}
}

// New creates a Refresher.
func New(source Source, cat *catalog.Catalog, normalizer *event.Normalizer, opts ...Option) *Refresher {
	r := &Refresher{
		source:     source,
		catalog:    cat,
		normalizer: normalizer,
		clock:      LocationClock(time.Local),
		logger:     slog.Default(),
		attempts:   1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh runs one pipeline pass. An unchanged payload (same checksum as
// the current snapshot) is discarded without replacing or notifying.
func (r *Refresher) Refresh(ctx context.Context) error {
	res, err := r.fetchWithRetry(ctx)
	if err != nil {
		return err
	}

	records := sheet.Parse(string(res.Body))
	events := r.normalizer.Normalize(records)
	sum := catalog.Checksum(res.Body)

	if !r.catalog.Replace(events, sum, r.clock.Now()) {
		r.logger.Debug("sheet unchanged, snapshot kept", "checksum", sum)
		return nil
	}

	r.logger.Info("event collection replaced",
		"events", len(events),
		"rows", len(records),
		"from_cache", res.FromCache,
	)
	if r.onReplace != nil {
		r.onReplace(len(events), sum)
	}
	return nil
}

func (r *Refresher) fetchWithRetry(ctx context.Context) (fetch.Result, error) {
	var (
		res fetch.Result
		err error
	)
	for attempt := 0; ; attempt++ {
		res, err = r.source.Fetch(ctx)
		if err == nil {
			return res, nil
		}
		if attempt+1 >= r.attempts {
			return fetch.Result{}, err
		}

		delay := r.backoff.Calculate(attempt)
		r.logger.Warn("sheet fetch failed, retrying",
			"attempt", attempt+1,
			"delay", delay,
			"error", err,
		)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fetch.Result{}, ctx.Err()
		}
	}
}

// Schedule registers periodic refreshes with the cron runner using the
// given cron spec. Each run gets its own timeout.
func (r *Refresher) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := r.Refresh(ctx); err != nil {
			r.logger.Error("scheduled refresh failed", "error", err)
		}
	})
}
