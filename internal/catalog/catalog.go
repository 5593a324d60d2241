// Package catalog owns the current normalized event collection. The
// snapshot is immutable: each refresh replaces it wholesale, and
// consumers read whatever snapshot is current at call time. Safe for
// concurrent use.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/pvsaraivar/Planilha-festas/internal/event"
	"github.com/pvsaraivar/Planilha-festas/internal/schedule"
)

// Catalog holds the one "all events" collection.
type Catalog struct {
	mu        sync.RWMutex
	events    []event.Event
	checksum  string
	updatedAt time.Time
}

// New creates an empty Catalog.
func New() *Catalog {
	return &Catalog{}
}

// Checksum is the dedupe key for refreshes: the hex SHA-256 of the raw
// sheet payload.
func Checksum(body []byte) string {
	h := sha256.Sum256(body)
	return hex.EncodeToString(h[:])
}

// Replace swaps in a freshly normalized collection. It reports false
// when checksum matches the current snapshot, in which case nothing
// changes; the last replace to arrive wins, with no merging.
func (c *Catalog) Replace(events []event.Event, checksum string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if checksum != "" && checksum == c.checksum {
		return false
	}
	c.events = events
	c.checksum = checksum
	c.updatedAt = now
	return true
}

// Snapshot returns the current collection. Callers must treat the slice
// as read-only; it is shared with every other concurrent reader.
func (c *Catalog) Snapshot() []event.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.events
}

// Len returns the size of the current snapshot.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.events)
}

// Checksum returns the checksum of the current snapshot.
func (c *Catalog) Checksum() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.checksum
}

// UpdatedAt returns when the snapshot was last replaced.
func (c *Catalog) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}

// Lookup finds an event by slug in the current snapshot.
func (c *Catalog) Lookup(slug string) (event.Event, bool) {
	for _, ev := range c.Snapshot() {
		if ev.Slug == slug {
			return ev, true
		}
	}
	return event.Event{}, false
}

// Related returns upcoming events sharing at least one genre token with
// the named event, nearest first, capped at limit (unlimited when
// limit <= 0).
func (c *Catalog) Related(slug string, now time.Time, limit int) []event.Event {
	ev, ok := c.Lookup(slug)
	if !ok {
		return nil
	}
	want := map[string]struct{}{}
	for _, g := range ev.GenreTokens() {
		want[g] = struct{}{}
	}
	if len(want) == 0 {
		return nil
	}

	var out []event.Event
	for _, other := range c.Snapshot() {
		if other.Slug == ev.Slug {
			continue
		}
		if schedule.IsOver(other, now) {
			continue
		}
		for _, g := range other.GenreTokens() {
			if _, ok := want[g]; ok {
				out = append(out, other)
				break
			}
		}
	}

	schedule.Sort(out, now.Location())
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
