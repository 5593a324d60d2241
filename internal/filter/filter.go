// Package filter narrows and orders the event collection from ephemeral
// UI state. Filtering is a chain of narrowing stages (date, text, genre,
// favorites); the result is always re-sorted by date before it reaches a
// consumer.
package filter

import (
	"net/url"
	"strings"
	"time"

	"github.com/pvsaraivar/Planilha-festas/internal/event"
	"github.com/pvsaraivar/Planilha-festas/internal/schedule"
)

// State is the filter input derived from UI controls. It is never
// persisted server-side; it round-trips through URL query parameters for
// shareable links.
type State struct {
	Term          string
	Date          string // exact calendar date, "DD/MM/YYYY" or "YYYY-MM-DD"
	Genre         string
	FavoritesOnly bool
}

// IsFavorite reports membership of a slug in the user's favorites set.
type IsFavorite func(slug string) bool

// FromQuery reconstructs a State from URL query parameters, the read half
// of the deep-link contract.
func FromQuery(q url.Values) State {
	s := State{
		Term:  strings.TrimSpace(q.Get("search")),
		Date:  strings.TrimSpace(q.Get("date")),
		Genre: strings.TrimSpace(q.Get("genre")),
	}
	switch strings.ToLower(q.Get("favorites")) {
	case "1", "true", "sim":
		s.FavoritesOnly = true
	}
	return s
}

// Query encodes the state back into URL query parameters. Zero-value
// fields are omitted so shared links stay short.
func (s State) Query() url.Values {
	q := url.Values{}
	if s.Term != "" {
		q.Set("search", s.Term)
	}
	if s.Date != "" {
		q.Set("date", s.Date)
	}
	if s.Genre != "" {
		q.Set("genre", s.Genre)
	}
	if s.FavoritesOnly {
		q.Set("favorites", "1")
	}
	return q
}

// Apply runs the narrowing stages over the current snapshot and returns a
// fresh, date-sorted slice. The all slice is never modified. With an
// exact date filter the upcoming-only default is bypassed; otherwise only
// events not yet over at now survive. fav may be nil when the favorites
// stage is off.
func Apply(all []event.Event, s State, fav IsFavorite, now time.Time) []event.Event {
	loc := now.Location()

	var (
		exactDate time.Time
		byDate    bool
	)
	if s.Date != "" {
		exactDate, byDate = parseFilterDate(s.Date, loc)
	}

	term := strings.ToLower(s.Term)
	genre := strings.ToLower(strings.TrimSpace(s.Genre))

	out := make([]event.Event, 0, len(all))
	for _, ev := range all {
		if byDate {
			if !schedule.SameDay(ev, exactDate) {
				continue
			}
		} else if schedule.IsOver(ev, now) {
			continue
		}

		if term != "" && !matchesTerm(ev, term) {
			continue
		}
		if genre != "" && !hasGenre(ev, genre) {
			continue
		}
		if s.FavoritesOnly && (fav == nil || !fav(ev.Slug)) {
			continue
		}
		out = append(out, ev)
	}

	schedule.Sort(out, loc)
	return out
}

// parseFilterDate accepts the sheet's DD/MM/YYYY form and the HTML date
// input's YYYY-MM-DD form. An unparseable value disables the date stage.
func parseFilterDate(s string, loc *time.Location) (time.Time, bool) {
	if d, ok := schedule.ParseLocalDate(s, loc); ok {
		return d, true
	}
	if d, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return d, true
	}
	return time.Time{}, false
}

func matchesTerm(ev event.Event, term string) bool {
	for _, field := range []string{ev.Name, ev.Location, ev.Attractions, ev.Producer} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func hasGenre(ev event.Event, genre string) bool {
	for _, token := range ev.GenreTokens() {
		if token == genre {
			return true
		}
	}
	return false
}
