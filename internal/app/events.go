package app

import (
	"context"
	"errors"

	"github.com/pvsaraivar/Planilha-festas/internal/catalog"
	"github.com/pvsaraivar/Planilha-festas/internal/event"
	"github.com/pvsaraivar/Planilha-festas/internal/filter"
)

// ErrEventNotFound is returned when no event in the current snapshot has
// the requested slug.
var ErrEventNotFound = errors.New("event not found")

// relatedLimit caps the related-events list on the detail view.
const relatedLimit = 4

// EventsUsecase defines the event listing use cases.
type EventsUsecase interface {
	List(ctx context.Context, state filter.State) ([]event.Event, error)
	Get(ctx context.Context, slug string) (EventDetail, error)
}

// EventDetail is one event plus its related upcoming events.
type EventDetail struct {
	Event   event.Event   `json:"event"`
	Related []event.Event `json:"related,omitempty"`
}

// FavoritesReader is the store surface the favorites filter stage needs.
type FavoritesReader interface {
	ListFavorites(ctx context.Context) ([]string, error)
}

// EventsService implements EventsUsecase over the catalog snapshot.
type EventsService struct {
	Catalog   *catalog.Catalog
	Favorites FavoritesReader
	Clock     Clock
}

// List applies the filter state to the current snapshot. The snapshot is
// read once at invocation time, so a concurrent refresh swapping the
// collection underneath only affects later calls.
func (s *EventsService) List(ctx context.Context, state filter.State) ([]event.Event, error) {
	var fav filter.IsFavorite
	if state.FavoritesOnly && s.Favorites != nil {
		slugs, err := s.Favorites.ListFavorites(ctx)
		if err != nil {
			return nil, err
		}
		set := make(map[string]struct{}, len(slugs))
		for _, slug := range slugs {
			set[slug] = struct{}{}
		}
		fav = func(slug string) bool {
			_, ok := set[slug]
			return ok
		}
	}

	return filter.Apply(s.Catalog.Snapshot(), state, fav, s.Clock.Now()), nil
}

// Get resolves one event by slug, with its related events.
func (s *EventsService) Get(ctx context.Context, slug string) (EventDetail, error) {
	ev, ok := s.Catalog.Lookup(slug)
	if !ok {
		return EventDetail{}, ErrEventNotFound
	}
	return EventDetail{
		Event:   ev,
		Related: s.Catalog.Related(slug, s.Clock.Now(), relatedLimit),
	}, nil
}
