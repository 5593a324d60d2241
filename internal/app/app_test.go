package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pvsaraivar/Planilha-festas/internal/catalog"
	"github.com/pvsaraivar/Planilha-festas/internal/event"
	"github.com/pvsaraivar/Planilha-festas/internal/filter"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type fakeFavorites struct {
	slugs   []string
	toggled map[string]bool
	err     error
}

func (f *fakeFavorites) ListFavorites(ctx context.Context) ([]string, error) {
	return f.slugs, f.err
}

func (f *fakeFavorites) ToggleFavorite(ctx context.Context, slug string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.toggled == nil {
		f.toggled = map[string]bool{}
	}
	f.toggled[slug] = !f.toggled[slug]
	return f.toggled[slug], nil
}

var testNow = time.Date(2026, 2, 1, 12, 0, 0, 0, time.FixedZone("-03", -3*60*60))

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	events := []event.Event{
		{Name: "Na Pista", Slug: "na-pista", Date: "07/02/2026", Genres: "Techno, House"},
		{Name: "Beije", Slug: "beije", Date: "14/02/2026", Genres: "Funk"},
		{Name: "Wav & Sunset", Slug: "wav-sunset", Date: "21/02/2026", Genres: "House"},
		{Name: "Carnaval Antigo", Slug: "carnaval-antigo", Date: "10/01/2026", Genres: "House"},
	}
	c := catalog.New()
	c.Replace(events, catalog.Checksum([]byte("seed")), testNow)
	return c
}

func TestEventsServiceList(t *testing.T) {
	svc := &EventsService{
		Catalog:   testCatalog(t),
		Favorites: &fakeFavorites{slugs: []string{"beije"}},
		Clock:     fixedClock{now: testNow},
	}

	t.Run("default upcoming order", func(t *testing.T) {
		got, err := svc.List(context.Background(), filter.State{})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		want := []string{"na-pista", "beije", "wav-sunset"}
		if len(got) != len(want) {
			t.Fatalf("got %d events, want %d", len(got), len(want))
		}
		for i, slug := range want {
			if got[i].Slug != slug {
				t.Errorf("event %d: got %q, want %q", i, got[i].Slug, slug)
			}
		}
	})

	t.Run("favorites only", func(t *testing.T) {
		got, err := svc.List(context.Background(), filter.State{FavoritesOnly: true})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 1 || got[0].Slug != "beije" {
			t.Fatalf("got %v, want just beije", got)
		}
	})

	t.Run("store error surfaces", func(t *testing.T) {
		wantErr := errors.New("boom")
		broken := &EventsService{
			Catalog:   testCatalog(t),
			Favorites: &fakeFavorites{err: wantErr},
			Clock:     fixedClock{now: testNow},
		}
		if _, err := broken.List(context.Background(), filter.State{FavoritesOnly: true}); !errors.Is(err, wantErr) {
			t.Fatalf("got err %v, want %v", err, wantErr)
		}
	})

	t.Run("store not consulted without favorites filter", func(t *testing.T) {
		broken := &EventsService{
			Catalog:   testCatalog(t),
			Favorites: &fakeFavorites{err: errors.New("boom")},
			Clock:     fixedClock{now: testNow},
		}
		if _, err := broken.List(context.Background(), filter.State{Genre: "house"}); err != nil {
			t.Fatalf("List: %v", err)
		}
	})
}

func TestEventsServiceGet(t *testing.T) {
	svc := &EventsService{
		Catalog: testCatalog(t),
		Clock:   fixedClock{now: testNow},
	}

	t.Run("found with related", func(t *testing.T) {
		got, err := svc.Get(context.Background(), "na-pista")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Event.Name != "Na Pista" {
			t.Errorf("got event %q, want Na Pista", got.Event.Name)
		}
		if len(got.Related) != 1 || got.Related[0].Slug != "wav-sunset" {
			t.Errorf("related = %v, want just wav-sunset", got.Related)
		}
	})

	t.Run("not found", func(t *testing.T) {
		if _, err := svc.Get(context.Background(), "nope"); !errors.Is(err, ErrEventNotFound) {
			t.Fatalf("got err %v, want ErrEventNotFound", err)
		}
	})
}

func TestFavoritesService(t *testing.T) {
	store := &fakeFavorites{slugs: []string{"beije", "na-pista"}}
	svc := &FavoritesService{Store: store}

	got, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0] != "beije" {
		t.Fatalf("List = %v", got)
	}

	on, err := svc.Toggle(context.Background(), "beije")
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !on {
		t.Error("first toggle should report favorited")
	}
	on, err = svc.Toggle(context.Background(), "beije")
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if on {
		t.Error("second toggle should report unfavorited")
	}
}

func TestHealthService(t *testing.T) {
	t.Run("with catalog", func(t *testing.T) {
		c := testCatalog(t)
		svc := HealthService{Version: "1.2.3", Catalog: c}
		got, err := svc.Handle(context.Background())
		if err != nil {
			t.Fatalf("Handle: %v", err)
		}
		if got.Status != "ok" || got.Version != "1.2.3" {
			t.Errorf("got %+v", got)
		}
		if got.Events != 4 {
			t.Errorf("Events = %d, want 4", got.Events)
		}
		if !got.UpdatedAt.Equal(testNow) {
			t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, testNow)
		}
	})

	t.Run("without catalog", func(t *testing.T) {
		got, err := HealthService{Version: "dev"}.Handle(context.Background())
		if err != nil {
			t.Fatalf("Handle: %v", err)
		}
		if got.Events != 0 || !got.UpdatedAt.IsZero() {
			t.Errorf("got %+v, want zero counts", got)
		}
	})
}
