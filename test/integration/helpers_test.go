//go:build integration

// Package integration provides end-to-end tests for the Planilha Festas API.
package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pvsaraivar/Planilha-festas/internal/api"
	"github.com/pvsaraivar/Planilha-festas/internal/app"
	"github.com/pvsaraivar/Planilha-festas/internal/catalog"
	"github.com/pvsaraivar/Planilha-festas/internal/event"
	"github.com/pvsaraivar/Planilha-festas/internal/fetch"
	"github.com/pvsaraivar/Planilha-festas/internal/refresh"
	"github.com/pvsaraivar/Planilha-festas/internal/store"
)

// TestApp holds all dependencies for integration tests.
type TestApp struct {
	Server    *httptest.Server
	Store     *store.Store
	Catalog   *catalog.Catalog
	Hub       *api.Hub
	Refresher *refresh.Refresher

	sheet *sheetFixture

	cleanup func()
}

// sheetFixture is a fake published-sheet endpoint whose CSV body can be
// swapped between refreshes.
type sheetFixture struct {
	mu   sync.Mutex
	body string
	srv  *httptest.Server
}

func newSheetFixture(body string) *sheetFixture {
	f := &sheetFixture{body: body}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		w.Header().Set("Content-Type", "text/csv")
		fmt.Fprint(w, f.body)
	}))
	return f
}

func (f *sheetFixture) SetBody(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.body = body
}

// NewTestApp wires a real store, catalog, refresher, hub and API server
// against a fake sheet endpoint serving csv.
func NewTestApp(t *testing.T, csv string) *TestApp {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.sqlite")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	sheetSrv := newSheetFixture(csv)

	cat := catalog.New()
	hub := api.NewHub()
	go hub.Run()

	fetcher := fetch.New(sheetSrv.srv.URL, st)
	refresher := refresh.New(fetcher, cat, event.NewNormalizer(nil),
		refresh.WithOnReplace(func(count int, checksum string) {
			hub.Publish(&api.Notice{
				Events:    count,
				Checksum:  checksum,
				UpdatedAt: time.Now(),
			})
		}),
	)

	clock := refresh.LocationClock(time.Local)
	health := app.HealthService{Version: "integration", Catalog: cat}
	events := &app.EventsService{Catalog: cat, Favorites: st, Clock: clock}
	favorites := &app.FavoritesService{Store: st}

	server := api.NewServer("127.0.0.1:0", health,
		api.WithEventsUsecase(events),
		api.WithFavoritesUsecase(favorites),
		api.WithHub(hub),
		api.WithCatalogStatus(cat),
	)

	ts := httptest.NewServer(server.Handler())

	cleanup := func() {
		ts.Close()
		hub.Stop()
		sheetSrv.srv.Close()
		st.Close()
	}

	return &TestApp{
		Server:    ts,
		Store:     st,
		Catalog:   cat,
		Hub:       hub,
		Refresher: refresher,
		sheet:     sheetSrv,
		cleanup:   cleanup,
	}
}

// Close releases all resources.
func (a *TestApp) Close() {
	if a.cleanup != nil {
		a.cleanup()
	}
}

// URL returns the base URL of the test server.
func (a *TestApp) URL() string {
	return a.Server.URL
}

// Refresh runs one refresh pass against the fixture sheet.
func (a *TestApp) Refresh(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Refresher.Refresh(ctx); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
}

// SetSheet swaps the fixture CSV body served to the next fetch.
func (a *TestApp) SetSheet(body string) {
	a.sheet.SetBody(body)
}

// futureDate renders a date days from now in the sheet's D/M/YYYY form.
func futureDate(days int) string {
	d := time.Now().AddDate(0, 0, days)
	return fmt.Sprintf("%d/%d/%d", d.Day(), int(d.Month()), d.Year())
}
