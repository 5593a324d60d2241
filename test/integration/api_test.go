//go:build integration

package integration

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func fixtureCSV() string {
	return strings.Join([]string{
		"Evento,Data,Local,Início,Fim,Gêneros,Oculto",
		fmt.Sprintf("Na Pista,%s,Galpão ZN,22:00,04:00,\"Techno, House\",", futureDate(7)),
		fmt.Sprintf("Beije,%s,Casa Rosa,,,Funk,", futureDate(14)),
		fmt.Sprintf("Secreta,%s,Porão,,,House,sim", futureDate(7)),
		"Antiga,01/01/2020,Centro,,,House,",
	}, "\n")
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	app := NewTestApp(t, fixtureCSV())
	defer app.Close()
	app.Refresh(t)

	var result map[string]any
	resp := getJSON(t, app.URL()+"/api/v1/health", &result)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if result["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", result["status"])
	}
	// Hidden and past rows never reach the catalog count? The hidden row
	// is dropped at normalize time; the past row stays in the catalog
	// and is filtered per request.
	if result["events"] != float64(3) {
		t.Errorf("expected 3 events in catalog, got %v", result["events"])
	}
}

func TestEventsListingFlow(t *testing.T) {
	app := NewTestApp(t, fixtureCSV())
	defer app.Close()
	app.Refresh(t)

	type listing struct {
		Items []struct {
			Name string `json:"name"`
			Slug string `json:"slug"`
		} `json:"items"`
		Count int `json:"count"`
	}

	t.Run("default hides past and hidden", func(t *testing.T) {
		var got listing
		getJSON(t, app.URL()+"/api/v1/events", &got)

		if got.Count != 2 {
			t.Fatalf("expected 2 upcoming events, got %+v", got)
		}
		if got.Items[0].Slug != "na-pista" || got.Items[1].Slug != "beije" {
			t.Errorf("unexpected order: %+v", got.Items)
		}
	})

	t.Run("genre filter", func(t *testing.T) {
		var got listing
		getJSON(t, app.URL()+"/api/v1/events?genre=funk", &got)
		if got.Count != 1 || got.Items[0].Slug != "beije" {
			t.Errorf("unexpected genre result: %+v", got)
		}
	})

	t.Run("text search", func(t *testing.T) {
		var got listing
		getJSON(t, app.URL()+"/api/v1/events?search=rosa", &got)
		if got.Count != 1 || got.Items[0].Slug != "beije" {
			t.Errorf("unexpected search result: %+v", got)
		}
	})

	t.Run("detail with related", func(t *testing.T) {
		var got struct {
			Event struct {
				Slug string `json:"slug"`
			} `json:"event"`
		}
		resp := getJSON(t, app.URL()+"/api/v1/events/na-pista", &got)
		if resp.StatusCode != http.StatusOK || got.Event.Slug != "na-pista" {
			t.Errorf("detail = %d %+v", resp.StatusCode, got)
		}
	})

	t.Run("unknown slug is 404", func(t *testing.T) {
		resp := getJSON(t, app.URL()+"/api/v1/events/nope", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})
}

func TestFavoritesFlow(t *testing.T) {
	app := NewTestApp(t, fixtureCSV())
	defer app.Close()
	app.Refresh(t)

	// Toggle on
	resp, err := http.Post(app.URL()+"/api/v1/favorites/beije", "", nil)
	if err != nil {
		t.Fatalf("POST toggle: %v", err)
	}
	var toggled struct {
		Slug      string `json:"slug"`
		Favorited bool   `json:"favorited"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&toggled); err != nil {
		t.Fatalf("decode toggle: %v", err)
	}
	resp.Body.Close()
	if !toggled.Favorited {
		t.Fatalf("expected favorited=true, got %+v", toggled)
	}

	// Listing with favorites filter sees only the toggled slug
	var got struct {
		Items []struct {
			Slug string `json:"slug"`
		} `json:"items"`
		Count int `json:"count"`
	}
	getJSON(t, app.URL()+"/api/v1/events?favorites=1", &got)
	if got.Count != 1 || got.Items[0].Slug != "beije" {
		t.Errorf("favorites listing = %+v", got)
	}

	// Favorites survive across store reads
	var favs struct {
		Items []string `json:"items"`
	}
	getJSON(t, app.URL()+"/api/v1/favorites", &favs)
	if len(favs.Items) != 1 || favs.Items[0] != "beije" {
		t.Errorf("favorites = %+v", favs)
	}

	// Toggle off
	resp, err = http.Post(app.URL()+"/api/v1/favorites/beije", "", nil)
	if err != nil {
		t.Fatalf("POST toggle: %v", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	getJSON(t, app.URL()+"/api/v1/favorites", &favs)
	if len(favs.Items) != 0 {
		t.Errorf("favorites after untoggle = %+v", favs)
	}
}

func TestCalendarFeed(t *testing.T) {
	app := NewTestApp(t, fixtureCSV())
	defer app.Close()
	app.Refresh(t)

	resp, err := http.Get(app.URL() + "/api/v1/events.ics")
	if err != nil {
		t.Fatalf("GET ics: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read ics: %v", err)
	}
	feed := string(body)

	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/calendar") {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(feed, "SUMMARY:Na Pista") || !strings.Contains(feed, "SUMMARY:Beije") {
		t.Errorf("feed missing events:\n%s", feed)
	}
	if strings.Contains(feed, "Antiga") {
		t.Error("past event should not appear in the feed")
	}
}

func TestStreamNotifiesOnRefresh(t *testing.T) {
	app := NewTestApp(t, fixtureCSV())
	defer app.Close()
	app.Refresh(t)

	resp, err := http.Get(app.URL() + "/api/v1/stream")
	if err != nil {
		t.Fatalf("GET stream: %v", err)
	}
	defer resp.Body.Close()

	lines := make(chan string, 64)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	waitForLine := func(substr string) string {
		deadline := time.After(5 * time.Second)
		for {
			select {
			case line, ok := <-lines:
				if !ok {
					t.Fatalf("stream closed waiting for %q", substr)
				}
				if strings.Contains(line, substr) {
					return line
				}
			case <-deadline:
				t.Fatalf("timeout waiting for %q", substr)
			}
		}
	}

	// Initial snapshot notice arrives immediately after connect
	waitForLine("event: catalog")
	initial := waitForLine(`"events":3`)

	// A changed sheet produces a fresh notice
	app.SetSheet(fixtureCSV() + fmt.Sprintf("\nNova,%s,Arena,,,Techno,", futureDate(3)))
	app.Refresh(t)

	waitForLine("event: catalog")
	updated := waitForLine(`"events":4`)

	if initial == updated {
		t.Error("expected a distinct notice after refresh")
	}
}
