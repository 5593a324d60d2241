package api

import (
	"errors"
	"net/http"

	"github.com/pvsaraivar/Planilha-festas/internal/app"
	"github.com/pvsaraivar/Planilha-festas/internal/event"
	"github.com/pvsaraivar/Planilha-festas/internal/filter"
)

// eventsResponse represents the response for the events listing.
type eventsResponse struct {
	Items []event.Event `json:"items"`
	Count int           `json:"count"`
	// Selected echoes the deep-linked event named by ?event=<slug>,
	// whether or not it survives the active filters.
	Selected *event.Event `json:"selected,omitempty"`
}

// handleEvents handles GET /api/v1/events
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := filter.FromQuery(q)

	items, err := s.events.List(r.Context(), state)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}

	// Ensure Items is an empty array, not null, for JSON serialization
	if items == nil {
		items = []event.Event{}
	}

	resp := eventsResponse{Items: items, Count: len(items)}
	if slug := q.Get("event"); slug != "" {
		if detail, err := s.events.Get(r.Context(), slug); err == nil {
			resp.Selected = &detail.Event
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleEvent handles GET /api/v1/events/{slug}
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	detail, err := s.events.Get(r.Context(), slug)
	if err != nil {
		if errors.Is(err, app.ErrEventNotFound) {
			writeError(w, http.StatusNotFound, "event not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}
