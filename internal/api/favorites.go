package api

import (
	"errors"
	"net/http"

	"github.com/pvsaraivar/Planilha-festas/internal/store"
)

// favoritesResponse represents the response for the favorites listing.
type favoritesResponse struct {
	Items []string `json:"items"`
	Count int      `json:"count"`
}

// toggleResponse reports the new favorite state after a toggle.
type toggleResponse struct {
	Slug      string `json:"slug"`
	Favorited bool   `json:"favorited"`
}

// handleFavoritesList handles GET /api/v1/favorites
func (s *Server) handleFavoritesList(w http.ResponseWriter, r *http.Request) {
	slugs, err := s.favorites.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	if slugs == nil {
		slugs = []string{}
	}
	writeJSON(w, http.StatusOK, favoritesResponse{Items: slugs, Count: len(slugs)})
}

// handleFavoriteToggle handles POST /api/v1/favorites/{slug}
func (s *Server) handleFavoriteToggle(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	favorited, err := s.favorites.Toggle(r.Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrInvalidSlug) {
			writeError(w, http.StatusBadRequest, "invalid slug", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}

	writeJSON(w, http.StatusOK, toggleResponse{Slug: slug, Favorited: favorited})
}
