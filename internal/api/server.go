// Package api provides HTTP API server functionality.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/pvsaraivar/Planilha-festas/internal/app"
)

// CatalogStatus is the catalog surface the stream and calendar handlers
// read.
type CatalogStatus interface {
	Len() int
	Checksum() string
	UpdatedAt() time.Time
}

// Server represents the HTTP API server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux

	// Use case dependencies
	health    app.HealthUsecase
	events    app.EventsUsecase
	favorites app.FavoritesUsecase

	// SSE hub and catalog status for the stream's initial notice
	hub     *Hub
	catalog CatalogStatus

	// Request policy
	cors          *CORSConfig
	toggleLimiter *RateLimiter

	// Calendar rendering timezone
	loc *time.Location
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithEventsUsecase sets the events use case.
func WithEventsUsecase(events app.EventsUsecase) ServerOption {
	return func(s *Server) { s.events = events }
}

// WithFavoritesUsecase sets the favorites use case.
func WithFavoritesUsecase(favorites app.FavoritesUsecase) ServerOption {
	return func(s *Server) { s.favorites = favorites }
}

// WithHub sets the SSE hub.
func WithHub(hub *Hub) ServerOption {
	return func(s *Server) { s.hub = hub }
}

// WithCatalogStatus sets the catalog status source for stream and
// calendar handlers.
func WithCatalogStatus(c CatalogStatus) ServerOption {
	return func(s *Server) { s.catalog = c }
}

// WithCORS enables CORS for the given origin allowlist.
func WithCORS(origins []string) ServerOption {
	return func(s *Server) {
		if len(origins) > 0 {
			s.cors = &CORSConfig{AllowedOrigins: origins}
		}
	}
}

// WithToggleRateLimit applies a rate limit to favorite toggles.
func WithToggleRateLimit(cfg RateLimiterConfig) ServerOption {
	return func(s *Server) { s.toggleLimiter = NewRateLimiter(cfg) }
}

// WithLocation sets the timezone used when rendering the calendar feed.
func WithLocation(loc *time.Location) ServerOption {
	return func(s *Server) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewServer creates a new API server with the given dependencies.
func NewServer(addr string, health app.HealthUsecase, opts ...ServerOption) *Server {
	mux := http.NewServeMux()
	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 0, // Disable for SSE (long-lived connections)
			IdleTimeout:  60 * time.Second,
		},
		mux:    mux,
		health: health,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerRoutes()

	var handler http.Handler = mux
	if s.cors != nil {
		handler = corsMiddleware(*s.cors)(handler)
	}
	s.httpServer.Handler = securityHeadersMiddleware(handler)
	return s
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)

	if s.events != nil {
		s.mux.HandleFunc("GET /api/v1/events", s.handleEvents)
		s.mux.HandleFunc("GET /api/v1/events/{slug}", s.handleEvent)
		s.mux.HandleFunc("GET /api/v1/events.ics", s.handleCalendar)
	}

	if s.favorites != nil {
		s.mux.HandleFunc("GET /api/v1/favorites", s.handleFavoritesList)

		toggle := http.HandlerFunc(s.handleFavoriteToggle)
		if s.toggleLimiter != nil {
			s.mux.Handle("POST /api/v1/favorites/{slug}", s.toggleLimiter.Middleware(toggle))
		} else {
			s.mux.Handle("POST /api/v1/favorites/{slug}", toggle)
		}
	}

	if s.hub != nil {
		s.mux.HandleFunc("GET /api/v1/stream", s.handleStream)
	}
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	result, err := s.health.Handle(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.toggleLimiter != nil {
		s.toggleLimiter.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the server address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the fully wrapped HTTP handler, for tests that mount
// the server behind httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
