// internal/httpserver/server.go
//
// HTTP server wiring for the daily character game.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, request log).
//   - Public endpoints: "/", "/health".
//   - Roster endpoints: GET /roster, POST /roster/reload.
//   - Daily endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Optional auth decorates requests with user context when a valid token is present;
//     guests are identified by an anonymous cookie.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/capsle/internal/auth"
	"github.com/robalobadob/capsle/internal/daily"
	"github.com/robalobadob/capsle/internal/roster"
	"github.com/robalobadob/capsle/internal/store"
)

// Deps are the collaborators a Server needs.
type Deps struct {
	Catalog      *Catalog
	Sessions     store.Store
	Results      daily.ResultStore
	Auth         *auth.Service
	Picker       daily.Picker
	ClientOrigin string

	// Now defaults to time.Now.
	Now func() time.Time
}

// Server bundles the router and its dependencies.
type Server struct {
	r    *chi.Mux
	deps Deps
}

// New constructs a Server, installs middleware, and registers routes.
func New(deps Deps) *Server {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Sessions == nil {
		deps.Sessions = store.NewMemoryStore()
	}
	s := &Server{r: chi.NewRouter(), deps: deps}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(cors(deps.ClientOrigin))

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "capsle",
			"endpoints": []string{"/health", "/roster", "POST /daily/new", "POST /daily/guess", "/auth/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	s.r.Get("/roster", s.handleRoster)
	s.r.Post("/roster/reload", s.handleRosterReload)

	s.mountDaily(s.r.With(deps.Auth.Optional))
	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Router exposes the router (useful for tests).
func (s *Server) Router() http.Handler { return s.r }

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// ------------------------------ ROSTER -------------------------------------

type characterView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

type rosterRes struct {
	Version    string             `json:"version"`
	Count      int                `json:"count"`
	LoadedAt   time.Time          `json:"loadedAt"`
	LastError  string             `json:"lastError,omitempty"`
	Attributes []roster.Attribute `json:"attributes"`
	Characters []characterView    `json:"characters"`
}

// handleRoster lists the live roster; 503 when nothing has loaded.
func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	ros, err := s.deps.Catalog.Current()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "roster_unavailable", err)
		return
	}
	loadedAt, lastErr := s.deps.Catalog.Status()
	res := rosterRes{
		Version:    ros.Version(),
		Count:      ros.Len(),
		LoadedAt:   loadedAt,
		Attributes: ros.Schema().Attributes,
		Characters: make([]characterView, 0, ros.Len()),
	}
	if lastErr != nil {
		res.LastError = lastErr.Error()
	}
	for _, c := range ros.Characters() {
		res.Characters = append(res.Characters, characterView{ID: c.ID, Name: c.DisplayName(), Image: c.Image()})
	}
	writeJSON(w, http.StatusOK, res)
}

// handleRosterReload is the user-initiated remedy for a failed load.
func (s *Server) handleRosterReload(w http.ResponseWriter, r *http.Request) {
	ros, err := s.deps.Catalog.Reload(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "roster_load_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"version": ros.Version(), "count": ros.Len()})
}
