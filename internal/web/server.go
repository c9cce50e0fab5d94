// Package web serves the cascading part-specification API over HTTP.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/partspec/internal/config"
	"github.com/JonMunkholm/partspec/internal/core"
	"github.com/JonMunkholm/partspec/internal/store"
	"github.com/JonMunkholm/partspec/internal/web/middleware"
)

// PartStore persists published series. *store.Repository implements it.
type PartStore interface {
	core.Publisher
	Get(ctx context.Context, code string) (store.PartSpec, error)
	List(ctx context.Context) ([]store.PartSpec, error)
	Deactivate(ctx context.Context, code string) error
}

// Reloader re-reads the configured specification source.
type Reloader func(ctx context.Context) (core.Workbook, error)

// Server is the HTTP server for the specification API.
type Server struct {
	service *core.Service
	cfg     *config.Config
	parts   PartStore
	reload  Reloader
	writes  *core.WriteLimiter
	router  *chi.Mux
	server  *http.Server
}

// Option configures optional collaborators of a Server.
type Option func(*Server)

// WithPartStore enables publishing and the parts endpoints.
func WithPartStore(p PartStore) Option {
	return func(s *Server) { s.parts = p }
}

// WithReloader enables POST /api/reload.
func WithReloader(r Reloader) Option {
	return func(s *Server) { s.reload = r }
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		writes:  core.NewWriteLimiter(cfg.Server.MaxConcurrentWrites, cfg.Server.WriteWait),
		router:  chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)

		// Cascading queries
		r.Route("/series/{series}", func(r chi.Router) {
			r.Get("/tree", s.handleTree)
			r.Get("/values/{column}", s.handleValues)
			r.Post("/resolve", s.handleResolve)
		})

		// Schema export
		r.Get("/export", s.handleExport)
		r.Get("/export/{series}", s.handleExportSeries)

		// Published specifications
		r.Get("/parts", s.handleListParts)
		r.Get("/parts/{code}", s.handleGetPart)

		// Operations that change state
		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(s.cfg.Security))
			r.Use(s.limitWrites)
			r.Post("/publish/{series}", s.handlePublish)
			r.Delete("/parts/{code}", s.handleDeactivatePart)
			r.Post("/reload", s.handleReload)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// WaitForWrites blocks until in-flight publish and reload requests finish.
func (s *Server) WaitForWrites(ctx context.Context) error {
	return s.writes.WaitForDrain(ctx)
}

// limitWrites holds a write slot for the duration of the request.
func (s *Server) limitWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.writes.Acquire(r.Context()); err != nil {
			w.Header().Set("Retry-After", "5")
			s.respondError(w, r, err)
			return
		}
		defer s.writes.Release()
		next.ServeHTTP(w, r)
	})
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
