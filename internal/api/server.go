// Package api provides the HTTP API server and handlers for the
// PageTurn application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pageturnapp/pageturn-server/internal/config"
	"github.com/pageturnapp/pageturn-server/internal/http/response"
	"github.com/pageturnapp/pageturn-server/internal/ratelimit"
	"github.com/pageturnapp/pageturn-server/internal/store"
)

const apiVersion = "1.0.0"

// catalogSearchPath is the only route proxied to an external service,
// so it is the only one that gets per-client rate limiting.
const catalogSearchPath = "/api/v1/catalog/search"

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    *store.Store
	services *Services
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger

	catalogLimiter *ratelimit.KeyedRateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg *config.Config, store *store.Store, services *Services, logger *slog.Logger) *Server {
	s := &Server{
		store:    store,
		services: services,
		router:   chi.NewRouter(),
		logger:   logger,
	}

	if cfg.Catalog.RequestsPerMinute > 0 {
		s.catalogLimiter = ratelimit.New(float64(cfg.Catalog.RequestsPerMinute)/60.0, cfg.Catalog.RequestsPerMinute)
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig(cfg.Server.Name, apiVersion)
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerBookRoutes()
	s.registerSessionRoutes()
	s.registerNoteRoutes()
	s.registerStatsRoutes()
	s.registerSearchRoutes()
	s.registerExportRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops background work owned by the handler, currently the
// rate limiter's idle-entry sweeper.
func (s *Server) Close() {
	if s.catalogLimiter != nil {
		s.catalogLimiter.Stop()
	}
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	s.router.Use(s.catalogRateLimit)
}

// catalogRateLimit applies per-client rate limiting to the catalog
// proxy, keeping one misbehaving client from burning the Open Library
// quota for everyone on the LAN.
func (s *Server) catalogRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.catalogLimiter != nil && r.URL.Path == catalogSearchPath {
			if !s.catalogLimiter.Allow(r.RemoteAddr) {
				s.logger.Warn("catalog rate limit exceeded", "client", r.RemoteAddr)
				response.TooManyRequests(w, "too many catalog searches, try again shortly", s.logger)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
