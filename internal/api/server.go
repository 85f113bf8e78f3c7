// Package api provides the HTTP API server and handlers for the Notivo application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/notivo/notivo-server/internal/cache"
	"github.com/notivo/notivo-server/internal/ratelimit"
	"github.com/notivo/notivo-server/internal/store/sqlite"
	"github.com/notivo/notivo-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           *sqlite.Store
	cache           *cache.Cache
	services        *Services
	validator       *validation.Validator
	registerLimiter *ratelimit.KeyedRateLimiter
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// registerLimiter guards the registration endpoint per client IP; pass
// nil to disable the limit (tests).
func NewServer(store *sqlite.Store, c *cache.Cache, services *Services, validator *validation.Validator, registerLimiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-User-Id"},
		MaxAge:         300,
	}))
	router.Use(identityMiddleware)
	if registerLimiter != nil {
		router.Use(registerRateLimit(registerLimiter, logger))
	}

	humaConfig := huma.DefaultConfig("Notivo API", "1.0.0")
	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:           store,
		cache:           c,
		services:        services,
		validator:       validator,
		registerLimiter: registerLimiter,
		router:          router,
		api:             api,
		logger:          logger,
	}

	s.registerHealthRoutes()
	s.registerUserRoutes()
	s.registerNoteRoutes()
	s.registerTagRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
