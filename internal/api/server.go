// Package api serves the league over HTTP: a huma-described JSON API on a
// chi router plus the SSE sync stream.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dominopro/dominopro-server/internal/logger"
	"github.com/dominopro/dominopro-server/internal/ratelimit"
	"github.com/dominopro/dominopro-server/internal/sse"
	"github.com/dominopro/dominopro-server/internal/validation"
)

const (
	apiTitle   = "Domino Pro API"
	apiVersion = "1.0.0"

	defaultSummaryPerMinute = 6
)

// Options tunes the HTTP surface.
type Options struct {
	AllowedOrigins   []string
	SummaryPerMinute int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services       *Services
	router         *chi.Mux
	api            huma.API
	validator      *validation.Validator
	summaryLimiter *ratelimit.KeyedRateLimiter
	sseManager     *sse.Manager
	logger         *slog.Logger
	startedAt      time.Time
}

// NewServer creates a server with every route registered. sseHandler may be
// nil, in which case the stream route is not mounted.
func NewServer(services *Services, sseManager *sse.Manager, sseHandler http.Handler, opts Options, log *slog.Logger) *Server {
	if opts.SummaryPerMinute <= 0 {
		opts.SummaryPerMinute = defaultSummaryPerMinute
	}

	s := &Server{
		services:       services,
		router:         chi.NewRouter(),
		validator:      validation.New(),
		summaryLimiter: ratelimit.PerMinute(opts.SummaryPerMinute),
		sseManager:     sseManager,
		logger:         logger.OrDiscard(log),
		startedAt:      time.Now(),
	}

	s.setupMiddleware(opts.AllowedOrigins)

	if sseHandler != nil {
		s.router.Get("/api/v1/sync/stream", sseHandler.ServeHTTP)
	}

	config := huma.DefaultConfig(apiTitle, apiVersion)
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"adminPin": {
			Type: "apiKey",
			In:   "header",
			Name: adminPinHeader,
		},
	}
	config.Transformers = append(config.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, config)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerStateRoutes()
	s.registerPlayerRoutes()
	s.registerSessionRoutes()
	s.registerAchievementRoutes()
	s.registerBadgeRoutes()
	s.registerSummaryRoutes()
	s.registerAdminRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests and OpenAPI export.
func (s *Server) API() huma.API { return s.api }

// Close releases background resources.
func (s *Server) Close() {
	s.summaryLimiter.Stop()
}

func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(withClientIP)

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", adminPinHeader, middleware.RequestIDHeader},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}))
}
