// Package api provides the HTTP API server and handlers for the gamedash dashboard.
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

	"github.com/gamedash/gamedash-server/internal/appstate"
	"github.com/gamedash/gamedash-server/internal/id"
	"github.com/gamedash/gamedash-server/internal/metrics"
	"github.com/gamedash/gamedash-server/internal/ratelimit"
	"github.com/gamedash/gamedash-server/internal/sse"
)

// Options tunes the HTTP surface.
type Options struct {
	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string
	// RateLimit is the per-client request budget per second. Zero disables limiting.
	RateLimit int
	// Version is reported in the OpenAPI document.
	Version string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services   *Services
	router     *chi.Mux
	api        huma.API
	sseHandler *sse.Handler
	limiter    *ratelimit.KeyedRateLimiter
	logger     *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, opts Options, logger *slog.Logger) *Server {
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}

	s := &Server{
		services: services,
		router:   chi.NewRouter(),
		logger:   logger,
	}
	if opts.RateLimit > 0 {
		s.limiter = ratelimit.New(float64(opts.RateLimit), opts.RateLimit*2)
	}
	if services.SSE != nil {
		s.sseHandler = sse.NewHandler(services.SSE, streamClientID, logger)
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig("Gamedash API", opts.Version)
	humaConfig.Info.Description = "Video game catalog browsing and aggregated dashboard charts."
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, used by tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", appstate.HeaderClientID},
		ExposedHeaders: []string{appstate.HeaderClientID},
		MaxAge:         300,
	}))
	s.router.Use(appstate.Middleware)
	if s.limiter != nil {
		s.router.Use(RateLimitMiddleware(s.limiter, s.logger))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerGameRoutes()
	s.registerDashboardRoutes()
	s.registerTermsRoutes()
	s.registerSearchRoutes()
	s.registerStateRoutes()

	// Plain chi routes outside the envelope.
	s.router.Handle("/metrics", metrics.Handler())
	if s.sseHandler != nil {
		s.router.Get("/api/v1/events", s.sseHandler.ServeHTTP)
	}
}

// streamClientID resolves the client of an event stream. Browsers cannot set
// headers on EventSource, so a client_id query parameter is accepted too.
func streamClientID(r *http.Request) string {
	if q := r.URL.Query().Get("client_id"); id.Valid(id.PrefixClient, q) {
		return q
	}
	return appstate.FromRequest(r)
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
