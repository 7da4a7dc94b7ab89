// Package api wires the HTTP surface: router, middleware, handlers.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"permscope/internal/api/handlers"
	apimiddleware "permscope/internal/api/middleware"
	"permscope/internal/config"
	"permscope/internal/infrastructure/cache"
	"permscope/internal/metrics"
	"permscope/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	cache    *cache.RedisCache
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

// NewRouter creates a new Router instance
func NewRouter(cfg config.Config, h *handlers.Handlers, c *cache.RedisCache, m *metrics.Metrics, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		cache:    c,
		metrics:  m,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Rate limiting requires the Redis cache
	if r.config.RateLimit.Enabled && r.cache != nil {
		router.Use(apimiddleware.RateLimiter(r.cache, r.config.RateLimit))
	}

	// Public routes
	router.Group(func(pub chi.Router) {
		pub.Get("/health", r.handlers.Health.Check)
		pub.Get("/ready", r.handlers.Health.Ready)
	})

	if r.metrics != nil {
		router.Method(http.MethodGet, "/metrics", r.metrics.Handler())
	}

	// API v1 routes (authenticated when an API key is configured)
	router.Route("/api/v1", func(api chi.Router) {
		api.Use(apimiddleware.APIKeyAuth(r.config.Auth.APIKey))

		// Scan lifecycle
		api.Post("/scan", r.handlers.Scan.Start)
		api.Get("/scan", r.handlers.Scan.Status)
		api.Get("/scan/result", r.handlers.Scan.Result)

		// Query layer over the latest scan
		api.Route("/apps", func(apps chi.Router) {
			apps.Get("/", r.handlers.Apps.List)
			apps.Get("/{package}", r.handlers.Apps.Get)
		})
		api.Get("/aggregate", r.handlers.Apps.Aggregate)

		// Classification and reference data
		api.Route("/permissions", func(perms chi.Router) {
			perms.Post("/classify", r.handlers.Permissions.Classify)
			perms.Get("/reference", r.handlers.Permissions.Reference)
		})

		api.Get("/streaming/stats", r.handlers.Streaming.GetStats)
	})

	// WebSocket streaming endpoint (real-time scan updates)
	router.Get("/ws/scans", r.handlers.Streaming.HandleWebSocket)

	return router
}
