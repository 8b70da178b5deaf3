// Package api provides the HTTP API for OneJourney.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/onejourney/onejourney/internal/api/handler"
	"github.com/onejourney/onejourney/internal/api/middleware"
	"github.com/onejourney/onejourney/internal/api/response"
	"github.com/onejourney/onejourney/internal/assistant"
	"github.com/onejourney/onejourney/internal/routing"
	"github.com/onejourney/onejourney/internal/wallet"
)

// DefaultServiceName is used for tracing when RouterConfig.ServiceName is empty.
const DefaultServiceName = "onejourney-api"

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// MetricsHandler serves Prometheus exposition on /metrics when set.
	MetricsHandler http.Handler

	RequireTLS     bool
	AllowedOrigins []string

	Routes    *routing.Service
	Wallet    *wallet.Service
	Assistant *assistant.Service
	Ops       *handler.OpsHandler
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = DefaultServiceName
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: cfg.AllowedOrigins}))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, r, "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w, r, "method not allowed on this endpoint")
	})

	opsHandler := cfg.Ops
	if opsHandler == nil {
		opsHandler = handler.NewOpsHandler(handler.OpsConfig{})
	}
	routeHandler := handler.NewRouteHandler(cfg.Routes, cfg.Logger)
	walletHandler := handler.NewWalletHandler(cfg.Wallet, cfg.Logger)
	assistantHandler := handler.NewAssistantHandler(cfg.Assistant)

	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	r.Route("/api", func(r chi.Router) {
		// Ops endpoints (no rate limit)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Endpoints that may call a paid upstream
		r.Group(func(r chi.Router) {
			r.Use(expensiveRateLimit)
			r.Use(middleware.RequireJSON)
			r.Post("/optimize", routeHandler.Optimize)
			r.Post("/ai", assistantHandler.Ask)
		})

		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Use(middleware.RequireJSON)

			r.Route("/wallet", func(r chi.Router) {
				r.Get("/", walletHandler.Get)
				r.Post("/use", walletHandler.Use)
				r.Post("/topup", walletHandler.TopUp)
			})
			r.Get("/history", walletHandler.History)
			r.Get("/challenges", walletHandler.Challenges)
		})
	})

	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	return r
}
