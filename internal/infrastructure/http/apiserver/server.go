// Package apiserver provides the JSON API HTTP server
package apiserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/alchemorsel/pantry/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/pantry/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/pantry/internal/infrastructure/monitoring"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/healthcheck"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const readHeaderTimeout = 10 * time.Second

// APIServer serves the reconciliation API
type APIServer struct {
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server
	handler   http.Handler
	reconcile *handlers.ReconcileHandlers
	health    *healthcheck.HealthCheck
	metrics   *monitoring.Metrics
	limiter   outbound.RateLimiter
	openAPI   *OpenAPIHandler
}

// NewAPIServer creates a new API server instance. health, metrics and
// limiter may be nil.
func NewAPIServer(
	cfg *config.Config,
	log *zap.Logger,
	service inbound.ReconciliationService,
	health *healthcheck.HealthCheck,
	metrics *monitoring.Metrics,
	limiter outbound.RateLimiter,
) *APIServer {
	log = log.Named("api-server")
	s := &APIServer{
		config:    cfg,
		logger:    log,
		reconcile: handlers.NewReconcileHandlers(service, log),
		health:    health,
		metrics:   metrics,
		limiter:   limiter,
		openAPI:   NewOpenAPIHandler(log),
	}

	var h http.Handler = s.setupRoutes()
	h = otelhttp.NewHandler(h, "pantry-api")
	if cfg.Server.EnableH2C {
		h = h2c.NewHandler(h, &http2.Server{})
	}
	s.handler = h

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           h,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}

	return s
}

// setupRoutes configures the JSON API routes
func (s *APIServer) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	if s.config.Server.EnableCORS {
		r.Use(middleware.CORS(s.config.Server.AllowedOrigins))
	}
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}

	healthPath := s.config.Monitoring.HealthCheckPath
	if healthPath == "" {
		healthPath = "/health"
	}
	if s.health != nil {
		r.Get(healthPath, s.health.Handler())
		r.Get(healthPath+"/live", s.health.LivenessHandler())
		r.Get(healthPath+"/ready", s.health.ReadinessHandler())
	}
	if s.metrics != nil && s.config.Monitoring.EnableMetrics {
		metricsPath := s.config.Monitoring.MetricsPath
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		r.Method(http.MethodGet, metricsPath, s.metrics.Handler())
	}

	r.Get("/api/v1/openapi.yaml", s.openAPI.ServeOpenAPISpec)
	r.Get("/api/v1/docs", s.openAPI.ServeSwaggerUI)

	r.Route("/api/v1", func(r chi.Router) {
		if s.config.Server.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(s.config.Server.RequestTimeout))
		}
		r.Use(middleware.JSONOnly())
		s.setupAPIV1Routes(r)
	})

	return r
}

// setupAPIV1Routes configures API v1 endpoints
func (s *APIServer) setupAPIV1Routes(r chi.Router) {
	h := s.reconcile

	limit := func(next http.Handler) http.Handler { return next }
	if s.limiter != nil {
		limit = middleware.RateLimit(s.limiter, s.logger)
	}

	r.With(limit).Post("/checkout/categorize", h.CategorizeCheckout)

	r.Route("/users/{userID}", func(r chi.Router) {
		r.Use(limit)

		r.Post("/audits", h.AuditRecipe)
		r.Post("/audits/commit", h.CommitAudit)

		r.Post("/checkout", h.StartCheckout)
		r.Post("/checkout/confirm", h.ConfirmCheckout)

		r.Get("/shopping-list", h.GetShoppingList)
		r.Patch("/shopping-list/{itemID}", h.ToggleShoppingItem)

		r.Get("/inventory", h.GetInventory)
		r.Get("/locations", h.GetLocations)
	})
}

// Handler returns the fully wrapped HTTP handler
func (s *APIServer) Handler() http.Handler {
	return s.handler
}

// Start starts the API server and blocks until it stops
func (s *APIServer) Start() error {
	s.logger.Info("Starting API server",
		zap.String("address", s.server.Addr),
		zap.Bool("h2c", s.config.Server.EnableH2C),
	)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the API server
func (s *APIServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")
	if s.config.Server.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()
	}
	return s.server.Shutdown(ctx)
}
