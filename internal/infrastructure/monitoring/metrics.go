package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the service on a private
// registry
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Reconciliation metrics
	auditsTotal            prometheus.Counter
	auditItemsTotal        *prometheus.CounterVec
	commitsTotal           *prometheus.CounterVec
	commitItemsTotal       *prometheus.CounterVec
	migrationsTotal        *prometheus.CounterVec
	migrationItemsTotal    *prometheus.CounterVec
	classificationsTotal   *prometheus.CounterVec
	classificationDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with a new registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		auditsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pantry_audits_total",
				Help: "Total number of recipe audits",
			},
		),
		auditItemsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_audit_items_total",
				Help: "Audited recipe ingredients by match result",
			},
			[]string{"result"},
		),
		commitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_commits_total",
				Help: "Shopping list commits by outcome",
			},
			[]string{"status"},
		),
		commitItemsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_commit_items_total",
				Help: "Shopping list rows written by commits",
			},
			[]string{"action"},
		),
		migrationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_migrations_total",
				Help: "Checkout migrations by outcome",
			},
			[]string{"status"},
		),
		migrationItemsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_migration_items_total",
				Help: "Items handled by checkout migrations",
			},
			[]string{"result"},
		),
		classificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_classifications_total",
				Help: "Location classifier calls by outcome",
			},
			[]string{"outcome"},
		),
		classificationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pantry_classification_duration_seconds",
				Help:    "Location classifier latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"outcome"},
		),
	}
}

// Registry exposes the registry for tests and extra collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveAudit records one audit
func (m *Metrics) ObserveAudit(items, unresolved int) {
	m.auditsTotal.Inc()
	m.auditItemsTotal.WithLabelValues("resolved").Add(float64(items - unresolved))
	m.auditItemsTotal.WithLabelValues("unresolved").Add(float64(unresolved))
}

// ObserveCommit records one shopping list commit
func (m *Metrics) ObserveCommit(status string, added, updated, failed int) {
	m.commitsTotal.WithLabelValues(status).Inc()
	m.commitItemsTotal.WithLabelValues("added").Add(float64(added))
	m.commitItemsTotal.WithLabelValues("updated").Add(float64(updated))
	m.commitItemsTotal.WithLabelValues("failed").Add(float64(failed))
}

// ObserveMigration records one checkout migration
func (m *Metrics) ObserveMigration(status string, moved, failed int) {
	m.migrationsTotal.WithLabelValues(status).Inc()
	m.migrationItemsTotal.WithLabelValues("moved").Add(float64(moved))
	m.migrationItemsTotal.WithLabelValues("failed").Add(float64(failed))
}

// ObserveClassification records one classifier call
func (m *Metrics) ObserveClassification(outcome string, duration time.Duration) {
	m.classificationsTotal.WithLabelValues(outcome).Inc()
	m.classificationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// Middleware records request counts and latency by chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
