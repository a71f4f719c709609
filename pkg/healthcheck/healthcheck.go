// Package healthcheck aggregates dependency probes into one health report and
// serves it over HTTP for liveness and readiness checks.
package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Status is the state of one dependency or of the whole service
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) rank() int {
	switch s {
	case StatusUnhealthy:
		return 2
	case StatusDegraded:
		return 1
	default:
		return 0
	}
}

// Result is the outcome of one probe. Name and Critical are filled in by the
// registry.
type Result struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Critical bool          `json:"critical"`
	Detail   string        `json:"detail,omitempty"`
	Data     interface{}   `json:"data,omitempty"`
	Latency  time.Duration `json:"-"`
}

// MarshalJSON reports the latency in fractional milliseconds
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	return json.Marshal(struct {
		plain
		LatencyMS float64 `json:"latency_ms"`
	}{plain(r), float64(r.Latency.Microseconds()) / 1000})
}

// Report is the aggregated state of every registered dependency
type Report struct {
	Status    Status    `json:"status"`
	Version   string    `json:"version"`
	CheckedAt time.Time `json:"checked_at"`
	Results   []Result  `json:"checks"`
}

// Failing lists the dependencies that are not healthy
func (r Report) Failing() []string {
	var names []string
	for _, result := range r.Results {
		if result.Status != StatusHealthy {
			names = append(names, result.Name)
		}
	}
	return names
}

// Checker probes one dependency
type Checker interface {
	Check(ctx context.Context) Result
}

// CheckFunc adapts a function to Checker
type CheckFunc func(ctx context.Context) Result

// Check calls f
func (f CheckFunc) Check(ctx context.Context) Result {
	return f(ctx)
}

type entry struct {
	name     string
	checker  Checker
	critical bool
}

// Option configures a HealthCheck
type Option func(*HealthCheck)

// WithCacheTTL sets how long a report is served before probing again. Zero
// probes on every call.
func WithCacheTTL(ttl time.Duration) Option {
	return func(h *HealthCheck) { h.ttl = ttl }
}

// WithCheckTimeout bounds each probe
func WithCheckTimeout(timeout time.Duration) Option {
	return func(h *HealthCheck) { h.timeout = timeout }
}

// HealthCheck runs registered probes concurrently. A failing critical
// dependency makes the service unhealthy; any other failure only degrades it.
type HealthCheck struct {
	version string
	logger  *zap.Logger
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	entries []entry
	last    *Report

	probes singleflight.Group
}

// New creates an empty registry
func New(version string, logger *zap.Logger, opts ...Option) *HealthCheck {
	h := &HealthCheck{
		version: version,
		logger:  logger.Named("healthcheck"),
		ttl:     5 * time.Second,
		timeout: 5 * time.Second,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds a dependency whose failure degrades the service
func (h *HealthCheck) Register(name string, checker Checker) {
	h.register(entry{name: name, checker: checker})
}

// RegisterCritical adds a dependency the service cannot work without
func (h *HealthCheck) RegisterCritical(name string, checker Checker) {
	h.register(entry{name: name, checker: checker, critical: true})
}

func (h *HealthCheck) register(e entry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.entries {
		if h.entries[i].name == e.name {
			h.entries[i] = e
			h.last = nil
			return
		}
	}
	h.entries = append(h.entries, e)
	sort.Slice(h.entries, func(i, j int) bool { return h.entries[i].name < h.entries[j].name })
	h.last = nil
}

// Check returns the cached report while it is fresh, otherwise probes every
// dependency. Concurrent callers share one probe round.
func (h *HealthCheck) Check(ctx context.Context) Report {
	h.mu.RLock()
	if h.last != nil && h.now().Sub(h.last.CheckedAt) < h.ttl {
		report := *h.last
		h.mu.RUnlock()
		return report
	}
	h.mu.RUnlock()

	v, _, _ := h.probes.Do("report", func() (interface{}, error) {
		return h.probe(context.WithoutCancel(ctx)), nil
	})
	return v.(Report)
}

func (h *HealthCheck) probe(ctx context.Context) Report {
	h.mu.RLock()
	entries := make([]entry, len(h.entries))
	copy(entries, h.entries)
	h.mu.RUnlock()

	results := make([]Result, len(entries))
	var wg sync.WaitGroup
	for i, e := range entries {
		wg.Add(1)
		go func(i int, e entry) {
			defer wg.Done()
			results[i] = h.run(ctx, e)
		}(i, e)
	}
	wg.Wait()

	report := Report{
		Status:    StatusHealthy,
		Version:   h.version,
		CheckedAt: h.now(),
		Results:   results,
	}
	for _, result := range results {
		if result.Status.rank() > report.Status.rank() {
			report.Status = result.Status
		}
	}

	h.mu.Lock()
	if h.last != nil && h.last.Status != report.Status {
		h.logger.Warn("Health status changed",
			zap.String("from", string(h.last.Status)),
			zap.String("to", string(report.Status)),
			zap.Strings("failing", report.Failing()),
		)
	}
	h.last = &report
	h.mu.Unlock()

	return report
}

func (h *HealthCheck) run(ctx context.Context, e entry) Result {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	result := e.checker.Check(ctx)
	if result.Latency == 0 {
		result.Latency = time.Since(start)
	}
	result.Name = e.name
	result.Critical = e.critical

	switch {
	case result.Status == "":
		result.Status = StatusHealthy
	case result.Status == StatusUnhealthy && !e.critical:
		result.Status = StatusDegraded
	}
	return result
}

// Handler serves the full report; 503 when unhealthy
func (h *HealthCheck) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := h.Check(r.Context())
		h.writeJSON(w, statusCode(report), report)
	}
}

// LivenessHandler answers as long as the process serves requests
func (h *HealthCheck) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "alive",
			"version": h.version,
		})
	}
}

// ReadinessHandler answers 503 only when a critical dependency is down.
// Degraded dependencies keep the service in rotation.
func (h *HealthCheck) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := h.Check(r.Context())
		body := map[string]interface{}{"status": "ready"}
		if report.Status == StatusUnhealthy {
			body["status"] = "not_ready"
		}
		if failing := report.Failing(); len(failing) > 0 {
			body["failing"] = failing
		}
		h.writeJSON(w, statusCode(report), body)
	}
}

func statusCode(report Report) int {
	if report.Status == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func (h *HealthCheck) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode health response", zap.Error(err))
	}
}

// Ping reports a dependency reachable through a ping function, such as
// (*sql.DB).PingContext
func Ping(ping func(ctx context.Context) error) Checker {
	return CheckFunc(func(ctx context.Context) Result {
		if err := ping(ctx); err != nil {
			return Result{Status: StatusUnhealthy, Detail: err.Error()}
		}
		return Result{Status: StatusHealthy}
	})
}

// PoolStats is the pgx pool snapshot attached to a postgres result
type PoolStats struct {
	Total    int32 `json:"total_conns"`
	Idle     int32 `json:"idle_conns"`
	Acquired int32 `json:"acquired_conns"`
	Max      int32 `json:"max_conns"`
}

// Postgres pings the pool and degrades once more than maxUtilization of the
// connections are acquired
func Postgres(pool *pgxpool.Pool, maxUtilization float64) Checker {
	return CheckFunc(func(ctx context.Context) Result {
		if err := pool.Ping(ctx); err != nil {
			return Result{Status: StatusUnhealthy, Detail: err.Error()}
		}

		stat := pool.Stat()
		stats := PoolStats{
			Total:    stat.TotalConns(),
			Idle:     stat.IdleConns(),
			Acquired: stat.AcquiredConns(),
			Max:      stat.MaxConns(),
		}
		result := Result{Status: StatusHealthy, Data: stats}
		if stats.Max > 0 && float64(stats.Acquired)/float64(stats.Max) > maxUtilization {
			result.Status = StatusDegraded
			result.Detail = "connection pool nearly exhausted"
		}
		return result
	})
}

// Redis pings a redis client
func Redis(client redis.UniversalClient) Checker {
	return Ping(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}
