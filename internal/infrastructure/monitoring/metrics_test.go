package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestMetrics_ReconciliationCounters(t *testing.T) {
	m := NewMetrics()

	m.ObserveAudit(5, 1)
	m.ObserveCommit("partial", 2, 1, 1)
	m.ObserveMigration("succeeded", 3, 0)
	m.ObserveClassification("timeout", 2*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.auditsTotal))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.auditItemsTotal.WithLabelValues("resolved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commitsTotal.WithLabelValues("partial")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.commitItemsTotal.WithLabelValues("added")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.migrationItemsTotal.WithLabelValues("moved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.classificationsTotal.WithLabelValues("timeout")))
}

func TestMetrics_MiddlewareUsesRoutePattern(t *testing.T) {
	m := NewMetrics()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/users/{userID}/inventory", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/users/abc/inventory", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.httpRequestsTotal.WithLabelValues(http.MethodGet, "/users/{userID}/inventory", "418")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveAudit(1, 0)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "pantry_audits_total 1"))
}

func TestNewTracingProvider_Disabled(t *testing.T) {
	tp, err := NewTracingProvider(context.Background(), TracingConfig{Enabled: false}, zaptest.NewLogger(t))

	require.NoError(t, err)
	assert.False(t, tp.Enabled())
	assert.NoError(t, tp.Shutdown(context.Background()))
	assert.Empty(t, TraceIDFromContext(context.Background()))
}
