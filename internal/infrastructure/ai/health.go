package ai

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Pinger is a classifier backend that can report reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthStatus reports the classifier backend state
type HealthStatus struct {
	Provider  string    `json:"provider"`
	Healthy   bool      `json:"healthy"`
	Detail    string    `json:"detail,omitempty"`
	LastCheck time.Time `json:"last_check"`
}

// HealthChecker checks the configured classifier backend
type HealthChecker struct {
	provider string
	pinger   Pinger
	logger   *zap.Logger
}

// NewHealthChecker creates a new classifier health checker. pinger may be nil
// for providers without a remote backend.
func NewHealthChecker(provider string, pinger Pinger, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		provider: provider,
		pinger:   pinger,
		logger:   logger.Named("classifier-health"),
	}
}

// CheckHealth pings the backend. An unhealthy classifier only degrades
// checkout to default locations, so callers should not fail readiness on it.
func (h *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	status := HealthStatus{Provider: h.provider, Healthy: true, LastCheck: time.Now()}
	if h.pinger == nil {
		status.Detail = "local"
		return status
	}

	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.Warn("Classifier backend unreachable", zap.String("provider", h.provider), zap.Error(err))
		status.Healthy = false
		status.Detail = err.Error()
	}
	return status
}
