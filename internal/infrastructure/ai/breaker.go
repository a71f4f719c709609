package ai

import (
	"context"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/healthcheck"
	"go.uber.org/zap"
)

// BreakerClassifier stops calling a failing classifier backend for a while so
// checkouts fall back immediately instead of waiting out the timeout
type BreakerClassifier struct {
	next    outbound.LocationClassifier
	breaker *healthcheck.CircuitBreaker
	logger  *zap.Logger
}

// NewBreakerClassifier wraps next with the circuit breaker
func NewBreakerClassifier(next outbound.LocationClassifier, breaker *healthcheck.CircuitBreaker, logger *zap.Logger) *BreakerClassifier {
	return &BreakerClassifier{
		next:    next,
		breaker: breaker,
		logger:  logger.Named("classifier-breaker"),
	}
}

// ClassifyItemsToLocations calls through unless the circuit is open
func (b *BreakerClassifier) ClassifyItemsToLocations(ctx context.Context, itemNames, locationNames []string) (map[string]string, error) {
	var answer map[string]string
	err := b.breaker.Execute(func() error {
		var err error
		answer, err = b.next.ClassifyItemsToLocations(ctx, itemNames, locationNames)
		return err
	})
	if err != nil {
		b.logger.Debug("Classifier call failed", zap.Error(err))
		return nil, err
	}
	return answer, nil
}
