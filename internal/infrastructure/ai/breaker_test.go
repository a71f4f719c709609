package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alchemorsel/pantry/pkg/healthcheck"
	"github.com/alchemorsel/pantry/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"
)

func TestBreakerClassifier_OpensAfterFailures(t *testing.T) {
	// Arrange
	backend := new(testutils.MockLocationClassifier)
	backend.On("ClassifyItemsToLocations", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("503 from upstream")).Twice()
	breaker := healthcheck.NewCircuitBreaker("classifier", healthcheck.CircuitBreakerConfig{
		FailureThreshold: 2,
		Timeout:          time.Hour,
	})
	classifier := NewBreakerClassifier(backend, breaker, zaptest.NewLogger(t))
	items, locs := []string{"milk"}, []string{"Fridge"}

	// Act
	_, err1 := classifier.ClassifyItemsToLocations(context.Background(), items, locs)
	_, err2 := classifier.ClassifyItemsToLocations(context.Background(), items, locs)
	_, err3 := classifier.ClassifyItemsToLocations(context.Background(), items, locs)

	// Assert
	assert.Error(t, err1)
	assert.Error(t, err2)
	assert.ErrorIs(t, err3, healthcheck.ErrCircuitOpen)
	assert.Equal(t, healthcheck.StateOpen, breaker.GetState())
	backend.AssertNumberOfCalls(t, "ClassifyItemsToLocations", 2)
}

func TestBreakerClassifier_PassesAnswers(t *testing.T) {
	backend := new(testutils.MockLocationClassifier)
	backend.On("ClassifyItemsToLocations", mock.Anything, []string{"milk"}, []string{"Fridge"}).
		Return(map[string]string{"milk": "Fridge"}, nil)
	classifier := NewBreakerClassifier(backend, healthcheck.NewCircuitBreaker("classifier", healthcheck.DefaultCircuitBreakerConfig()), zaptest.NewLogger(t))

	answer, err := classifier.ClassifyItemsToLocations(context.Background(), []string{"milk"}, []string{"Fridge"})

	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"milk": "Fridge"}, answer)
}
