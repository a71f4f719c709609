package ai

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/pantry/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCachedClassifier(t *testing.T) {
	ctx := context.Background()
	items, locations := []string{"milk", "rice"}, []string{"Fridge", "Pantry"}

	t.Run("SecondCallIsServedFromCache", func(t *testing.T) {
		// Arrange
		cache := memory.NewCacheRepository(time.Minute)
		defer cache.Close()
		next := new(testutils.MockLocationClassifier)
		next.On("ClassifyItemsToLocations", mock.Anything, items, locations).
			Return(map[string]string{"milk": "Fridge", "rice": "Pantry"}, nil).Once()
		classifier := NewCachedClassifier(next, cache, time.Hour, zaptest.NewLogger(t))

		// Act
		first, err := classifier.ClassifyItemsToLocations(ctx, items, locations)
		require.NoError(t, err)
		second, err := classifier.ClassifyItemsToLocations(ctx, items, locations)
		require.NoError(t, err)

		// Assert
		assert.Equal(t, first, second)
		next.AssertNumberOfCalls(t, "ClassifyItemsToLocations", 1)
	})

	t.Run("ErrorsAreNotCached", func(t *testing.T) {
		cache := memory.NewCacheRepository(time.Minute)
		defer cache.Close()
		next := new(testutils.MockLocationClassifier)
		next.On("ClassifyItemsToLocations", mock.Anything, items, locations).
			Return(nil, stderrors.New("502 bad gateway"))
		classifier := NewCachedClassifier(next, cache, time.Hour, zaptest.NewLogger(t))

		_, err := classifier.ClassifyItemsToLocations(ctx, items, locations)
		assert.Error(t, err)
		_, err = classifier.ClassifyItemsToLocations(ctx, items, locations)
		assert.Error(t, err)

		next.AssertNumberOfCalls(t, "ClassifyItemsToLocations", 2)
	})
}
