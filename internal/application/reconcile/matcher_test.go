package reconcile

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
	"github.com/alchemorsel/pantry/pkg/errors"
	"github.com/alchemorsel/pantry/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestMatcher_Resolve(t *testing.T) {
	ctx := context.Background()
	repos := testutils.SetupSQLiteRepositories(t)
	matcher := NewMatcher(repos.Ingredients, zaptest.NewLogger(t))

	t.Run("CreatesUnknownIngredient", func(t *testing.T) {
		result, err := matcher.Resolve(ctx, "  Saffron ", "")

		require.NoError(t, err)
		assert.True(t, result.Created)
		assert.Equal(t, "Saffron", result.Ingredient.Name)
		assert.Equal(t, "saffron", result.Ingredient.NameKey)
	})

	t.Run("ReusesExistingIngredientAcrossSpellings", func(t *testing.T) {
		first, err := matcher.Resolve(ctx, "Tomatoes", "")
		require.NoError(t, err)

		second, err := matcher.Resolve(ctx, "tomato", "")
		require.NoError(t, err)

		assert.False(t, second.Created)
		assert.Equal(t, first.Ingredient.ID, second.Ingredient.ID)
	})

	t.Run("RejectsBlankName", func(t *testing.T) {
		_, err := matcher.Resolve(ctx, "   ", "")

		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeValidationFailed))
		assert.ErrorIs(t, err, kitchen.ErrBlankIngredientName)
	})

	t.Run("ConcurrentCallersConverge", func(t *testing.T) {
		const callers = 8
		ids := make(chan string, callers)
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				result, err := matcher.Resolve(ctx, "Star Anise", "")
				if assert.NoError(t, err) {
					ids <- result.Ingredient.ID.String()
				}
			}()
		}
		wg.Wait()
		close(ids)

		distinct := map[string]bool{}
		for id := range ids {
			distinct[id] = true
		}
		assert.Len(t, distinct, 1)
	})
}

func TestMatcher_Resolve_StorageFailure(t *testing.T) {
	// Arrange
	repo := new(testutils.MockIngredientRepository)
	repo.On("FindByName", mock.Anything, "cumin").Return(nil, stderrors.New("database is locked"))
	matcher := NewMatcher(repo, zaptest.NewLogger(t))

	// Act
	_, err := matcher.Resolve(context.Background(), "cumin", "")

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodePersistence))
	repo.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
}
