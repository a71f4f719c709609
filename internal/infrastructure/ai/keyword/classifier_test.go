package keyword

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifier_ClassifyItemsToLocations(t *testing.T) {
	classifier := NewClassifier()

	answer, err := classifier.ClassifyItemsToLocations(context.Background(),
		[]string{"milk", "frozen peas", "rice", "chicken breast"},
		[]string{"pantry", "Fridge", "Freezer"})

	require.NoError(t, err)
	assert.Equal(t, "Fridge", answer["milk"])
	assert.Equal(t, "Freezer", answer["frozen peas"])
	assert.Equal(t, "pantry", answer["rice"])
	assert.Equal(t, "Fridge", answer["chicken breast"])
}

func TestClassifier_LeavesOutItemsWithoutPreferredLocation(t *testing.T) {
	answer, err := NewClassifier().ClassifyItemsToLocations(context.Background(),
		[]string{"ice cream"}, []string{"Pantry"})

	require.NoError(t, err)
	assert.NotContains(t, answer, "ice cream")
}

func TestClassifier_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClassifier().ClassifyItemsToLocations(ctx, []string{"milk"}, []string{"Fridge"})
	assert.ErrorIs(t, err, context.Canceled)
}
