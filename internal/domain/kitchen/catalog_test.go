package kitchen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Tomatoes", CategoryProduce},
		{"Whole Milk", CategoryDairy},
		{"coconut milk", CategoryPantry},
		{"frozen peas", CategoryFrozen},
		{"chicken broth", CategoryPantry},
		{"chicken thighs", CategoryMeat},
		{"green onions", CategoryProduce},
		{"Saffron", CategorySpices},
		{"unobtainium", CategoryOther},
		{"   ", CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.name))
		})
	}
}

func TestPreferredLocations(t *testing.T) {
	assert.Equal(t, []string{"Freezer"}, PreferredLocations(CategoryFrozen))
	assert.Equal(t, "Fridge", PreferredLocations(CategoryDairy)[0])
	assert.Equal(t, "Pantry", PreferredLocations("Snacks")[0])
}

func TestNewCanonicalIngredient(t *testing.T) {
	t.Run("InfersCategory", func(t *testing.T) {
		ing, err := NewCanonicalIngredient("  Whole   Milk ", "")

		require.NoError(t, err)
		assert.Equal(t, "Whole Milk", ing.Name)
		assert.Equal(t, "whole milk", ing.NameKey)
		assert.Equal(t, CategoryDairy, ing.Category)
		assert.Equal(t, DefaultUnitPlaceholder, ing.DefaultUnit)
	})

	t.Run("HintWins", func(t *testing.T) {
		ing, err := NewCanonicalIngredient("milk", " Snacks ")

		require.NoError(t, err)
		assert.Equal(t, "Snacks", ing.Category)
	})

	t.Run("BlankName", func(t *testing.T) {
		_, err := NewCanonicalIngredient(" \t", "")

		assert.ErrorIs(t, err, ErrBlankIngredientName)
	})
}
