package kitchen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Garlic ", "garlic"},
		{"GARLIC", "garlic"},
		{"Green   Onions", "green onion"},
		{"onions", "onion"},
		{"Tomatoes", "tomato"},
		{"berries", "berry"},
		{"Cookies", "cookie"},
		{"pies", "pie"},
		{"bay leaves", "bay leaf"},
		{"peaches", "peach"},
		{"swiss", "swiss"},
		{"hummus", "hummus"},
		{"molasses", "molasses"},
		{"eggs", "egg"},
		{"gas", "gas"},
		{"Angostura Bitters", "angostura bitters"},
		{"mixed greens", "mixed greens"},
		{"   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeName(tc.in))
		})
	}
}

func TestNormalizeName_KeepsQualifiedNamesDistinct(t *testing.T) {
	assert.NotEqual(t, NormalizeName("onion"), NormalizeName("green onion"))
	assert.NotEqual(t, NormalizeName("pepper"), NormalizeName("bell pepper"))
	assert.Equal(t, NormalizeName("Green Onion"), NormalizeName("green onions"))
	assert.NotEqual(t, NormalizeName("bitter"), NormalizeName("bitters"))
	assert.NotEqual(t, NormalizeName("green"), NormalizeName("greens"))
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "Extra Virgin Olive Oil", CleanName("  Extra   Virgin\tOlive Oil "))
	assert.Equal(t, "", CleanName(" \n "))
}

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"2", 2, true},
		{"1.5", 1.5, true},
		{"1/2", 0.5, true},
		{"1 1/2", 1.5, true},
		{"½", 0.5, true},
		{"1½", 1.5, true},
		{"", 0, false},
		{"a pinch", 0, false},
		{"2-3", 0, false},
		{"1/0", 0, false},
		{"-1", 0, false},
		{"NaN", 0, false},
		{"1/2 1", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseQuantity(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.want, got, 1e-9)
			}
		})
	}
}

func TestCategorize_FromNormalizeSuite(t *testing.T) {
	cases := map[string]string{
		"Milk":              CategoryDairy,
		"whole milk":        CategoryDairy,
		"coconut milk":      CategoryPantry,
		"frozen peas":       CategoryFrozen,
		"vanilla ice cream": CategoryFrozen,
		"chicken thighs":    CategoryMeat,
		"chicken broth":     CategoryPantry,
		"saffron":           CategorySpices,
		"green onions":      CategoryProduce,
		"garlic":            CategoryProduce,
		"sourdough bread":   CategoryBakery,
		"dish soap":         CategoryOther,
		"":                  CategoryOther,
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Categorize(in))
		})
	}
}

func TestPreferredLocations_FromNormalizeSuite(t *testing.T) {
	assert.Equal(t, []string{"Freezer"}, PreferredLocations(CategoryFrozen))
	assert.Equal(t, "Fridge", PreferredLocations(CategoryDairy)[0])
	assert.Equal(t, "Pantry", PreferredLocations(CategoryOther)[0])
}
