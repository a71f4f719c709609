package testutils

import (
	"time"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// IngredientFactory generates recipe ingredients and shopping rows
type IngredientFactory struct {
	faker *gofakeit.Faker
}

// NewIngredientFactory creates a new factory with a seeded faker
func NewIngredientFactory(seed int64) *IngredientFactory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &IngredientFactory{faker: gofakeit.New(seed)}
}

var units = []string{"", "cup", "tbsp", "tsp", "g", "kg", "ml", "clove", "pinch"}

// Name returns a plausible grocery item name
func (f *IngredientFactory) Name() string {
	switch f.faker.Number(0, 3) {
	case 0:
		return f.faker.Fruit()
	case 1:
		return f.faker.Vegetable()
	case 2:
		return f.faker.Noun() + " " + f.faker.Vegetable()
	default:
		return f.faker.Fruit() + " juice"
	}
}

// RecipeIngredient returns one recipe line with a random amount
func (f *IngredientFactory) RecipeIngredient() kitchen.RecipeIngredient {
	return kitchen.RecipeIngredient{
		Name:     f.Name(),
		Quantity: f.faker.RandomString([]string{"1", "2", "1/2", "1 1/2", "3", "0.25"}),
		Unit:     f.faker.RandomString(units),
	}
}

// Recipe returns n ingredients with distinct names
func (f *IngredientFactory) Recipe(n int) []kitchen.RecipeIngredient {
	out := make([]kitchen.RecipeIngredient, 0, n)
	seen := make(map[string]bool, n)
	for len(out) < n {
		ing := f.RecipeIngredient()
		key := kitchen.NormalizeName(ing.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ing)
	}
	return out
}

// Location returns a location owned by userID
func (f *IngredientFactory) Location(userID uuid.UUID, name string, order int) kitchen.Location {
	return kitchen.Location{
		ID:         uuid.New(),
		UserID:     userID,
		Name:       name,
		OrderIndex: order,
		CreatedAt:  f.faker.DateRange(time.Now().Add(-30*24*time.Hour), time.Now()),
	}
}

// ShoppingListItem returns an unsaved shopping row for userID
func (f *IngredientFactory) ShoppingListItem(userID uuid.UUID) kitchen.ShoppingListItem {
	ing := f.RecipeIngredient()
	return kitchen.ShoppingListItem{
		ID:           uuid.New(),
		UserID:       userID,
		IngredientID: uuid.New(),
		Quantity:     ing.Quantity,
		Unit:         ing.Unit,
		Name:         ing.Name,
	}
}
