package kitchen

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem is one user's stock record for one canonical ingredient.
// There is at most one per (UserID, IngredientID); depletion flips InStock
// instead of removing the row.
type InventoryItem struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	IngredientID uuid.UUID  `json:"ingredient_id"`
	LocationID   *uuid.UUID `json:"location_id"`
	InStock      bool       `json:"in_stock"`
	Quantity     *float64   `json:"quantity"`
	Unit         string     `json:"unit,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Populated on reads.
	IngredientName string `json:"ingredient_name"`
}

// Unsorted reports whether the item has no storage location.
func (i InventoryItem) Unsorted() bool {
	return i.LocationID == nil
}

// ShoppingListItem is a pending purchase. There is at most one active row per
// (UserID, IngredientID).
type ShoppingListItem struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	IngredientID uuid.UUID  `json:"ingredient_id"`
	IsChecked    bool       `json:"is_checked"`
	Quantity     string     `json:"quantity,omitempty"`
	Unit         string     `json:"unit,omitempty"`
	RecipeID     *uuid.UUID `json:"recipe_id,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Populated on reads.
	Name string `json:"name"`
}
