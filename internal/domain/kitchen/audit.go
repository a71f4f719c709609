package kitchen

import "github.com/google/uuid"

// RecipeIngredient is one line of a recipe's ingredient list.
type RecipeIngredient struct {
	Name     string `json:"name" validate:"notblank"`
	Quantity string `json:"quantity,omitempty"`
	Unit     string `json:"unit,omitempty"`
}

// Warning is a non-fatal problem attached to a single item.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AuditItem is the reviewable state of one recipe ingredient. It is never
// persisted; the user may flip InStock before the audit is committed.
type AuditItem struct {
	Index           int        `json:"index"`
	Name            string     `json:"name"`
	CanonicalID     *uuid.UUID `json:"canonical_id"`
	NewIngredient   bool       `json:"new_ingredient"`
	Quantity        string     `json:"quantity,omitempty"`
	Unit            string     `json:"unit,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	InStock         bool       `json:"in_stock"`
	InventoryItemID *uuid.UUID `json:"inventory_item_id,omitempty"`
	LocationID      *uuid.UUID `json:"location_id,omitempty"`
	NeedsResolution bool       `json:"needs_resolution"`
	Warning         *Warning   `json:"warning,omitempty"`
}

// Matched reports whether the item resolved to a canonical ingredient.
func (a AuditItem) Matched() bool {
	return a.CanonicalID != nil && *a.CanonicalID != uuid.Nil
}
