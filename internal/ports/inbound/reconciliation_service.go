// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
	"github.com/google/uuid"
)

// ReconciliationService moves ingredients between recipes, the shopping list
// and the pantry inventory.
type ReconciliationService interface {
	// Recipe to shopping list
	AuditRecipe(ctx context.Context, cmd AuditRecipeCommand) ([]kitchen.AuditItem, error)
	CommitAudit(ctx context.Context, cmd CommitAuditCommand) (*CommitResult, error)

	// Shopping list to inventory
	CategorizeCheckout(ctx context.Context, checkedItems []string, locations []kitchen.Location) (*kitchen.LocationMapping, error)
	StartCheckout(ctx context.Context, userID uuid.UUID) (*CheckoutProposal, error)
	MigrateToInventory(ctx context.Context, cmd MigrateCommand) (*MigrationResult, error)

	// Queries and toggles
	GetShoppingList(ctx context.Context, userID uuid.UUID) ([]kitchen.ShoppingListItem, error)
	ToggleShoppingItem(ctx context.Context, userID, itemID uuid.UUID, checked bool) (*kitchen.ShoppingListItem, error)
	GetInventory(ctx context.Context, userID uuid.UUID) ([]kitchen.InventoryItem, error)
	GetLocations(ctx context.Context, userID uuid.UUID) ([]kitchen.Location, error)
}

// Command objects for operations

// AuditRecipeCommand asks for the stock state of a recipe's ingredients
type AuditRecipeCommand struct {
	UserID      uuid.UUID                  `json:"user_id" validate:"required_uuid"`
	Ingredients []kitchen.RecipeIngredient `json:"ingredients" validate:"required,min=1,dive"`
}

// CommitAuditCommand persists a reviewed audit
type CommitAuditCommand struct {
	UserID   uuid.UUID           `json:"user_id" validate:"required_uuid"`
	Items    []kitchen.AuditItem `json:"items" validate:"dive"`
	RecipeID *uuid.UUID          `json:"recipe_id,omitempty"`
	// SyncInventory confirms in-stock items and flags existing out-of-stock
	// inventory rows.
	SyncInventory bool `json:"sync_inventory"`
}

// MigrateCommand moves checked shopping list items into inventory
type MigrateCommand struct {
	UserID  uuid.UUID                  `json:"user_id" validate:"required_uuid"`
	Items   []kitchen.ShoppingListItem `json:"items" validate:"min=1"`
	Mapping kitchen.LocationMapping    `json:"mapping"`
}

// Result objects

// OutcomeStatus summarises a batch operation
type OutcomeStatus string

const (
	StatusSucceeded OutcomeStatus = "succeeded"
	StatusPartial   OutcomeStatus = "partial"
	StatusFailed    OutcomeStatus = "failed"
)

// StatusOf derives the batch status from success and failure counts
func StatusOf(succeeded, failed int) OutcomeStatus {
	switch {
	case failed == 0:
		return StatusSucceeded
	case succeeded == 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}

// ItemFailure identifies one item that failed inside a batch so it can be
// retried on its own.
type ItemFailure struct {
	Index        int        `json:"index"`
	Name         string     `json:"name"`
	ItemID       *uuid.UUID `json:"item_id,omitempty"`
	IngredientID *uuid.UUID `json:"ingredient_id,omitempty"`
	Stage        string     `json:"stage"`
	Code         string     `json:"code"`
	Message      string     `json:"message"`
}

// CommitAction describes what a commit did with one audit item
type CommitAction string

const (
	ActionAdded   CommitAction = "added"
	ActionUpdated CommitAction = "updated"
	ActionMerged  CommitAction = "merged"
)

// CommittedItem is an audit item written to the shopping list
type CommittedItem struct {
	Index          int          `json:"index"`
	Name           string       `json:"name"`
	IngredientID   uuid.UUID    `json:"ingredient_id"`
	ShoppingItemID uuid.UUID    `json:"shopping_item_id"`
	Action         CommitAction `json:"action"`
}

// CommitResult reports a shopping list commit
type CommitResult struct {
	Status    OutcomeStatus       `json:"status"`
	Added     int                 `json:"added"`
	Updated   int                 `json:"updated"`
	Committed []CommittedItem     `json:"committed"`
	Skipped   []kitchen.AuditItem `json:"skipped"`
	Failed    []ItemFailure       `json:"failed"`
	Message   string              `json:"message"`
}

// MovedItem is a shopping list item now held in inventory
type MovedItem struct {
	Index           int        `json:"index"`
	Name            string     `json:"name"`
	ShoppingItemID  uuid.UUID  `json:"shopping_item_id"`
	InventoryItemID uuid.UUID  `json:"inventory_item_id"`
	LocationID      *uuid.UUID `json:"location_id"`
}

// MigrationResult reports a checkout migration
type MigrationResult struct {
	Status  OutcomeStatus `json:"status"`
	Success bool          `json:"success"`
	Moved   []MovedItem   `json:"moved"`
	Failed  []ItemFailure `json:"failed"`
	Message string        `json:"message"`
}

// CheckoutProposal is the editable result of starting a checkout
type CheckoutProposal struct {
	Items     []kitchen.ShoppingListItem `json:"items"`
	Locations []kitchen.Location         `json:"locations"`
	Mapping   kitchen.LocationMapping    `json:"mapping"`
}
