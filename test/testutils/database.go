// Package testutils provides common testing utilities and infrastructure setup
package testutils

import (
	"context"
	"testing"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
	gormrepo "github.com/alchemorsel/pantry/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Repositories bundles the gorm-backed outbound ports over one database
type Repositories struct {
	DB          *gorm.DB
	Ingredients outbound.IngredientRepository
	Inventory   outbound.InventoryRepository
	Shopping    outbound.ShoppingListRepository
	Locations   outbound.LocationRepository
	Transactor  outbound.Transactor
}

// SetupSQLiteDatabase opens a migrated in-memory SQLite database that is
// closed when the test ends
func SetupSQLiteDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := sqlite.SetupDatabase(":memory:", logger.Silent)
	require.NoError(t, err, "Failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// NewRepositories wires every repository to db
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:          db,
		Ingredients: gormrepo.NewIngredientRepository(db),
		Inventory:   gormrepo.NewInventoryRepository(db),
		Shopping:    gormrepo.NewShoppingListRepository(db),
		Locations:   gormrepo.NewLocationRepository(db),
		Transactor:  gormrepo.NewTransactor(db),
	}
}

// SetupSQLiteRepositories is SetupSQLiteDatabase plus NewRepositories
func SetupSQLiteRepositories(t *testing.T) *Repositories {
	t.Helper()
	return NewRepositories(SetupSQLiteDatabase(t))
}

// DatabaseHelper provides helper methods for database testing
type DatabaseHelper struct {
	t     *testing.T
	repos *Repositories
}

// NewDatabaseHelper creates a new database helper
func NewDatabaseHelper(t *testing.T, repos *Repositories) *DatabaseHelper {
	return &DatabaseHelper{t: t, repos: repos}
}

// Ingredient returns the canonical ingredient for name, creating it if needed
func (h *DatabaseHelper) Ingredient(name string) *kitchen.CanonicalIngredient {
	h.t.Helper()
	candidate, err := kitchen.NewCanonicalIngredient(name, "")
	require.NoError(h.t, err)

	stored, _, err := h.repos.Ingredients.CreateIfAbsent(context.Background(), candidate)
	require.NoError(h.t, err)
	return stored
}

// Locations creates the named locations for a user in the given order
func (h *DatabaseHelper) Locations(userID uuid.UUID, names ...string) []kitchen.Location {
	h.t.Helper()
	out := make([]kitchen.Location, 0, len(names))
	for i, name := range names {
		loc, err := kitchen.NewLocation(userID, name, i)
		require.NoError(h.t, err)
		require.NoError(h.t, h.repos.Locations.Create(context.Background(), loc))
		out = append(out, *loc)
	}
	return out
}

// Stock records an inventory row for a user
func (h *DatabaseHelper) Stock(userID uuid.UUID, name string, inStock bool, locationID *uuid.UUID) kitchen.InventoryItem {
	h.t.Helper()
	ing := h.Ingredient(name)
	item := &kitchen.InventoryItem{
		UserID:       userID,
		IngredientID: ing.ID,
		LocationID:   locationID,
		InStock:      inStock,
	}
	require.NoError(h.t, h.repos.Inventory.Upsert(context.Background(), item))
	item.IngredientName = ing.Name
	return *item
}

// ListItem puts an item on a user's shopping list, optionally checked
func (h *DatabaseHelper) ListItem(userID uuid.UUID, name, quantity string, checked bool) kitchen.ShoppingListItem {
	h.t.Helper()
	ing := h.Ingredient(name)
	row, err := h.repos.Shopping.Upsert(context.Background(), &kitchen.ShoppingListItem{
		UserID:       userID,
		IngredientID: ing.ID,
		Quantity:     quantity,
	})
	require.NoError(h.t, err)

	if checked {
		row, err = h.repos.Shopping.SetChecked(context.Background(), userID, row.ID, true)
		require.NoError(h.t, err)
	}
	return *row
}

// InventoryByName indexes a user's inventory by ingredient name
func (h *DatabaseHelper) InventoryByName(userID uuid.UUID) map[string]kitchen.InventoryItem {
	h.t.Helper()
	items, err := h.repos.Inventory.ListByUser(context.Background(), userID)
	require.NoError(h.t, err)

	out := make(map[string]kitchen.InventoryItem, len(items))
	for _, item := range items {
		out[item.IngredientName] = item
	}
	return out
}

// ShoppingByName indexes a user's shopping list by ingredient name
func (h *DatabaseHelper) ShoppingByName(userID uuid.UUID) map[string]kitchen.ShoppingListItem {
	h.t.Helper()
	items, err := h.repos.Shopping.ListByUser(context.Background(), userID)
	require.NoError(h.t, err)

	out := make(map[string]kitchen.ShoppingListItem, len(items))
	for _, item := range items {
		out[item.Name] = item
	}
	return out
}
