// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
	"github.com/google/uuid"
)

// ErrCacheMiss is returned by CacheRepository.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// IngredientRepository persists canonical ingredients shared by all users
type IngredientRepository interface {
	// FindByName looks up an ingredient by normalised name; nil when absent.
	FindByName(ctx context.Context, name string) (*kitchen.CanonicalIngredient, error)
	// CreateIfAbsent inserts the ingredient unless one with the same name key
	// exists, and returns the stored row. created is false when another writer
	// got there first.
	CreateIfAbsent(ctx context.Context, ingredient *kitchen.CanonicalIngredient) (stored *kitchen.CanonicalIngredient, created bool, err error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*kitchen.CanonicalIngredient, error)
}

// InventoryRepository persists per-user stock records keyed by (user, ingredient)
type InventoryRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]kitchen.InventoryItem, error)
	// Upsert inserts or replaces location, stock flag, quantity and unit.
	Upsert(ctx context.Context, item *kitchen.InventoryItem) error
	// ConfirmInStock sets in_stock=true, creating an unsorted row if needed.
	// Location and quantity of an existing row are left alone.
	ConfirmInStock(ctx context.Context, userID, ingredientID uuid.UUID) error
	// MarkOutOfStock sets in_stock=false on an existing row only.
	MarkOutOfStock(ctx context.Context, userID, ingredientID uuid.UUID) (bool, error)
}

// ShoppingListRepository persists active shopping list rows keyed by (user, ingredient)
type ShoppingListRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]kitchen.ShoppingListItem, error)
	// Upsert inserts with is_checked=false or updates quantity, unit, notes and
	// recipe of the existing row in place.
	Upsert(ctx context.Context, item *kitchen.ShoppingListItem) (*kitchen.ShoppingListItem, error)
	SetChecked(ctx context.Context, userID, itemID uuid.UUID, checked bool) (*kitchen.ShoppingListItem, error)
	// Delete reports false when no row matched.
	Delete(ctx context.Context, userID, itemID uuid.UUID) (bool, error)
}

// LocationRepository reads and creates a user's storage locations
type LocationRepository interface {
	// ListByUser returns locations ordered by order index then creation time.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]kitchen.Location, error)
	Create(ctx context.Context, location *kitchen.Location) error
}

// Transactor runs fn in a storage transaction. Repositories called with the
// context passed to fn take part in that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// SubmissionGuard rejects a second submission for the same key while the first
// is in flight. Acquire returns kitchen.ErrSubmissionInFlight when the key is
// held. The ttl bounds how long a crashed holder can block the key.
type SubmissionGuard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// LocationClassifier assigns storage location names to item names. The answer
// may be partial or contain names that are not in locationNames.
type LocationClassifier interface {
	ClassifyItemsToLocations(ctx context.Context, itemNames, locationNames []string) (map[string]string, error)
}

// ReconciliationMetrics records outcomes of the reconciliation use cases
type ReconciliationMetrics interface {
	ObserveAudit(items, unresolved int)
	ObserveCommit(status string, added, updated, failed int)
	ObserveMigration(status string, moved, failed int)
	ObserveClassification(outcome string, duration time.Duration)
}

// RateDecision is the outcome of one RateLimiter.Allow call
type RateDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// RateLimiter counts requests per key over a window
type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateDecision, error)
}
