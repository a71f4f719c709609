package testutils

import (
	"context"
	"time"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockIngredientRepository provides a mock IngredientRepository
type MockIngredientRepository struct {
	mock.Mock
}

func (m *MockIngredientRepository) FindByName(ctx context.Context, name string) (*kitchen.CanonicalIngredient, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kitchen.CanonicalIngredient), args.Error(1)
}

func (m *MockIngredientRepository) CreateIfAbsent(ctx context.Context, ingredient *kitchen.CanonicalIngredient) (*kitchen.CanonicalIngredient, bool, error) {
	args := m.Called(ctx, ingredient)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*kitchen.CanonicalIngredient), args.Bool(1), args.Error(2)
}

func (m *MockIngredientRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*kitchen.CanonicalIngredient, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*kitchen.CanonicalIngredient), args.Error(1)
}

// MockInventoryRepository provides a mock InventoryRepository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]kitchen.InventoryItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kitchen.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) Upsert(ctx context.Context, item *kitchen.InventoryItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockInventoryRepository) ConfirmInStock(ctx context.Context, userID, ingredientID uuid.UUID) error {
	return m.Called(ctx, userID, ingredientID).Error(0)
}

func (m *MockInventoryRepository) MarkOutOfStock(ctx context.Context, userID, ingredientID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, ingredientID)
	return args.Bool(0), args.Error(1)
}

// MockShoppingListRepository provides a mock ShoppingListRepository
type MockShoppingListRepository struct {
	mock.Mock
}

func (m *MockShoppingListRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]kitchen.ShoppingListItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kitchen.ShoppingListItem), args.Error(1)
}

func (m *MockShoppingListRepository) Upsert(ctx context.Context, item *kitchen.ShoppingListItem) (*kitchen.ShoppingListItem, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kitchen.ShoppingListItem), args.Error(1)
}

func (m *MockShoppingListRepository) SetChecked(ctx context.Context, userID, itemID uuid.UUID, checked bool) (*kitchen.ShoppingListItem, error) {
	args := m.Called(ctx, userID, itemID, checked)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kitchen.ShoppingListItem), args.Error(1)
}

func (m *MockShoppingListRepository) Delete(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, itemID)
	return args.Bool(0), args.Error(1)
}

// MockLocationClassifier provides a mock LocationClassifier
type MockLocationClassifier struct {
	mock.Mock
}

func (m *MockLocationClassifier) ClassifyItemsToLocations(ctx context.Context, itemNames, locationNames []string) (map[string]string, error) {
	args := m.Called(ctx, itemNames, locationNames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

// MockSubmissionGuard provides a mock SubmissionGuard
type MockSubmissionGuard struct {
	mock.Mock
}

func (m *MockSubmissionGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

// MockReconciliationMetrics records metric calls
type MockReconciliationMetrics struct {
	mock.Mock
}

func (m *MockReconciliationMetrics) ObserveAudit(items, unresolved int) {
	m.Called(items, unresolved)
}

func (m *MockReconciliationMetrics) ObserveCommit(status string, added, updated, failed int) {
	m.Called(status, added, updated, failed)
}

func (m *MockReconciliationMetrics) ObserveMigration(status string, moved, failed int) {
	m.Called(status, moved, failed)
}

func (m *MockReconciliationMetrics) ObserveClassification(outcome string, duration time.Duration) {
	m.Called(outcome, duration)
}
