package reconcile

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Migrator moves checked-off shopping list items into inventory
type Migrator struct {
	tx        outbound.Transactor
	shopping  outbound.ShoppingListRepository
	inventory outbound.InventoryRepository
	locations outbound.LocationRepository
	logger    *zap.Logger
}

// NewMigrator creates a new checkout migrator
func NewMigrator(
	tx outbound.Transactor,
	shopping outbound.ShoppingListRepository,
	inventory outbound.InventoryRepository,
	locations outbound.LocationRepository,
	logger *zap.Logger,
) *Migrator {
	return &Migrator{
		tx:        tx,
		shopping:  shopping,
		inventory: inventory,
		locations: locations,
		logger:    logger.Named("checkout-migrator"),
	}
}

// Migrate upserts each checked-off item into inventory at its mapped location
// and removes it from the shopping list. Each item runs in its own transaction, so an
// item is either fully moved or left untouched.
func (m *Migrator) Migrate(
	ctx context.Context,
	userID uuid.UUID,
	items []kitchen.ShoppingListItem,
	mapping kitchen.LocationMapping,
) (*inbound.MigrationResult, error) {
	if userID == uuid.Nil {
		return nil, errors.NewValidationError(kitchen.ErrMissingUserID.Error())
	}
	if len(items) == 0 {
		return nil, errors.NewValidationError("at least one item is required")
	}

	locations, err := m.locations.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.NewPersistenceError("load locations", err).
			WithMetadata("user_id", userID.String())
	}
	owned := make(map[uuid.UUID]kitchen.Location, len(locations))
	for _, loc := range locations {
		owned[loc.ID] = loc
	}

	current, err := m.shopping.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.NewPersistenceError("load shopping list", err).
			WithMetadata("user_id", userID.String())
	}
	byID := make(map[uuid.UUID]kitchen.ShoppingListItem, len(current))
	byIngredient := make(map[uuid.UUID]kitchen.ShoppingListItem, len(current))
	for _, row := range current {
		byID[row.ID] = row
		byIngredient[row.IngredientID] = row
	}

	result := &inbound.MigrationResult{
		Moved:  []inbound.MovedItem{},
		Failed: []inbound.ItemFailure{},
	}

	for i, requested := range items {
		row, ok := byID[requested.ID]
		if !ok && requested.IngredientID != uuid.Nil {
			row, ok = byIngredient[requested.IngredientID]
		}

		name := kitchen.CleanName(requested.Name)
		if ok && row.Name != "" {
			name = row.Name
		}

		fail := func(stage string, code errors.ErrorCode, msg string) {
			failure := inbound.ItemFailure{Index: i, Name: name, Stage: stage, Code: string(code), Message: msg}
			if requested.ID != uuid.Nil {
				id := requested.ID
				failure.ItemID = &id
			}
			if ok {
				ingredientID := row.IngredientID
				failure.IngredientID = &ingredientID
			}
			result.Failed = append(result.Failed, failure)
		}

		if !ok {
			fail(stageLookup, errors.CodeNotFound, kitchen.ErrNotOnShoppingList.Error())
			continue
		}

		if !row.IsChecked {
			fail(stageLookup, errors.CodeValidationFailed, kitchen.ErrNotChecked.Error())
			continue
		}

		entry, found := mapping.Lookup(row.ID, name)
		if !found {
			fail(stageMapping, errors.CodeMappingMissing, kitchen.ErrMappingMissing.Error())
			continue
		}
		switch {
		case entry.LocationID == nil:
			// Unsorted stock is only for users with nowhere to put it.
			if entry.Source != kitchen.SourceUnassigned || len(locations) > 0 {
				fail(stageMapping, errors.CodeMappingMissing, kitchen.ErrLocationRequired.Error())
				continue
			}
		default:
			if _, mine := owned[*entry.LocationID]; !mine {
				fail(stageMapping, errors.CodeUnknownLocation, kitchen.ErrUnknownLocation.Error())
				continue
			}
		}

		moved, err := m.moveOne(ctx, userID, row, requested, entry.LocationID)
		if err != nil {
			code := errors.CodePersistence
			if stderrors.Is(err, kitchen.ErrNotOnShoppingList) {
				code = errors.CodeNotFound
			}
			m.logger.Error("Failed to move item to inventory",
				zap.String("user_id", userID.String()),
				zap.String("shopping_item_id", row.ID.String()),
				zap.String("item", name),
				zap.Error(err),
			)
			fail(stageMigrate, code, err.Error())
			continue
		}

		moved.Index = i
		moved.Name = name
		result.Moved = append(result.Moved, *moved)
	}

	result.Status = inbound.StatusOf(len(result.Moved), len(result.Failed))
	result.Success = len(result.Failed) == 0
	result.Message = migrationMessage(len(items), result)

	m.logger.Info("Migrated checkout to inventory",
		zap.String("user_id", userID.String()),
		zap.String("status", string(result.Status)),
		zap.Int("moved", len(result.Moved)),
		zap.Int("failed", len(result.Failed)),
	)

	return result, nil
}

func (m *Migrator) moveOne(
	ctx context.Context,
	userID uuid.UUID,
	row, requested kitchen.ShoppingListItem,
	locationID *uuid.UUID,
) (*inbound.MovedItem, error) {
	quantity := row.Quantity
	if requested.Quantity != "" {
		quantity = requested.Quantity
	}
	unit := row.Unit
	if requested.Unit != "" {
		unit = requested.Unit
	}

	inv := &kitchen.InventoryItem{
		UserID:       userID,
		IngredientID: row.IngredientID,
		LocationID:   locationID,
		InStock:      true,
		Unit:         unit,
	}
	if v, ok := kitchen.ParseQuantity(quantity); ok {
		inv.Quantity = &v
	}

	err := m.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := m.inventory.Upsert(ctx, inv); err != nil {
			return fmt.Errorf("upsert inventory: %w", err)
		}
		deleted, err := m.shopping.Delete(ctx, userID, row.ID)
		if err != nil {
			return fmt.Errorf("remove from shopping list: %w", err)
		}
		if !deleted {
			return kitchen.ErrNotOnShoppingList
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &inbound.MovedItem{
		ShoppingItemID:  row.ID,
		InventoryItemID: inv.ID,
		LocationID:      locationID,
	}, nil
}

func migrationMessage(total int, result *inbound.MigrationResult) string {
	switch {
	case len(result.Failed) == 0:
		return fmt.Sprintf("Moved %d %s into your inventory", len(result.Moved), plural(len(result.Moved), "item", "items"))
	case len(result.Moved) == 0:
		return fmt.Sprintf("No items moved; %d failed: %s", len(result.Failed), failedNames(result.Failed))
	default:
		return fmt.Sprintf("%d of %d items moved; %d failed: %s",
			len(result.Moved), total, len(result.Failed), failedNames(result.Failed))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
