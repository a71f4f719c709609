package gorm

import (
	"context"
	"errors"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShoppingListRepository implements the shopping list repository interface using GORM
type ShoppingListRepository struct {
	db *gorm.DB
}

// NewShoppingListRepository creates a new shopping list repository
func NewShoppingListRepository(db *gorm.DB) outbound.ShoppingListRepository {
	return &ShoppingListRepository{db: db}
}

// ListByUser returns the active shopping list of a user, oldest first
func (r *ShoppingListRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]kitchen.ShoppingListItem, error) {
	var models []ShoppingListItemModel
	err := conn(ctx, r.db).
		Preload("Ingredient").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	items := make([]kitchen.ShoppingListItem, 0, len(models))
	for i := range models {
		items = append(items, ModelToShoppingListItem(&models[i]))
	}
	return items, nil
}

// Upsert inserts an unchecked row or updates the existing (user, ingredient)
// row in place. The checked flag of an existing row is preserved.
func (r *ShoppingListRepository) Upsert(ctx context.Context, item *kitchen.ShoppingListItem) (*kitchen.ShoppingListItem, error) {
	model := ShoppingListItemToModel(item)
	model.IsChecked = false

	db := conn(ctx, r.db)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "ingredient_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "unit", "notes", "recipe_id", "updated_at"}),
	}).Omit(clause.Associations).Create(model).Error
	if err != nil {
		return nil, err
	}

	return r.findOne(db, "user_id = ? AND ingredient_id = ?", item.UserID, item.IngredientID)
}

// SetChecked toggles the picked-up flag of one of the user's rows
func (r *ShoppingListRepository) SetChecked(ctx context.Context, userID, itemID uuid.UUID, checked bool) (*kitchen.ShoppingListItem, error) {
	db := conn(ctx, r.db)
	result := db.Model(&ShoppingListItemModel{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("is_checked", checked)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, kitchen.ErrNotOnShoppingList
	}

	return r.findOne(db, "id = ? AND user_id = ?", itemID, userID)
}

// Delete removes one of the user's rows
func (r *ShoppingListRepository) Delete(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	result := conn(ctx, r.db).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&ShoppingListItemModel{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *ShoppingListRepository) findOne(db *gorm.DB, query string, args ...interface{}) (*kitchen.ShoppingListItem, error) {
	var model ShoppingListItemModel
	err := db.Preload("Ingredient").Where(query, args...).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, kitchen.ErrNotOnShoppingList
		}
		return nil, err
	}

	item := ModelToShoppingListItem(&model)
	return &item, nil
}
