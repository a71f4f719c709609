package gorm

import (
	"context"
	"time"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var inventoryIdentity = []clause.Column{{Name: "user_id"}, {Name: "ingredient_id"}}

// InventoryRepository implements the inventory repository interface using GORM
type InventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *gorm.DB) outbound.InventoryRepository {
	return &InventoryRepository{db: db}
}

// ListByUser returns all inventory rows of a user with ingredient names
func (r *InventoryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]kitchen.InventoryItem, error) {
	var models []InventoryItemModel
	err := conn(ctx, r.db).
		Preload("Ingredient").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	items := make([]kitchen.InventoryItem, 0, len(models))
	for i := range models {
		items = append(items, ModelToInventoryItem(&models[i]))
	}
	return items, nil
}

// Upsert inserts the row or, on (user_id, ingredient_id) conflict, updates the
// stock flag and location. Quantity and unit are only overwritten when set.
func (r *InventoryRepository) Upsert(ctx context.Context, item *kitchen.InventoryItem) error {
	model := InventoryItemToModel(item)

	columns := []string{"in_stock", "location_id", "updated_at"}
	if item.Quantity != nil {
		columns = append(columns, "quantity")
	}
	if item.Unit != "" {
		columns = append(columns, "unit")
	}

	db := conn(ctx, r.db)
	err := db.Clauses(clause.OnConflict{
		Columns:   inventoryIdentity,
		DoUpdates: clause.AssignmentColumns(columns),
	}).Omit(clause.Associations).Create(model).Error
	if err != nil {
		return err
	}

	var stored InventoryItemModel
	if err := db.Where("user_id = ? AND ingredient_id = ?", item.UserID, item.IngredientID).First(&stored).Error; err != nil {
		return err
	}
	item.ID = stored.ID
	item.CreatedAt = stored.CreatedAt
	item.UpdatedAt = stored.UpdatedAt
	return nil
}

// ConfirmInStock upserts an in-stock row touching nothing but in_stock
func (r *InventoryRepository) ConfirmInStock(ctx context.Context, userID, ingredientID uuid.UUID) error {
	model := &InventoryItemModel{
		UserID:       userID,
		IngredientID: ingredientID,
		InStock:      true,
	}

	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   inventoryIdentity,
		DoUpdates: clause.AssignmentColumns([]string{"in_stock", "updated_at"}),
	}).Omit(clause.Associations).Create(model).Error
}

// MarkOutOfStock flags an existing row as depleted; it never creates one
func (r *InventoryRepository) MarkOutOfStock(ctx context.Context, userID, ingredientID uuid.UUID) (bool, error) {
	result := conn(ctx, r.db).
		Model(&InventoryItemModel{}).
		Where("user_id = ? AND ingredient_id = ?", userID, ingredientID).
		Updates(map[string]interface{}{
			"in_stock":   false,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
