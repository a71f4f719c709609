// Package gorm provides GORM model definitions and repositories for the pantry
package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IngredientModel represents the GORM model for canonical ingredients
type IngredientModel struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	Name        string    `gorm:"type:varchar(255);not null"`
	NameKey     string    `gorm:"type:varchar(255);uniqueIndex:idx_ingredients_name_key;not null"`
	Category    string    `gorm:"type:varchar(100);not null;default:'Other'"`
	DefaultUnit string    `gorm:"type:varchar(50)"`
	CreatedAt   time.Time
}

// InventoryItemModel represents the GORM model for inventory rows
type InventoryItemModel struct {
	ID           uuid.UUID  `gorm:"type:char(36);primaryKey"`
	UserID       uuid.UUID  `gorm:"type:char(36);uniqueIndex:idx_inventory_user_ingredient;not null"`
	IngredientID uuid.UUID  `gorm:"type:char(36);uniqueIndex:idx_inventory_user_ingredient;not null"`
	LocationID   *uuid.UUID `gorm:"type:char(36);index"`
	InStock      bool       `gorm:"not null;default:false"`
	Quantity     *float64
	Unit         string `gorm:"type:varchar(50)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Ingredient IngredientModel `gorm:"foreignKey:IngredientID"`
}

// ShoppingListItemModel represents the GORM model for active shopping list rows
type ShoppingListItemModel struct {
	ID           uuid.UUID  `gorm:"type:char(36);primaryKey"`
	UserID       uuid.UUID  `gorm:"type:char(36);uniqueIndex:idx_shopping_user_ingredient;not null"`
	IngredientID uuid.UUID  `gorm:"type:char(36);uniqueIndex:idx_shopping_user_ingredient;not null"`
	IsChecked    bool       `gorm:"not null;default:false"`
	Quantity     string     `gorm:"type:varchar(50)"`
	Unit         string     `gorm:"type:varchar(50)"`
	RecipeID     *uuid.UUID `gorm:"type:char(36)"`
	Notes        string     `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Ingredient IngredientModel `gorm:"foreignKey:IngredientID"`
}

// LocationModel represents the GORM model for storage locations
type LocationModel struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID     uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_locations_user_name;not null"`
	Name       string    `gorm:"type:varchar(100);uniqueIndex:idx_locations_user_name;not null"`
	OrderIndex int       `gorm:"not null;default:0"`
	CreatedAt  time.Time
}

// AllModels lists every model managed by AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&IngredientModel{},
		&LocationModel{},
		&InventoryItemModel{},
		&ShoppingListItemModel{},
	}
}

// BeforeCreate hook for IngredientModel
func (m *IngredientModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for InventoryItemModel
func (m *InventoryItemModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for ShoppingListItemModel
func (m *ShoppingListItemModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for LocationModel
func (m *LocationModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (IngredientModel) TableName() string {
	return "ingredients"
}

func (InventoryItemModel) TableName() string {
	return "inventory_items"
}

func (ShoppingListItemModel) TableName() string {
	return "shopping_list_items"
}

func (LocationModel) TableName() string {
	return "locations"
}
