package gorm

import "github.com/alchemorsel/pantry/internal/domain/kitchen"

// IngredientToModel converts a domain ingredient to a GORM model
func IngredientToModel(i *kitchen.CanonicalIngredient) *IngredientModel {
	return &IngredientModel{
		ID:          i.ID,
		Name:        i.Name,
		NameKey:     i.NameKey,
		Category:    i.Category,
		DefaultUnit: i.DefaultUnit,
		CreatedAt:   i.CreatedAt,
	}
}

// ModelToIngredient converts a GORM model to a domain ingredient
func ModelToIngredient(m *IngredientModel) *kitchen.CanonicalIngredient {
	return &kitchen.CanonicalIngredient{
		ID:          m.ID,
		Name:        m.Name,
		NameKey:     m.NameKey,
		Category:    m.Category,
		DefaultUnit: m.DefaultUnit,
		CreatedAt:   m.CreatedAt,
	}
}

// InventoryItemToModel converts a domain inventory item to a GORM model
func InventoryItemToModel(i *kitchen.InventoryItem) *InventoryItemModel {
	return &InventoryItemModel{
		ID:           i.ID,
		UserID:       i.UserID,
		IngredientID: i.IngredientID,
		LocationID:   i.LocationID,
		InStock:      i.InStock,
		Quantity:     i.Quantity,
		Unit:         i.Unit,
	}
}

// ModelToInventoryItem converts a GORM model to a domain inventory item
func ModelToInventoryItem(m *InventoryItemModel) kitchen.InventoryItem {
	return kitchen.InventoryItem{
		ID:             m.ID,
		UserID:         m.UserID,
		IngredientID:   m.IngredientID,
		LocationID:     m.LocationID,
		InStock:        m.InStock,
		Quantity:       m.Quantity,
		Unit:           m.Unit,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		IngredientName: m.Ingredient.Name,
	}
}

// ShoppingListItemToModel converts a domain shopping list item to a GORM model
func ShoppingListItemToModel(i *kitchen.ShoppingListItem) *ShoppingListItemModel {
	return &ShoppingListItemModel{
		ID:           i.ID,
		UserID:       i.UserID,
		IngredientID: i.IngredientID,
		IsChecked:    i.IsChecked,
		Quantity:     i.Quantity,
		Unit:         i.Unit,
		RecipeID:     i.RecipeID,
		Notes:        i.Notes,
	}
}

// ModelToShoppingListItem converts a GORM model to a domain shopping list item
func ModelToShoppingListItem(m *ShoppingListItemModel) kitchen.ShoppingListItem {
	return kitchen.ShoppingListItem{
		ID:           m.ID,
		UserID:       m.UserID,
		IngredientID: m.IngredientID,
		IsChecked:    m.IsChecked,
		Quantity:     m.Quantity,
		Unit:         m.Unit,
		RecipeID:     m.RecipeID,
		Notes:        m.Notes,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		Name:         m.Ingredient.Name,
	}
}

// LocationToModel converts a domain location to a GORM model
func LocationToModel(l *kitchen.Location) *LocationModel {
	return &LocationModel{
		ID:         l.ID,
		UserID:     l.UserID,
		Name:       l.Name,
		OrderIndex: l.OrderIndex,
		CreatedAt:  l.CreatedAt,
	}
}

// ModelToLocation converts a GORM model to a domain location
func ModelToLocation(m *LocationModel) kitchen.Location {
	return kitchen.Location{
		ID:         m.ID,
		UserID:     m.UserID,
		Name:       m.Name,
		OrderIndex: m.OrderIndex,
		CreatedAt:  m.CreatedAt,
	}
}
