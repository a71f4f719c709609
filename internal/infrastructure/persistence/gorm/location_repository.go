package gorm

import (
	"context"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LocationRepository implements the location repository interface using GORM
type LocationRepository struct {
	db *gorm.DB
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *gorm.DB) outbound.LocationRepository {
	return &LocationRepository{db: db}
}

// ListByUser returns the user's locations in display order
func (r *LocationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]kitchen.Location, error) {
	var models []LocationModel
	err := conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("order_index ASC, created_at ASC, name ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	locations := make([]kitchen.Location, 0, len(models))
	for i := range models {
		locations = append(locations, ModelToLocation(&models[i]))
	}
	return locations, nil
}

// Create creates a new location
func (r *LocationRepository) Create(ctx context.Context, location *kitchen.Location) error {
	model := LocationToModel(location)
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		return err
	}
	location.ID = model.ID
	location.CreatedAt = model.CreatedAt
	return nil
}
