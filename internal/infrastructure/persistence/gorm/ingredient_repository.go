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

// IngredientRepository implements the ingredient repository interface using GORM
type IngredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository creates a new ingredient repository
func NewIngredientRepository(db *gorm.DB) outbound.IngredientRepository {
	return &IngredientRepository{db: db}
}

// FindByName finds an ingredient by its normalised name
func (r *IngredientRepository) FindByName(ctx context.Context, name string) (*kitchen.CanonicalIngredient, error) {
	return r.findByKey(ctx, kitchen.NormalizeName(name))
}

// CreateIfAbsent inserts the ingredient with ON CONFLICT (name_key) DO NOTHING
// and reads back whichever row won.
func (r *IngredientRepository) CreateIfAbsent(ctx context.Context, ingredient *kitchen.CanonicalIngredient) (*kitchen.CanonicalIngredient, bool, error) {
	model := IngredientToModel(ingredient)

	result := conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name_key"}},
			DoNothing: true,
		}).
		Create(model)
	if result.Error != nil {
		return nil, false, result.Error
	}

	stored, err := r.findByKey(ctx, model.NameKey)
	if err != nil {
		return nil, false, err
	}
	if stored == nil {
		return nil, false, gorm.ErrRecordNotFound
	}

	return stored, result.RowsAffected == 1, nil
}

// FindByIDs loads ingredients keyed by id; unknown ids are absent from the map
func (r *IngredientRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*kitchen.CanonicalIngredient, error) {
	found := make(map[uuid.UUID]*kitchen.CanonicalIngredient, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var models []IngredientModel
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}

	for i := range models {
		found[models[i].ID] = ModelToIngredient(&models[i])
	}
	return found, nil
}

func (r *IngredientRepository) findByKey(ctx context.Context, key string) (*kitchen.CanonicalIngredient, error) {
	if key == "" {
		return nil, nil
	}

	var model IngredientModel
	err := conn(ctx, r.db).Where("name_key = ?", key).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return ModelToIngredient(&model), nil
}
