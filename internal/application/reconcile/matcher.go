// Package reconcile implements the recipe, shopping list and inventory
// reconciliation use cases.
package reconcile

import (
	"context"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/errors"
	"go.uber.org/zap"
)

// MatchResult is the canonical identity found or created for a name
type MatchResult struct {
	Ingredient *kitchen.CanonicalIngredient
	Created    bool
}

// Matcher resolves free-text ingredient names to canonical ingredients
type Matcher struct {
	ingredients outbound.IngredientRepository
	logger      *zap.Logger
}

// NewMatcher creates a new matcher
func NewMatcher(ingredients outbound.IngredientRepository, logger *zap.Logger) *Matcher {
	return &Matcher{
		ingredients: ingredients,
		logger:      logger.Named("ingredient-matcher"),
	}
}

// Resolve returns the canonical ingredient for name, creating it when no
// ingredient has the same normalised name. Creation goes through an
// insert-on-conflict so concurrent callers converge on one row.
func (m *Matcher) Resolve(ctx context.Context, name, categoryHint string) (*MatchResult, error) {
	display := kitchen.CleanName(name)
	if display == "" {
		return nil, errors.NewValidationError(kitchen.ErrBlankIngredientName.Error()).
			WithCause(kitchen.ErrBlankIngredientName)
	}

	existing, err := m.ingredients.FindByName(ctx, display)
	if err != nil {
		return nil, errors.NewPersistenceError("find canonical ingredient", err).
			WithMetadata("ingredient", display)
	}
	if existing != nil {
		return &MatchResult{Ingredient: existing}, nil
	}

	candidate, err := kitchen.NewCanonicalIngredient(display, categoryHint)
	if err != nil {
		return nil, errors.NewValidationError(err.Error()).WithCause(err)
	}

	stored, created, err := m.ingredients.CreateIfAbsent(ctx, candidate)
	if err != nil {
		return nil, errors.NewPersistenceError("create canonical ingredient", err).
			WithMetadata("ingredient", display)
	}

	if created {
		m.logger.Info("Created canonical ingredient",
			zap.String("ingredient_id", stored.ID.String()),
			zap.String("name", stored.Name),
			zap.String("category", stored.Category),
		)
	}

	return &MatchResult{Ingredient: stored, Created: created}, nil
}
