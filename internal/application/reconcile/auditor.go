package reconcile

import (
	"context"
	"fmt"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Auditor builds the reviewable stock view of a recipe
type Auditor struct {
	matcher   *Matcher
	inventory outbound.InventoryRepository
	logger    *zap.Logger
}

// NewAuditor creates a new stock auditor
func NewAuditor(matcher *Matcher, inventory outbound.InventoryRepository, logger *zap.Logger) *Auditor {
	return &Auditor{
		matcher:   matcher,
		inventory: inventory,
		logger:    logger.Named("stock-auditor"),
	}
}

// Audit returns one AuditItem per recipe ingredient in recipe order. Items
// without an inventory row default to not in stock. A failed lookup marks
// only that item for manual resolution.
func (a *Auditor) Audit(ctx context.Context, userID uuid.UUID, ingredients []kitchen.RecipeIngredient) ([]kitchen.AuditItem, error) {
	if err := validateAuditInput(userID, ingredients); err != nil {
		return nil, err
	}

	stock, stockErr := a.stockIndex(ctx, userID)
	if stockErr != nil {
		a.logger.Error("Inventory unavailable during audit",
			zap.String("user_id", userID.String()),
			zap.Error(stockErr),
		)
	}

	items := make([]kitchen.AuditItem, len(ingredients))
	for i, ing := range ingredients {
		item := kitchen.AuditItem{
			Index:    i,
			Name:     kitchen.CleanName(ing.Name),
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
		}

		match, err := a.matcher.Resolve(ctx, ing.Name, "")
		if err != nil {
			a.logger.Warn("Ingredient needs manual resolution",
				zap.String("user_id", userID.String()),
				zap.Int("index", i),
				zap.String("item", item.Name),
				zap.Error(err),
			)
			warning := errors.NewMatchAmbiguousError(item.Name, err)
			item.NeedsResolution = true
			item.Warning = &kitchen.Warning{Code: string(warning.Code), Message: warning.Details}
			items[i] = item
			continue
		}

		id := match.Ingredient.ID
		item.CanonicalID = &id
		item.NewIngredient = match.Created
		if item.Unit == "" && match.Created {
			item.Unit = match.Ingredient.DefaultUnit
		}

		if stockErr != nil {
			item.Warning = &kitchen.Warning{
				Code:    string(errors.CodePersistence),
				Message: "Pantry stock could not be read; assumed not in stock",
			}
		} else if inv, ok := stock[id]; ok {
			invID := inv.ID
			item.InStock = inv.InStock
			item.InventoryItemID = &invID
			item.LocationID = inv.LocationID
		}

		items[i] = item
	}

	return items, nil
}

func (a *Auditor) stockIndex(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]kitchen.InventoryItem, error) {
	inventory, err := a.inventory.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	index := make(map[uuid.UUID]kitchen.InventoryItem, len(inventory))
	for _, item := range inventory {
		index[item.IngredientID] = item
	}
	return index, nil
}

func validateAuditInput(userID uuid.UUID, ingredients []kitchen.RecipeIngredient) error {
	var problems []errors.ValidationError
	if userID == uuid.Nil {
		problems = append(problems, errors.ValidationError{
			Field: "user_id", Tag: "required", Message: kitchen.ErrMissingUserID.Error(),
		})
	}
	for i, ing := range ingredients {
		if kitchen.CleanName(ing.Name) == "" {
			problems = append(problems, errors.ValidationError{
				Field:   fmt.Sprintf("ingredients[%d].name", i),
				Tag:     "notblank",
				Message: fmt.Sprintf("ingredients[%d]: %s", i, kitchen.ErrBlankIngredientName),
			})
		}
	}
	if len(problems) > 0 {
		return errors.NewValidationErrors(problems)
	}
	return nil
}
