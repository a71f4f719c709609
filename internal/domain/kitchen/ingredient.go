package kitchen

import (
	"time"

	"github.com/google/uuid"
)

// DefaultUnitPlaceholder is the unit given to ingredients created on the fly.
const DefaultUnitPlaceholder = "each"

// CanonicalIngredient is the identity shared by every user for one ingredient
// name. NameKey is the normalised form and is unique across the table.
type CanonicalIngredient struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	NameKey     string    `json:"name_key"`
	Category    string    `json:"category"`
	DefaultUnit string    `json:"default_unit"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewCanonicalIngredient builds an ingredient for a free-text name. When no
// category hint is given the category is inferred from the keyword catalogue.
func NewCanonicalIngredient(name, categoryHint string) (*CanonicalIngredient, error) {
	display := CleanName(name)
	if display == "" {
		return nil, ErrBlankIngredientName
	}

	category := CleanName(categoryHint)
	if category == "" {
		category = Categorize(display)
	}

	return &CanonicalIngredient{
		ID:          uuid.New(),
		Name:        display,
		NameKey:     NormalizeName(display),
		Category:    category,
		DefaultUnit: DefaultUnitPlaceholder,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
