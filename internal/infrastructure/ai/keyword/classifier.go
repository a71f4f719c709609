// Package keyword provides a deterministic location classifier that needs no
// remote service
package keyword

import (
	"context"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
)

// Classifier assigns locations from the ingredient category catalogue
type Classifier struct{}

// NewClassifier creates a new keyword classifier
func NewClassifier() *Classifier {
	return &Classifier{}
}

// ClassifyItemsToLocations picks, for each item, the first preferred location
// of its category that the user has. Items with no such location are left
// out so the caller applies its default.
func (c *Classifier) ClassifyItemsToLocations(ctx context.Context, itemNames, locationNames []string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	locations := make([]kitchen.Location, len(locationNames))
	for i, name := range locationNames {
		locations[i] = kitchen.Location{Name: name, OrderIndex: i}
	}

	answer := make(map[string]string, len(itemNames))
	for _, item := range itemNames {
		for _, preferred := range kitchen.PreferredLocations(kitchen.Categorize(item)) {
			if loc, ok := kitchen.FindLocationByName(locations, preferred); ok {
				answer[item] = loc.Name
				break
			}
		}
	}
	return answer, nil
}
