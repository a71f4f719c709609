package kitchen

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultLocationName is the location preferred when classification fails.
const DefaultLocationName = "Pantry"

// Location is a user-defined storage bucket such as "Fridge".
type Location struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Name       string    `json:"name"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewLocation creates a location for a user
func NewLocation(userID uuid.UUID, name string, orderIndex int) (*Location, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUserID
	}
	display := CleanName(name)
	if display == "" {
		return nil, ErrBlankLocationName
	}
	return &Location{
		ID:         uuid.New(),
		UserID:     userID,
		Name:       display,
		OrderIndex: orderIndex,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// SortLocations returns a copy ordered by OrderIndex, then creation time,
// then name.
func SortLocations(locations []Location) []Location {
	sorted := make([]Location, len(locations))
	copy(sorted, locations)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex < b.OrderIndex
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Name < b.Name
	})
	return sorted
}

// FindLocationByName matches a location name case-insensitively, ignoring
// surrounding and repeated whitespace.
func FindLocationByName(locations []Location, name string) (Location, bool) {
	want := strings.ToLower(CleanName(name))
	if want == "" {
		return Location{}, false
	}
	for _, loc := range locations {
		if strings.ToLower(CleanName(loc.Name)) == want {
			return loc, true
		}
	}
	return Location{}, false
}

// DefaultLocation picks the fallback location: the one named preferred if it
// exists, else the first by order. ok is false when there are no locations.
func DefaultLocation(locations []Location, preferred string) (Location, bool) {
	if len(locations) == 0 {
		return Location{}, false
	}
	if loc, ok := FindLocationByName(locations, preferred); ok {
		return loc, true
	}
	return SortLocations(locations)[0], true
}
