package kitchen

import "github.com/google/uuid"

// AssignmentSource records how an item got its location.
type AssignmentSource string

const (
	SourceClassifier AssignmentSource = "classifier"
	SourceFallback   AssignmentSource = "fallback"
	SourceUnassigned AssignmentSource = "unassigned"
	SourceUser       AssignmentSource = "user"
)

// LocationAssignment is the chosen location for one checked-off item. A nil
// LocationID with SourceUnassigned means the user has no locations at all.
type LocationAssignment struct {
	ItemID       *uuid.UUID       `json:"item_id,omitempty"`
	Item         string           `json:"item"`
	LocationID   *uuid.UUID       `json:"location_id"`
	LocationName string           `json:"location_name,omitempty"`
	Source       AssignmentSource `json:"source"`
}

// LocationMapping is the editable item to location proposal produced at
// checkout. It is never persisted.
type LocationMapping struct {
	Entries             []LocationAssignment `json:"entries"`
	UsedFallback        bool                 `json:"used_fallback"`
	NoLocationAvailable bool                 `json:"no_location_available"`
	Notice              string               `json:"notice,omitempty"`
}

// Lookup finds the entry for an item, by id first and then by normalised name.
func (m LocationMapping) Lookup(itemID uuid.UUID, name string) (LocationAssignment, bool) {
	if itemID != uuid.Nil {
		for _, entry := range m.Entries {
			if entry.ItemID != nil && *entry.ItemID == itemID {
				return entry, true
			}
		}
	}
	key := NormalizeName(name)
	if key == "" {
		return LocationAssignment{}, false
	}
	for _, entry := range m.Entries {
		if NormalizeName(entry.Item) == key {
			return entry, true
		}
	}
	return LocationAssignment{}, false
}

// Assign records a user's choice for an item, replacing any existing entry.
func (m *LocationMapping) Assign(item string, location Location) {
	id := location.ID
	assignment := LocationAssignment{
		Item:         item,
		LocationID:   &id,
		LocationName: location.Name,
		Source:       SourceUser,
	}
	key := NormalizeName(item)
	for i, entry := range m.Entries {
		if NormalizeName(entry.Item) == key {
			assignment.ItemID = entry.ItemID
			m.Entries[i] = assignment
			return
		}
	}
	m.Entries = append(m.Entries, assignment)
}
