// Package ai provides the location classifiers used at checkout and the
// pieces they share
package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

const systemPrompt = `You sort groceries into a household's storage locations.

Respond with ONLY a JSON object mapping every item name, exactly as given, to one of the given location names, exactly as given. Do not invent locations. Do not add any text outside the JSON.

Example:
{"milk": "Fridge", "rice": "Pantry"}`

// LocationPrompt builds the system and user messages for one classification
func LocationPrompt(itemNames, locationNames []string) (system, user string) {
	items, _ := json.Marshal(itemNames)
	locations, _ := json.Marshal(locationNames)

	user = fmt.Sprintf("Locations: %s\nItems: %s", locations, items)
	return systemPrompt, user
}

// ParseLocationAnswer extracts the item to location object from model output.
// Text around the object, such as markdown fences, is ignored. Non-string
// values are dropped. A single wrapping object like {"assignments": {...}} is
// unwrapped.
func ParseLocationAnswer(content string) (map[string]string, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in classifier response")
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse classifier response: %w", err)
	}

	if len(raw) == 1 {
		for _, v := range raw {
			if inner, ok := v.(map[string]interface{}); ok {
				raw = inner
			}
		}
	}

	answer := make(map[string]string, len(raw))
	for item, v := range raw {
		if loc, ok := v.(string); ok && strings.TrimSpace(loc) != "" {
			answer[item] = strings.TrimSpace(loc)
		}
	}
	return answer, nil
}
