package constants

import (
	"strings"
)

// Category is the fixed taxonomy for extracted events.
type Category string

const (
	General  Category = "general"
	Practice Category = "practice"
	Game     Category = "game"
	Meeting  Category = "meeting"
	Event    Category = "event"
	Deadline Category = "deadline"
)

var allCategories = []Category{
	General,
	Practice,
	Game,
	Meeting,
	Event,
	Deadline,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps free-form category text onto the fixed taxonomy.
// Unrecognized values fall back to General.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return General, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]Category{
		"training":    Practice,
		"rehearsal":   Practice,
		"scrimmage":   Practice,
		"match":       Game,
		"tournament":  Game,
		"appointment": Meeting,
		"call":        Meeting,
		"standup":     Meeting,
		"due":         Deadline,
		"due date":    Deadline,
		"submission":  Deadline,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return General, false
}
