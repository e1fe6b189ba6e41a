package llm

// BuildCandidateJSONSchema returns a JSON-Schema (draft 2020-12 subset) for
// one candidate event, as a generic map. It is deliberately loose: it only
// pins the TYPES of known fields so a single malformed candidate can be
// dropped without failing the batch. Unknown keys (including any id the
// model invents) are tolerated and ignored.
func BuildCandidateJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":       map[string]any{"type": "string"},
			"start_time":  map[string]any{"type": "string"},
			"end_time":    map[string]any{"type": "string"},
			"location":    map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"category":    map[string]any{"type": "string"},
			"all_day":     map[string]any{"type": "boolean"},
		},
	}
}
