package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

const defaultMaxCandidates = 200

// RepairJSONArray is the single bounded repair applied to an unparsable
// model response: strip code fences and everything outside the outermost
// JSON array. It never invents payload, only removes wrapping.
func RepairJSONArray(s string) (string, bool) {
	s = strings.TrimSpace(s)
	// ```json ... ``` fences
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	i := strings.Index(s, "[")
	j := strings.LastIndex(s, "]")
	if i < 0 || j <= i {
		return "", false
	}
	return s[i : j+1], true
}

// ParseCandidates parses a model response strictly as an array of candidate
// objects. On a parse failure it performs exactly one repair pass via
// RepairJSONArray; if that also fails the response is unusable. Elements
// failing the per-candidate schema are dropped, not fatal. The result is
// truncated at max candidates to guard against runaway responses.
func ParseCandidates(raw []byte, max int, logger *slog.Logger) ([]CandidateEvent, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if max <= 0 {
		max = defaultMaxCandidates
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		repaired, ok := RepairJSONArray(string(raw))
		if !ok {
			return nil, fmt.Errorf("response is not a JSON array: %w", err)
		}
		if err2 := json.Unmarshal([]byte(repaired), &elems); err2 != nil {
			return nil, fmt.Errorf("response unusable after repair: %w", err2)
		}
		logger.Warn("llm.parse.repair_applied", "raw_bytes", len(raw))
	}

	if len(elems) > max {
		logger.Warn("llm.parse.truncated", "returned", len(elems), "max", max)
		elems = elems[:max]
	}

	schema := BuildCandidateJSONSchema()
	out := make([]CandidateEvent, 0, len(elems))
	dropped := 0
	for i, el := range elems {
		if err := ValidateJSONAgainstSchema(schema, el); err != nil {
			logger.Warn("llm.parse.candidate_dropped", "index", i, "error", err)
			dropped++
			continue
		}
		var c CandidateEvent
		if err := json.Unmarshal(el, &c); err != nil {
			logger.Warn("llm.parse.candidate_dropped", "index", i, "error", err)
			dropped++
			continue
		}
		out = append(out, c)
	}
	if dropped > 0 {
		logger.Warn("llm.parse.schema_drops", "dropped", dropped, "kept", len(out))
	}
	return out, nil
}
