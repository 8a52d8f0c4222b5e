package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON decodes a model response into v. Models sometimes wrap the
// document in markdown code fences even when asked for raw JSON, so a
// failed decode is retried once with the fences stripped.
func ExtractJSON(raw string, v any) error {
	trimmed := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(trimmed), v); err == nil {
		return nil
	}

	stripped := stripCodeFences(trimmed)
	if err := json.Unmarshal([]byte(stripped), v); err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	return nil
}

// stripCodeFences removes a leading ```json (or bare ```) fence and the
// matching trailing fence
func stripCodeFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line ("json", "JSON" or empty).
		s = s[idx+1:]
	}

	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}
