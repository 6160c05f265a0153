package llm

import (
	"encoding/json"
	"strings"
)

// ParseTolerant interprets a model reply in two stages. First the whole
// reply (minus markdown fences) is tried as JSON; failing that, the
// outermost {...} or [...] substring is tried. A top-level array is wrapped
// under "items" so callers always see an object. The second return is false
// when neither stage produces JSON.
func ParseTolerant(raw string) (map[string]any, bool) {
	candidate := stripFences(strings.TrimSpace(raw))

	if m, ok := tryDecode(candidate); ok {
		return m, true
	}

	if sub := outermost(candidate, '{', '}'); sub != "" {
		if m, ok := tryDecode(sub); ok {
			return m, true
		}
	}
	if sub := outermost(candidate, '[', ']'); sub != "" {
		if m, ok := tryDecode(sub); ok {
			return m, true
		}
	}
	return nil, false
}

func tryDecode(s string) (map[string]any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case []any:
		return map[string]any{"items": t}, true
	default:
		return nil, false
	}
}

// stripFences removes a surrounding markdown code fence if present.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:] // drop the language tag line
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// outermost returns the substring from the first open delimiter to the last
// matching close delimiter, or "" when the pair is absent or inverted.
func outermost(s string, open, close byte) string {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
