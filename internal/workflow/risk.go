package workflow

import "strings"

// OverallRisk derives a single risk grade from individual risk entries.
// Two or more high-severity risks grade the document high; a single high or
// three mediums grade it medium; anything else is low.
func OverallRisk(sections []Section) string {
	high, medium := 0, 0
	for i := range sections {
		for _, entry := range riskEntries(sections[i].Fields) {
			switch strings.ToLower(entry) {
			case "high", "critical":
				high++
			case "medium", "moderate":
				medium++
			}
		}
	}
	switch {
	case high >= 2:
		return "high"
	case high >= 1 || medium >= 3:
		return "medium"
	default:
		return "low"
	}
}

// riskEntries pulls the severity of each item under a "risks" key.
func riskEntries(fields map[string]any) []string {
	if fields == nil {
		return nil
	}
	list, ok := fields["risks"].([]any)
	if !ok {
		return nil
	}
	var severities []string
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := m["severity"].(string); ok {
			severities = append(severities, s)
		}
	}
	return severities
}
