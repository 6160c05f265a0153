package validate

import (
	"fmt"
	"strings"
)

// placeholderNames are values models emit when they hallucinate table rows
// instead of copying the document. Rows led by one of these are discarded.
var placeholderNames = []string{
	"Product A",
	"Sample",
	"Example",
	"Test",
}

// PlaceholderRowRule removes fabricated-looking rows from extracted tables
// and reports each removal.
type PlaceholderRowRule struct{}

func (PlaceholderRowRule) Name() string { return "tables.placeholder_rows" }

func (PlaceholderRowRule) Apply(fields map[string]any) []Finding {
	tables, ok := fields["tables"].([]any)
	if !ok {
		return nil
	}
	var findings []Finding
	for ti, t := range tables {
		table, ok := t.(map[string]any)
		if !ok {
			continue
		}
		rows, ok := table["rows"].([]any)
		if !ok {
			continue
		}
		kept := make([]any, 0, len(rows))
		for _, r := range rows {
			cells, isRow := r.([]any)
			if isRow && isPlaceholderRow(cells) {
				findings = append(findings, Finding{
					Title:        "Placeholder row discarded",
					Message:      fmt.Sprintf("row %q looks fabricated and was removed", firstCell(cells)),
					Severity:     SeverityWarning,
					RelatedField: fmt.Sprintf("tables[%d].rows", ti),
				})
				continue
			}
			kept = append(kept, r)
		}
		table["rows"] = kept
	}
	return findings
}

func isPlaceholderRow(cells []any) bool {
	first := firstCell(cells)
	for _, name := range placeholderNames {
		if strings.EqualFold(strings.TrimSpace(first), name) {
			return true
		}
	}
	return false
}

func firstCell(cells []any) string {
	if len(cells) == 0 {
		return ""
	}
	s, _ := cells[0].(string)
	return s
}
