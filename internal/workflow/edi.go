package workflow

import (
	"github.com/docintel/docintel/internal/edi"
	"github.com/docintel/docintel/internal/validate"
)

// ediStructureSection runs the deterministic interchange checks. It never
// calls the model, so it cannot fail; structural problems become findings.
func ediStructureSection(text string) Section {
	result := edi.ValidateStructure(text)

	section := Section{
		Name: "edi.structure",
		Fields: map[string]any{
			"format":         string(result.Format),
			"segmentCount":   result.SegmentCount,
			"containerCount": result.ContainerCount,
			"containers":     result.Containers,
		},
	}
	if len(result.DuplicateBoxes) > 0 {
		section.Fields["duplicateBoxes"] = result.DuplicateBoxes
	}

	for _, msg := range result.Errors {
		section.Findings = append(section.Findings, validate.Finding{
			Title:    "Structural error",
			Message:  msg,
			Severity: validate.SeverityError,
		})
	}
	for _, msg := range result.Warnings {
		section.Findings = append(section.Findings, validate.Finding{
			Title:    "Structural warning",
			Message:  msg,
			Severity: validate.SeverityWarning,
		})
	}
	for _, msg := range result.Suggestions {
		section.Findings = append(section.Findings, validate.Finding{
			Title:    "Suggestion",
			Message:  msg,
			Severity: validate.SeverityInfo,
		})
	}
	return section
}
