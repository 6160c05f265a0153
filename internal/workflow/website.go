package workflow

import (
	"github.com/docintel/docintel/internal/normalize"
	"github.com/docintel/docintel/internal/validate"
)

// websiteStructureSection scores a page's markup hygiene from the metadata
// captured during normalization. Scoring is additive over four aspects, 25
// points each.
func websiteStructureSection(meta *normalize.WebMetadata) Section {
	section := Section{Name: "website.structure"}
	if meta == nil {
		section.Error = "no page metadata captured"
		return section
	}

	score := 0
	switch {
	case len(meta.H1) == 1:
		score += 25
	case len(meta.H1) > 1:
		score += 10
		section.Findings = append(section.Findings, validate.Finding{
			Title:    "Multiple H1 headings",
			Message:  "a page should carry exactly one H1",
			Severity: validate.SeverityWarning,
		})
	default:
		section.Findings = append(section.Findings, validate.Finding{
			Title:    "Missing H1 heading",
			Message:  "the page has no H1",
			Severity: validate.SeverityWarning,
		})
	}

	switch {
	case len(meta.H2) >= 3:
		score += 25
	case len(meta.H2) >= 1:
		score += 15
	}

	if meta.MetaDescription != "" {
		score += 25
	} else {
		section.Findings = append(section.Findings, validate.Finding{
			Title:    "Missing meta description",
			Message:  "search engines fall back to arbitrary page text",
			Severity: validate.SeverityWarning,
		})
	}

	if meta.Title != "" {
		score += 25
	} else {
		section.Findings = append(section.Findings, validate.Finding{
			Title:    "Missing title",
			Message:  "the page has no <title> element",
			Severity: validate.SeverityError,
		})
	}

	section.Fields = map[string]any{
		"structureScore":  score,
		"title":           meta.Title,
		"metaDescription": meta.MetaDescription,
		"h1Count":         len(meta.H1),
		"h2Count":         len(meta.H2),
		"h3Count":         len(meta.H3),
		"linkCount":       len(meta.Links),
		"imageCount":      len(meta.Images),
	}
	return section
}
