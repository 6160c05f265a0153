package validate

import (
	"log/slog"

	"github.com/docintel/docintel/internal/llm"
)

// Severity grades a finding. Errors indicate the extraction contradicts
// itself; warnings indicate suspicious but usable data.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding is one deterministic check outcome attached to a report section.
type Finding struct {
	Title        string   `json:"title"`
	Message      string   `json:"message"`
	Severity     Severity `json:"severity"`
	RelatedField string   `json:"relatedField,omitempty"`
}

// Rule is one deterministic check over extracted fields. Rules may repair
// the fields in place (e.g. dropping placeholder rows) and report what they
// did as findings.
type Rule interface {
	Name() string
	Apply(fields map[string]any) []Finding
}

// Runner applies a rule set to an extraction result.
type Runner struct {
	logger *slog.Logger
}

func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

// Run applies the rules in order. A result whose parse failed is never
// validated; checking invented zero values would only produce noise.
func (r *Runner) Run(result *llm.Result, rules []Rule) []Finding {
	if result == nil || !result.ParseSucceeded {
		return nil
	}
	var findings []Finding
	for _, rule := range rules {
		fs := rule.Apply(result.Fields)
		findings = append(findings, fs...)
		if len(fs) > 0 {
			r.logger.Info("validate.rule.findings",
				"rule", rule.Name(),
				"schema", result.SchemaName,
				"count", len(fs))
		}
	}
	return findings
}
