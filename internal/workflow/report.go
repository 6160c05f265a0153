package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/docintel/docintel/constants"
	"github.com/docintel/docintel/internal/validate"
)

// Section is one extraction's slice of the report. A section that failed
// carries Error and empty Fields; sibling sections are unaffected. The
// report shape is stable regardless of which sections succeeded.
type Section struct {
	Name     string             `json:"name"`
	Fields   map[string]any     `json:"fields,omitempty"`
	Findings []validate.Finding `json:"findings,omitempty"`
	Error    string             `json:"error,omitempty"`
	Intent   string             `json:"intent,omitempty"`
}

// Failed reports whether this section produced no usable fields.
func (s *Section) Failed() bool { return s.Error != "" }

// Report is the terminal artifact of one pipeline run.
type Report struct {
	DocumentID   uuid.UUID              `json:"documentId"`
	DocumentType constants.DocumentType `json:"documentType"`
	Workflow     string                 `json:"workflow"`
	State        constants.RunState     `json:"state"`
	Sections     []Section              `json:"sections"`
	OverallRisk  string                 `json:"overallRisk,omitempty"`
	Error        string                 `json:"error,omitempty"`
	Hint         string                 `json:"hint,omitempty"`
	StartedAt    time.Time              `json:"startedAt"`
	FinishedAt   time.Time              `json:"finishedAt"`
}

// SectionByName returns the named section, or nil.
func (r *Report) SectionByName(name string) *Section {
	for i := range r.Sections {
		if r.Sections[i].Name == name {
			return &r.Sections[i]
		}
	}
	return nil
}

// FailedSections counts sections that produced no fields.
func (r *Report) FailedSections() int {
	n := 0
	for i := range r.Sections {
		if r.Sections[i].Failed() {
			n++
		}
	}
	return n
}
