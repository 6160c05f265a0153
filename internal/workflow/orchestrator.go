package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/docintel/docintel/constants"
	"github.com/docintel/docintel/internal/common"
	"github.com/docintel/docintel/internal/llm"
	"github.com/docintel/docintel/internal/normalize"
	"github.com/docintel/docintel/internal/retrieve"
	"github.com/docintel/docintel/internal/validate"
)

// Extractor is the slice of the extraction engine the orchestrator needs.
// *llm.Engine satisfies it.
type Extractor interface {
	Extract(ctx context.Context, searcher retrieve.Searcher, schema llm.Schema) (*llm.Result, error)
}

// Orchestrator drives one document through detection, extraction,
// validation, and aggregation. Sub-extractions of a plan run concurrently;
// one failing section never aborts its siblings.
type Orchestrator struct {
	engine Extractor
	runner *validate.Runner
	logger *slog.Logger
}

func NewOrchestrator(engine Extractor, runner *validate.Runner, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		engine: engine,
		runner: runner,
		logger: logger,
	}
}

// Run executes the pipeline for one normalized document. workflow is either
// "auto" (or empty) for model-based detection or an explicit document type
// label. The returned report is never nil; a run that could not reach
// extraction has State FAILED and an Error.
func (o *Orchestrator) Run(ctx context.Context, doc *normalize.NormalizedDocument, searcher retrieve.Searcher, workflow string) *Report {
	report := &Report{
		DocumentID: doc.ID,
		Workflow:   workflow,
		StartedAt:  time.Now().UTC(),
	}

	o.setState(report, constants.RunStateDetecting)
	docType, err := o.detect(ctx, doc, searcher, workflow)
	if err != nil {
		return o.fail(report, err)
	}
	report.DocumentType = docType

	plan, err := planFor(docType)
	if err != nil {
		return o.fail(report, err)
	}

	o.setState(report, constants.RunStateExtracting)
	sections := o.extractAll(ctx, searcher, plan)

	o.setState(report, constants.RunStateValidating)
	for i, spec := range plan {
		if sections[i].result == nil {
			continue
		}
		sections[i].section.Findings = append(sections[i].section.Findings,
			o.runner.Run(sections[i].result, spec.rules)...)
	}

	o.setState(report, constants.RunStateAggregating)
	for i := range sections {
		report.Sections = append(report.Sections, sections[i].section)
	}
	switch docType {
	case constants.EDI:
		report.Sections = append(report.Sections, ediStructureSection(doc.Text))
	case constants.Website:
		report.Sections = append(report.Sections, websiteStructureSection(doc.Web))
	}
	if hasRiskSection(report.Sections) {
		report.OverallRisk = OverallRisk(report.Sections)
	}

	o.setState(report, constants.RunStateDone)
	report.FinishedAt = time.Now().UTC()
	o.logger.Info("workflow.done",
		"doc_id", doc.ID.String(),
		"doc_type", string(docType),
		"sections", len(report.Sections),
		"failed_sections", report.FailedSections(),
		"elapsed_ms", time.Since(report.StartedAt).Milliseconds())
	return report
}

// detect resolves the document type. An explicit workflow label wins; EDI
// and web sources are classified from their shape without a model call.
func (o *Orchestrator) detect(ctx context.Context, doc *normalize.NormalizedDocument, searcher retrieve.Searcher, workflow string) (constants.DocumentType, error) {
	if workflow != "" && workflow != "auto" {
		docType, ok := constants.CanonicalizeDocumentType(workflow)
		if !ok {
			return "", common.NewAppError("WORKFLOW_ERROR", "unknown workflow "+workflow, common.ErrInvalidInput)
		}
		return docType, nil
	}

	switch doc.SourceKind {
	case constants.SourceEDI:
		return constants.EDI, nil
	case constants.SourceWeb:
		return constants.Website, nil
	}

	result, err := o.engine.Extract(ctx, searcher, llm.DocTypeSchema())
	if err != nil {
		return "", err
	}
	if !result.ParseSucceeded {
		o.logger.Warn("workflow.detect.unparsed", "doc_id", doc.ID.String())
		return constants.OfficeDocument, nil
	}
	label, _ := result.Fields["documentType"].(string)
	docType, ok := constants.CanonicalizeDocumentType(label)
	if !ok {
		o.logger.Warn("workflow.detect.unmatched", "doc_id", doc.ID.String(), "label", label)
	}
	return docType, nil
}

type extractedSection struct {
	section Section
	result  *llm.Result
}

// extractAll fans the plan out across goroutines and joins before
// returning. Failures are contained in their own section slot, so the
// output is positionally aligned with the plan.
func (o *Orchestrator) extractAll(ctx context.Context, searcher retrieve.Searcher, plan []sectionSpec) []extractedSection {
	sections := make([]extractedSection, len(plan))

	var wg sync.WaitGroup
	for i, spec := range plan {
		wg.Add(1)
		go func(i int, spec sectionSpec) {
			defer wg.Done()
			section := Section{Name: spec.schema.Name}

			result, err := o.engine.Extract(ctx, searcher, spec.schema)
			switch {
			case err != nil:
				section.Error = err.Error()
			case !result.ParseSucceeded:
				section.Error = "model reply could not be parsed"
				section.Intent = result.Intent
			default:
				section.Fields = result.Fields
				section.Intent = result.Intent
				sections[i].result = result
			}
			sections[i].section = section
		}(i, spec)
	}
	wg.Wait()
	return sections
}

func (o *Orchestrator) setState(report *Report, state constants.RunState) {
	report.State = state
	o.logger.Debug("workflow.state",
		"doc_id", report.DocumentID.String(),
		"state", string(state))
}

func (o *Orchestrator) fail(report *Report, err error) *Report {
	report.State = constants.RunStateFailed
	report.Error = err.Error()
	report.Hint = common.RemediationHint(err)
	report.FinishedAt = time.Now().UTC()
	o.logger.Error("workflow.failed",
		"doc_id", report.DocumentID.String(),
		"error", err)
	return report
}

func hasRiskSection(sections []Section) bool {
	for i := range sections {
		if _, ok := sections[i].Fields["risks"]; ok {
			return true
		}
	}
	return false
}
