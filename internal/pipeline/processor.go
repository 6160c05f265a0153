package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/docintel/docintel/internal/chunk"
	"github.com/docintel/docintel/internal/index"
	"github.com/docintel/docintel/internal/normalize"
	"github.com/docintel/docintel/internal/retrieve"
	"github.com/docintel/docintel/internal/workflow"
)

// DocumentStore is the persistence slice the processor needs.
type DocumentStore interface {
	SaveDocument(ctx context.Context, doc *normalize.NormalizedDocument) error
	GetDocument(ctx context.Context, id uuid.UUID) (*normalize.NormalizedDocument, error)
	SaveReport(ctx context.Context, report *workflow.Report) error
	GetReport(ctx context.Context, documentID uuid.UUID) (*workflow.Report, error)
}

// Orchestrator runs one analysis over an indexed document.
type Orchestrator interface {
	Run(ctx context.Context, doc *normalize.NormalizedDocument, searcher retrieve.Searcher, wf string) *workflow.Report
}

// Processor coordinates ingestion (normalize, chunk, embed, register) and
// analysis runs (orchestrate, persist report).
type Processor struct {
	normalizer *normalize.Service
	splitter   *chunk.Splitter
	embedder   index.Embedder
	registry   *index.Registry
	orch       Orchestrator
	store      DocumentStore
	logger     *slog.Logger
}

func NewProcessor(
	normalizer *normalize.Service,
	splitter *chunk.Splitter,
	embedder index.Embedder,
	registry *index.Registry,
	orch Orchestrator,
	store DocumentStore,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		normalizer: normalizer,
		splitter:   splitter,
		embedder:   embedder,
		registry:   registry,
		orch:       orch,
		store:      store,
		logger:     logger,
	}
}

// Ingest normalizes an upload, persists it, and builds its vector index.
func (p *Processor) Ingest(ctx context.Context, upload normalize.RawUpload) (*normalize.NormalizedDocument, error) {
	start := time.Now()

	doc, err := p.normalizer.Normalize(ctx, upload)
	if err != nil {
		return nil, err
	}
	if err := p.store.SaveDocument(ctx, doc); err != nil {
		return nil, err
	}
	if _, err := p.buildIndex(ctx, doc); err != nil {
		return nil, err
	}

	p.logger.Info("pipeline.ingest.ok",
		"doc_id", doc.ID.String(),
		"kind", string(doc.SourceKind),
		"elapsed_ms", time.Since(start).Milliseconds())
	return doc, nil
}

// RunDocument executes one workflow over an already ingested document and
// persists the report. It satisfies the async queue's Runner interface.
// The document is re-indexed from the store if its index was evicted.
func (p *Processor) RunDocument(ctx context.Context, documentID uuid.UUID, wf string) error {
	doc, err := p.store.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}

	ix, ok := p.registry.Get(documentID)
	if !ok {
		p.logger.Info("pipeline.reindex", "doc_id", documentID.String())
		if ix, err = p.buildIndex(ctx, doc); err != nil {
			return err
		}
	}

	report := p.orch.Run(ctx, doc, ix, wf)
	return p.store.SaveReport(ctx, report)
}

// Report loads a previously produced report.
func (p *Processor) Report(ctx context.Context, documentID uuid.UUID) (*workflow.Report, error) {
	return p.store.GetReport(ctx, documentID)
}

func (p *Processor) buildIndex(ctx context.Context, doc *normalize.NormalizedDocument) (*index.Index, error) {
	var chunks []chunk.Chunk
	for c := range p.splitter.Split(doc.ID, doc.Text) {
		chunks = append(chunks, c)
	}
	ix, err := index.Build(ctx, doc.ID, chunks, p.embedder, p.logger)
	if err != nil {
		return nil, err
	}
	p.registry.Put(ix)
	return ix, nil
}
