package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docintel/docintel/constants"
	"github.com/docintel/docintel/internal/chunk"
	"github.com/docintel/docintel/internal/common"
	"github.com/docintel/docintel/internal/index"
	"github.com/docintel/docintel/internal/normalize"
	"github.com/docintel/docintel/internal/repository"
	"github.com/docintel/docintel/internal/retrieve"
	"github.com/docintel/docintel/internal/workflow"
)

type memStore struct {
	docs    map[uuid.UUID]*normalize.NormalizedDocument
	reports map[uuid.UUID]*workflow.Report
}

func newMemStore() *memStore {
	return &memStore{
		docs:    make(map[uuid.UUID]*normalize.NormalizedDocument),
		reports: make(map[uuid.UUID]*workflow.Report),
	}
}

func (m *memStore) SaveDocument(_ context.Context, doc *normalize.NormalizedDocument) error {
	m.docs[doc.ID] = doc
	return nil
}

func (m *memStore) GetDocument(_ context.Context, id uuid.UUID) (*normalize.NormalizedDocument, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return doc, nil
}

func (m *memStore) SaveReport(_ context.Context, report *workflow.Report) error {
	m.reports[report.DocumentID] = report
	return nil
}

func (m *memStore) GetReport(_ context.Context, id uuid.UUID) (*workflow.Report, error) {
	report, ok := m.reports[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return report, nil
}

type constantEmbedder struct{ calls int }

func (e *constantEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0.5, 0.25}
	}
	return out, nil
}

type stubOrchestrator struct{ runs int }

func (s *stubOrchestrator) Run(_ context.Context, doc *normalize.NormalizedDocument, searcher retrieve.Searcher, wf string) *workflow.Report {
	s.runs++
	return &workflow.Report{
		DocumentID: doc.ID,
		Workflow:   wf,
		State:      constants.RunStateDone,
	}
}

func newTestProcessor(t *testing.T) (*Processor, *memStore, *stubOrchestrator, *index.Registry) {
	t.Helper()
	splitter, err := chunk.NewSplitter(50, 10)
	require.NoError(t, err)
	store := newMemStore()
	orch := &stubOrchestrator{}
	registry := index.NewRegistry(8, nil)
	proc := NewProcessor(
		normalize.NewService(10, nil),
		splitter,
		&constantEmbedder{},
		registry,
		orch,
		store,
		nil,
	)
	return proc, store, orch, registry
}

func TestIngestPersistsAndIndexes(t *testing.T) {
	proc, store, _, registry := newTestProcessor(t)

	doc, err := proc.Ingest(context.Background(), normalize.RawUpload{
		Hint: "notes.txt",
		Data: []byte(strings.Repeat("meaningful text content. ", 10)),
	})
	require.NoError(t, err)

	assert.Contains(t, store.docs, doc.ID)
	_, ok := registry.Get(doc.ID)
	assert.True(t, ok)
}

func TestIngestRejectsEmpty(t *testing.T) {
	proc, store, _, _ := newTestProcessor(t)

	_, err := proc.Ingest(context.Background(), normalize.RawUpload{Hint: "x.txt", Data: []byte(" ")})
	require.Error(t, err)
	assert.Empty(t, store.docs)
}

func TestRunDocumentSavesReport(t *testing.T) {
	proc, store, orch, _ := newTestProcessor(t)

	doc, err := proc.Ingest(context.Background(), normalize.RawUpload{
		Hint: "notes.txt",
		Data: []byte(strings.Repeat("meaningful text content. ", 10)),
	})
	require.NoError(t, err)

	require.NoError(t, proc.RunDocument(context.Background(), doc.ID, "auto"))
	assert.Equal(t, 1, orch.runs)

	report, err := proc.Report(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.RunStateDone, report.State)
	assert.Contains(t, store.reports, doc.ID)
}

func TestRunDocumentReindexesAfterEviction(t *testing.T) {
	proc, _, orch, registry := newTestProcessor(t)

	doc, err := proc.Ingest(context.Background(), normalize.RawUpload{
		Hint: "notes.txt",
		Data: []byte(strings.Repeat("meaningful text content. ", 10)),
	})
	require.NoError(t, err)

	registry.Remove(doc.ID)
	require.NoError(t, proc.RunDocument(context.Background(), doc.ID, "auto"))
	assert.Equal(t, 1, orch.runs)

	_, ok := registry.Get(doc.ID)
	assert.True(t, ok)
}

type webRecordingOrchestrator struct {
	seenWeb *normalize.WebMetadata
}

func (o *webRecordingOrchestrator) Run(_ context.Context, doc *normalize.NormalizedDocument, _ retrieve.Searcher, wf string) *workflow.Report {
	o.seenWeb = doc.Web
	return &workflow.Report{DocumentID: doc.ID, Workflow: wf, State: constants.RunStateDone}
}

// A website run served from the store must still see the page metadata,
// not just the stripped text.
func TestRunDocumentKeepsWebMetadataThroughStore(t *testing.T) {
	splitter, err := chunk.NewSplitter(50, 10)
	require.NoError(t, err)
	store, err := repository.Open(filepath.Join(t.TempDir(), "docs.db"), nil)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	orch := &webRecordingOrchestrator{}
	proc := NewProcessor(
		normalize.NewService(10, nil),
		splitter,
		&constantEmbedder{},
		index.NewRegistry(8, nil),
		orch,
		store,
		nil,
	)

	page := `<!doctype html><html><head><title>Acme Widgets</title>` +
		`<meta name="description" content="widgets for everyone"></head>` +
		`<body><h1>Acme</h1><p>We make widgets and ship them worldwide.</p></body></html>`
	doc, err := proc.Ingest(context.Background(), normalize.RawUpload{Hint: "landing.html", Data: []byte(page)})
	require.NoError(t, err)
	require.NotNil(t, doc.Web)

	require.NoError(t, proc.RunDocument(context.Background(), doc.ID, "auto"))
	require.NotNil(t, orch.seenWeb)
	assert.Equal(t, "Acme Widgets", orch.seenWeb.Title)
	assert.Equal(t, "widgets for everyone", orch.seenWeb.MetaDescription)
	assert.Equal(t, []string{"Acme"}, orch.seenWeb.H1)
}

func TestRunDocumentUnknownID(t *testing.T) {
	proc, _, _, _ := newTestProcessor(t)
	err := proc.RunDocument(context.Background(), uuid.New(), "auto")
	assert.Error(t, err)
}
