package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docintel/docintel/constants"
	"github.com/docintel/docintel/internal/async"
	"github.com/docintel/docintel/internal/chunk"
	"github.com/docintel/docintel/internal/common"
	"github.com/docintel/docintel/internal/export"
	"github.com/docintel/docintel/internal/index"
	"github.com/docintel/docintel/internal/normalize"
	"github.com/docintel/docintel/internal/pipeline"
	"github.com/docintel/docintel/internal/retrieve"
	"github.com/docintel/docintel/internal/workflow"
)

func init() { gin.SetMode(gin.TestMode) }

type memStore struct {
	docs    map[uuid.UUID]*normalize.NormalizedDocument
	reports map[uuid.UUID]*workflow.Report
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

func (m *memStore) SaveReport(_ context.Context, r *workflow.Report) error {
	m.reports[r.DocumentID] = r
	return nil
}

func (m *memStore) GetReport(_ context.Context, id uuid.UUID) (*workflow.Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return r, nil
}

func (m *memStore) HealthCheck(_ context.Context, _ time.Duration) error { return nil }

type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 1}
	}
	return out, nil
}

type stubOrchestrator struct{}

func (stubOrchestrator) Run(_ context.Context, doc *normalize.NormalizedDocument, _ retrieve.Searcher, wf string) *workflow.Report {
	return &workflow.Report{
		DocumentID:   doc.ID,
		DocumentType: constants.Invoice,
		Workflow:     wf,
		State:        constants.RunStateDone,
		Sections:     []workflow.Section{{Name: "invoice.financials", Fields: map[string]any{"totalAmount": 10.0}}},
	}
}

type captureQueue struct {
	jobs []async.Job
	err  error
}

func (q *captureQueue) Enqueue(_ context.Context, job async.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}
func (q *captureQueue) Shutdown(context.Context) {}

func newTestServer(t *testing.T) (*gin.Engine, *memStore, *captureQueue) {
	t.Helper()
	store := &memStore{
		docs:    make(map[uuid.UUID]*normalize.NormalizedDocument),
		reports: make(map[uuid.UUID]*workflow.Report),
	}
	splitter, err := chunk.NewSplitter(100, 10)
	require.NoError(t, err)
	proc := pipeline.NewProcessor(
		normalize.NewService(10, nil),
		splitter,
		stubEmbedder{},
		index.NewRegistry(8, nil),
		stubOrchestrator{},
		store,
		nil,
	)
	queue := &captureQueue{}
	srv := New(proc, queue, export.NewService(nil), store, nil)
	return srv.Router(), store, queue
}

func uploadBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func doUpload(t *testing.T, router *gin.Engine) uuid.UUID {
	t.Helper()
	body, contentType := uploadBody(t, "notes.txt", strings.Repeat("quarterly revenue numbers. ", 10))
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		DocumentID string `json:"documentId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	id, err := uuid.Parse(resp.DocumentID)
	require.NoError(t, err)
	return id
}

func TestUploadDocument(t *testing.T) {
	router, store, _ := newTestServer(t)
	id := doUpload(t, router)
	assert.Contains(t, store.docs, id)
}

func TestUploadEmptyBody(t *testing.T) {
	router, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/documents", bytes.NewReader(nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadBlankDocumentUnprocessable(t *testing.T) {
	router, _, _ := newTestServer(t)
	body, contentType := uploadBody(t, "blank.txt", "   \n ")
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "hint")
}

func TestRunReportSync(t *testing.T) {
	router, _, _ := newTestServer(t)
	id := doUpload(t, router)

	req := httptest.NewRequest(http.MethodPost, "/api/documents/"+id.String()+"/report?workflow=invoice", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report workflow.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, id, report.DocumentID)
	assert.Equal(t, constants.RunStateDone, report.State)
}

func TestRunReportAsync(t *testing.T) {
	router, _, queue := newTestServer(t)
	id := doUpload(t, router)

	req := httptest.NewRequest(http.MethodPost, "/api/documents/"+id.String()+"/report?async=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, id, queue.jobs[0].DocumentID)
	assert.Equal(t, "auto", queue.jobs[0].Workflow)
}

func TestRunReportAsyncQueueClosed(t *testing.T) {
	router, _, queue := newTestServer(t)
	id := doUpload(t, router)
	queue.err = async.ErrQueueClosed

	req := httptest.NewRequest(http.MethodPost, "/api/documents/"+id.String()+"/report?async=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, queue.jobs)
}

func TestGetReportNotFound(t *testing.T) {
	router, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/documents/"+uuid.NewString()+"/report", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetReportBadID(t *testing.T) {
	router, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/documents/not-a-uuid/report", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportReportXLSX(t *testing.T) {
	router, _, _ := newTestServer(t)
	id := doUpload(t, router)

	req := httptest.NewRequest(http.MethodPost, "/api/documents/"+id.String()+"/report", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/documents/"+id.String()+"/report.xlsx", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestHealthz(t *testing.T) {
	router, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
