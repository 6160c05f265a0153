package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/docintel/docintel/internal/async"
	"github.com/docintel/docintel/internal/common"
	"github.com/docintel/docintel/internal/export"
	"github.com/docintel/docintel/internal/normalize"
	"github.com/docintel/docintel/internal/pipeline"
)

// HealthChecker is the liveness probe the server exposes on /healthz.
type HealthChecker interface {
	HealthCheck(ctx context.Context, timeout time.Duration) error
}

// Server is the HTTP surface: document upload, report runs, and export.
type Server struct {
	proc     *pipeline.Processor
	queue    async.Queue
	exporter *export.Service
	health   HealthChecker
	logger   *slog.Logger
}

func New(proc *pipeline.Processor, queue async.Queue, exporter *export.Service, health HealthChecker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		proc:     proc,
		queue:    queue,
		exporter: exporter,
		health:   health,
		logger:   logger,
	}
}

// Router wires the HTTP routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestID())

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/documents", s.handleUpload)
		api.POST("/documents/:id/report", s.handleRunReport)
		api.GET("/documents/:id/report", s.handleGetReport)
		api.GET("/documents/:id/report.xlsx", s.handleExportReport)
	}
	return router
}

// requestID tags every request for log correlation.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := uuid.NewString()
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), reqID))
		c.Header("X-Request-ID", reqID)
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.health.HealthCheck(c.Request.Context(), 2*time.Second); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleUpload accepts a document as multipart form field "file" or as the
// raw request body (with a ?filename= hint) and ingests it.
func (s *Server) handleUpload(c *gin.Context) {
	data, hint, err := readUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty upload"})
		return
	}

	doc, err := s.proc.Ingest(c.Request.Context(), normalize.RawUpload{Data: data, Hint: hint})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"documentId": doc.ID.String(),
		"sourceKind": string(doc.SourceKind),
		"textLength": len(doc.Text),
		"hint":       doc.Hint,
	})
}

// handleRunReport runs a workflow over an ingested document. With ?async=1
// the run is queued and 202 returned; otherwise the run happens inline and
// the finished report is returned.
func (s *Server) handleRunReport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	wf := c.DefaultQuery("workflow", "auto")

	if c.Query("async") == "1" || c.Query("async") == "true" {
		err := s.queue.Enqueue(c.Request.Context(), async.Job{
			DocumentID:  id,
			Workflow:    wf,
			SubmittedAt: time.Now().UTC(),
		})
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"documentId": id.String(), "workflow": wf})
		return
	}

	if err := s.proc.RunDocument(c.Request.Context(), id, wf); err != nil {
		s.writeError(c, err)
		return
	}
	report, err := s.proc.Report(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleGetReport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	report, err := s.proc.Report(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleExportReport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	report, err := s.proc.Report(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	raw, err := s.exporter.ReportXLSX(report)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="report-`+id.String()+`.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", raw)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a UUID"})
		return uuid.Nil, false
	}
	return id, true
}

func readUpload(c *gin.Context) ([]byte, string, error) {
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, "", err
		}
		defer func() { _ = f.Close() }()
		data, err := io.ReadAll(f)
		return data, file.Filename, err
	}
	data, err := io.ReadAll(c.Request.Body)
	return data, c.Query("filename"), err
}

// writeError maps pipeline errors onto HTTP statuses, attaching the
// remediation hint when one exists.
func (s *Server) writeError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	if hint := common.RemediationHint(err); hint != "" {
		body["hint"] = hint
	}

	switch {
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, body)
	case errors.Is(err, common.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, common.ErrUnsupportedFormat), errors.Is(err, common.ErrEmptyExtraction):
		c.JSON(http.StatusUnprocessableEntity, body)
	default:
		s.logger.Error("request failed",
			"req_id", common.RequestIDFromContext(c.Request.Context()),
			"error", err)
		c.JSON(http.StatusInternalServerError, body)
	}
}
