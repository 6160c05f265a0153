package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/docintel/docintel/constants"
	"github.com/docintel/docintel/internal/common"
	"github.com/docintel/docintel/internal/normalize"
	"github.com/docintel/docintel/internal/workflow"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id          TEXT PRIMARY KEY,
	hint        TEXT NOT NULL,
	source_kind TEXT NOT NULL,
	body        TEXT NOT NULL,
	metadata    TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reports (
	document_id TEXT PRIMARY KEY,
	workflow    TEXT NOT NULL,
	state       TEXT NOT NULL,
	payload     TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
`

// Store persists documents and their reports in a local SQLite file.
// Reports are stored as JSON; a re-run of the same document replaces its
// report (last writer wins, same as the in-memory index arena).
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("opening store", "path", path)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite writes are single-threaded; one connection avoids lock errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("failed to close store", "error", err)
		return
	}
	s.logger.Info("store closed")
}

// HealthCheck pings the database to catch file problems early.
func (s *Store) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.db.PingContext(ctx)
}

func (s *Store) SaveDocument(ctx context.Context, doc *normalize.NormalizedDocument) error {
	// Web metadata rides along as JSON so website reports keep their
	// structure section after a reload from the store.
	metadata := ""
	if doc.Web != nil {
		raw, err := json.Marshal(doc.Web)
		if err != nil {
			return fmt.Errorf("encode document metadata: %w", err)
		}
		metadata = string(raw)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, hint, source_kind, body, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET hint=excluded.hint, source_kind=excluded.source_kind,
			body=excluded.body, metadata=excluded.metadata, created_at=excluded.created_at`,
		doc.ID.String(), doc.Hint, string(doc.SourceKind), doc.Text, metadata, doc.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save document %s: %w", doc.ID, err)
	}
	return nil
}

func (s *Store) GetDocument(ctx context.Context, id uuid.UUID) (*normalize.NormalizedDocument, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT hint, source_kind, body, metadata, created_at FROM documents WHERE id = ?`, id.String())

	var hint, kind, body, metadata, createdAt string
	if err := row.Scan(&hint, &kind, &body, &metadata, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewAppError("STORE_ERROR", "document "+id.String(), common.ErrNotFound)
		}
		return nil, fmt.Errorf("load document %s: %w", id, err)
	}

	ts, _ := time.Parse(time.RFC3339Nano, createdAt)
	doc := &normalize.NormalizedDocument{
		ID:         id,
		Hint:       hint,
		SourceKind: constants.SourceKind(kind),
		Text:       body,
		CreatedAt:  ts,
	}
	if metadata != "" {
		doc.Web = &normalize.WebMetadata{}
		if err := json.Unmarshal([]byte(metadata), doc.Web); err != nil {
			return nil, fmt.Errorf("decode document metadata %s: %w", id, err)
		}
	}
	return doc, nil
}

func (s *Store) SaveReport(ctx context.Context, report *workflow.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (document_id, workflow, state, payload, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(document_id) DO UPDATE SET workflow=excluded.workflow,
			state=excluded.state, payload=excluded.payload, created_at=excluded.created_at`,
		report.DocumentID.String(), report.Workflow, string(report.State),
		string(payload), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save report %s: %w", report.DocumentID, err)
	}
	return nil
}

func (s *Store) GetReport(ctx context.Context, documentID uuid.UUID) (*workflow.Report, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT payload FROM reports WHERE document_id = ?`, documentID.String())

	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewAppError("STORE_ERROR", "report for "+documentID.String(), common.ErrNotFound)
		}
		return nil, fmt.Errorf("load report %s: %w", documentID, err)
	}

	var report workflow.Report
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", documentID, err)
	}
	return &report, nil
}
