package normalize

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docintel/docintel/constants"
	"github.com/docintel/docintel/internal/common"
)

// RawUpload is an uploaded payload before normalization. Hint is the original
// filename (or URL) and is only used for extension-based kind detection.
type RawUpload struct {
	Data []byte
	Hint string
}

// NormalizedDocument is the single internal representation every downstream
// stage consumes. Text is plain UTF-8 with page breaks collapsed to blank
// lines; no markup or binary structure survives normalization.
type NormalizedDocument struct {
	ID         uuid.UUID
	Text       string
	SourceKind constants.SourceKind
	Hint       string
	CreatedAt  time.Time

	// Web is populated only for SourceWeb inputs.
	Web *WebMetadata
}

// Service turns raw uploads into normalized documents.
type Service struct {
	logger        *slog.Logger
	minTextLength int
}

func NewService(minTextLength int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger:        logger,
		minTextLength: minTextLength,
	}
}

// Normalize detects the payload kind and runs the matching branch.
// It returns common.ErrUnsupportedFormat for kinds it cannot interpret and
// common.ErrEmptyExtraction when the result carries no usable text.
func (s *Service) Normalize(ctx context.Context, upload RawUpload) (*NormalizedDocument, error) {
	start := time.Now()
	kind := DetectKind(upload)

	doc := &NormalizedDocument{
		ID:         uuid.New(),
		SourceKind: kind,
		Hint:       upload.Hint,
		CreatedAt:  time.Now().UTC(),
	}

	var err error
	switch kind {
	case constants.SourcePDF:
		doc.Text, err = extractPDFText(ctx, upload.Data)
	case constants.SourceEDI:
		doc.Text, err = decodeEDIText(upload.Data)
	case constants.SourceWeb:
		doc.Text, doc.Web, err = stripWebPage(upload.Data)
	case constants.SourcePlain:
		doc.Text = normalizeWhitespace(string(bytes.ToValidUTF8(upload.Data, []byte("�"))))
	default:
		err = common.NewAppError("NORMALIZE_ERROR", "unrecognized payload", common.ErrUnsupportedFormat)
	}
	if err != nil {
		s.logger.Error("normalize.failed",
			"doc_id", doc.ID.String(),
			"kind", string(kind),
			"error", err)
		return nil, err
	}

	if len(strings.TrimSpace(doc.Text)) < s.minTextLength {
		s.logger.Warn("normalize.empty",
			"doc_id", doc.ID.String(),
			"kind", string(kind),
			"text_len", len(doc.Text))
		return nil, common.NewAppError("NORMALIZE_ERROR", "extracted text below minimum length", common.ErrEmptyExtraction)
	}

	s.logger.Info("normalize.done",
		"doc_id", doc.ID.String(),
		"kind", string(kind),
		"text_len", len(doc.Text),
		"elapsed_ms", time.Since(start).Milliseconds())
	return doc, nil
}

// DetectKind resolves the source kind from the filename hint first and falls
// back to content sniffing for hintless or unknown-extension uploads.
func DetectKind(upload RawUpload) constants.SourceKind {
	if idx := strings.LastIndex(upload.Hint, "."); idx >= 0 {
		if kind, ok := constants.MapExtToKind(upload.Hint[idx+1:]); ok {
			return kind
		}
	}
	return sniffKind(upload.Data)
}

func sniffKind(data []byte) constants.SourceKind {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	trimmed := bytes.TrimLeft(head, " \t\r\n")
	switch {
	case bytes.HasPrefix(trimmed, []byte("%PDF-")):
		return constants.SourcePDF
	case bytes.HasPrefix(trimmed, []byte("UNA")), bytes.HasPrefix(trimmed, []byte("UNB+")),
		bytes.HasPrefix(trimmed, []byte("ISA*")), bytes.HasPrefix(trimmed, []byte("ISA+")):
		return constants.SourceEDI
	case bytes.HasPrefix(bytes.ToLower(trimmed), []byte("<!doctype html")),
		bytes.HasPrefix(bytes.ToLower(trimmed), []byte("<html")):
		return constants.SourceWeb
	default:
		return constants.SourcePlain
	}
}

// normalizeWhitespace trims trailing space per line and collapses runs of
// blank lines so chunk boundaries stay stable across sources.
func normalizeWhitespace(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	out := strings.Join(lines, "\n")
	for strings.Contains(out, "\n\n\n") {
		out = strings.ReplaceAll(out, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(out)
}
