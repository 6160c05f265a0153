package normalize

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"

	"github.com/docintel/docintel/internal/common"
)

var licenseOnce sync.Once

func initPDFLicense() {
	licenseOnce.Do(func() {
		if key := os.Getenv("UNIDOC_LICENSE_API_KEY"); key != "" {
			_ = license.SetMeteredKey(key)
		}
	})
}

// extractPDFText pulls the text layer out of every page, joining pages with
// blank lines. Image-only pages contribute nothing; the caller decides whether
// the remainder is enough.
func extractPDFText(ctx context.Context, data []byte) (string, error) {
	initPDFLicense()

	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", common.NewAppError("PDF_ERROR", "failed to open PDF", common.ErrUnsupportedFormat)
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return "", common.NewAppError("PDF_ERROR", "failed to read page count", err)
	}

	var pages []string
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page, err := reader.GetPage(i)
		if err != nil {
			return "", common.NewAppError("PDF_ERROR", fmt.Sprintf("failed to load page %d", i), err)
		}
		ex, err := extractor.New(page)
		if err != nil {
			return "", common.NewAppError("PDF_ERROR", fmt.Sprintf("failed to build extractor for page %d", i), err)
		}
		text, err := ex.ExtractText()
		if err != nil {
			return "", common.NewAppError("PDF_ERROR", fmt.Sprintf("failed to extract text from page %d", i), err)
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			pages = append(pages, trimmed)
		}
	}

	return normalizeWhitespace(strings.Join(pages, "\n\n")), nil
}
