package normalize

import (
	"bytes"
	"strings"
)

// decodeEDIText decodes an interchange permissively. EDI files arrive in
// mixed legacy encodings; invalid bytes are replaced rather than rejected so
// that segment-level analysis still sees the surrounding structure.
func decodeEDIText(data []byte) (string, error) {
	text := string(bytes.ToValidUTF8(data, []byte("�")))
	// Segment terminators become line breaks so segments read one per line.
	if !strings.Contains(text, "\n") {
		text = strings.ReplaceAll(text, "'", "'\n")
	}
	return normalizeWhitespace(text), nil
}
