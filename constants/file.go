package constants

import "strings"

// SourceKind is the detected shape of an uploaded payload. It decides which
// normalizer branch runs; it is unrelated to the detected DocumentType.
type SourceKind string

const (
	SourcePDF   SourceKind = "PDF"
	SourceEDI   SourceKind = "EDI"
	SourceWeb   SourceKind = "WEB"
	SourcePlain SourceKind = "PLAIN"
)

// extToKind maps normalized file extensions to source kinds. Extensions not
// listed here fall back to content sniffing in the normalizer.
var extToKind = map[string]SourceKind{
	"pdf":  SourcePDF,
	"edi":  SourceEDI,
	"x12":  SourceEDI,
	"html": SourceWeb,
	"htm":  SourceWeb,
	"txt":  SourcePlain,
	"md":   SourcePlain,
	"text": SourcePlain,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToKind resolves a file extension to a SourceKind. The second return
// is false when the extension is unknown and the caller should sniff.
func MapExtToKind(ext string) (SourceKind, bool) {
	kind, ok := extToKind[NormalizeExt(ext)]
	return kind, ok
}
