package normalize

import (
	"bytes"
	"html"
	"regexp"
	"strings"
)

// WebMetadata is the structural side-channel captured while stripping markup.
// It feeds the site-structure scoring in website reports without polluting
// the normalized text.
type WebMetadata struct {
	Title           string   `json:"title"`
	MetaDescription string   `json:"metaDescription"`
	MetaKeywords    string   `json:"metaKeywords"`
	H1              []string `json:"h1"`
	H2              []string `json:"h2"`
	H3              []string `json:"h3"`
	Links           []string `json:"links"`
	Images          []string `json:"images"`
}

const (
	maxCapturedLinks  = 50
	maxCapturedImages = 20
)

var (
	scriptTag    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag     = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag  = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag      = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag       = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElems   = regexp.MustCompile(`(?i)</(p|div|section|article|li|tr|h[1-6]|blockquote|pre|table)>`)
	brTags       = regexp.MustCompile(`(?i)<br\s*/?>`)
	allTags      = regexp.MustCompile(`<[^>]+>`)
	multiSpaces  = regexp.MustCompile(`[ \t]+`)

	titleTag   = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	metaDesc   = regexp.MustCompile(`(?is)<meta[^>]+name=["']description["'][^>]*content=["']([^"']*)["']`)
	metaDescR  = regexp.MustCompile(`(?is)<meta[^>]+content=["']([^"']*)["'][^>]*name=["']description["']`)
	metaKeys   = regexp.MustCompile(`(?is)<meta[^>]+name=["']keywords["'][^>]*content=["']([^"']*)["']`)
	headingTag = regexp.MustCompile(`(?is)<h([1-3])[^>]*>(.*?)</h[1-3]>`)
	anchorHref = regexp.MustCompile(`(?is)<a[^>]+href=["']([^"'#][^"']*)["']`)
	imgSrc     = regexp.MustCompile(`(?is)<img[^>]+src=["']([^"']+)["']`)
)

// stripWebPage converts an HTML payload to plain text and extracts the
// structural metadata in one pass over the raw markup.
func stripWebPage(data []byte) (string, *WebMetadata, error) {
	raw := string(bytes.ToValidUTF8(data, []byte("�")))
	meta := extractWebMetadata(raw)
	return stripHTML(raw), meta, nil
}

func stripHTML(raw string) string {
	text := scriptTag.ReplaceAllString(raw, " ")
	text = styleTag.ReplaceAllString(text, " ")
	text = noscriptTag.ReplaceAllString(text, " ")
	text = svgTag.ReplaceAllString(text, " ")
	text = headTag.ReplaceAllString(text, " ")
	text = htmlComments.ReplaceAllString(text, " ")
	text = blockElems.ReplaceAllString(text, "\n")
	text = brTags.ReplaceAllString(text, "\n")
	text = allTags.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	text = multiSpaces.ReplaceAllString(text, " ")
	return normalizeWhitespace(text)
}

func extractWebMetadata(raw string) *WebMetadata {
	meta := &WebMetadata{}

	if m := titleTag.FindStringSubmatch(raw); m != nil {
		meta.Title = cleanInline(m[1])
	}
	if m := metaDesc.FindStringSubmatch(raw); m != nil {
		meta.MetaDescription = cleanInline(m[1])
	} else if m := metaDescR.FindStringSubmatch(raw); m != nil {
		meta.MetaDescription = cleanInline(m[1])
	}
	if m := metaKeys.FindStringSubmatch(raw); m != nil {
		meta.MetaKeywords = cleanInline(m[1])
	}

	for _, m := range headingTag.FindAllStringSubmatch(raw, -1) {
		text := cleanInline(m[2])
		if text == "" {
			continue
		}
		switch m[1] {
		case "1":
			meta.H1 = append(meta.H1, text)
		case "2":
			meta.H2 = append(meta.H2, text)
		case "3":
			meta.H3 = append(meta.H3, text)
		}
	}

	for _, m := range anchorHref.FindAllStringSubmatch(raw, -1) {
		if len(meta.Links) >= maxCapturedLinks {
			break
		}
		meta.Links = append(meta.Links, strings.TrimSpace(m[1]))
	}
	for _, m := range imgSrc.FindAllStringSubmatch(raw, -1) {
		if len(meta.Images) >= maxCapturedImages {
			break
		}
		meta.Images = append(meta.Images, strings.TrimSpace(m[1]))
	}

	return meta
}

// cleanInline strips nested tags and entities from inline captured markup.
func cleanInline(s string) string {
	s = allTags.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(multiSpaces.ReplaceAllString(s, " "))
}
