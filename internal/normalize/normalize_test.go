package normalize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docintel/docintel/constants"
	"github.com/docintel/docintel/internal/common"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name   string
		upload RawUpload
		want   constants.SourceKind
	}{
		{"pdf extension", RawUpload{Hint: "invoice.PDF"}, constants.SourcePDF},
		{"edi extension", RawUpload{Hint: "manifest.edi"}, constants.SourceEDI},
		{"x12 extension", RawUpload{Hint: "orders.x12"}, constants.SourceEDI},
		{"html extension", RawUpload{Hint: "page.html"}, constants.SourceWeb},
		{"txt extension", RawUpload{Hint: "notes.txt"}, constants.SourcePlain},
		{"pdf magic no hint", RawUpload{Data: []byte("%PDF-1.7 rest")}, constants.SourcePDF},
		{"edifact sniff", RawUpload{Data: []byte("UNB+UNOA:2+SENDER+RECEIVER'")}, constants.SourceEDI},
		{"x12 sniff", RawUpload{Data: []byte("ISA*00*          *00*")}, constants.SourceEDI},
		{"html sniff", RawUpload{Data: []byte("  <!DOCTYPE html><html>")}, constants.SourceWeb},
		{"fallback plain", RawUpload{Hint: "data.bin", Data: []byte("just words")}, constants.SourcePlain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectKind(tt.upload))
		})
	}
}

func TestNormalizePlainText(t *testing.T) {
	svc := NewService(20, nil)
	doc, err := svc.Normalize(context.Background(), RawUpload{
		Hint: "report.txt",
		Data: []byte("Quarterly Report\r\n\r\n\r\n\r\nRevenue grew 12% over the prior quarter.   \n"),
	})
	require.NoError(t, err)
	assert.Equal(t, constants.SourcePlain, doc.SourceKind)
	assert.Equal(t, "Quarterly Report\n\nRevenue grew 12% over the prior quarter.", doc.Text)
	assert.NotEmpty(t, doc.ID)
	assert.Nil(t, doc.Web)
}

func TestNormalizeEmptyExtraction(t *testing.T) {
	svc := NewService(20, nil)
	_, err := svc.Normalize(context.Background(), RawUpload{
		Hint: "blank.txt",
		Data: []byte("   \n  "),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrEmptyExtraction))
}

func TestNormalizeEDISegmentsPerLine(t *testing.T) {
	svc := NewService(5, nil)
	doc, err := svc.Normalize(context.Background(), RawUpload{
		Hint: "baplie.edi",
		Data: []byte("UNB+UNOA:2+SENDER+RECEIVER'UNH+1+BAPLIE:D:95B:UN'BGM+945+DOC1'"),
	})
	require.NoError(t, err)
	assert.Equal(t, constants.SourceEDI, doc.SourceKind)
	lines := strings.Split(doc.Text, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "UNB+UNOA:2+SENDER+RECEIVER'", lines[0])
	assert.Equal(t, "BGM+945+DOC1'", lines[2])
}

func TestNormalizeWebPopulatesMetadata(t *testing.T) {
	svc := NewService(10, nil)
	doc, err := svc.Normalize(context.Background(), RawUpload{
		Hint: "index.html",
		Data: []byte(samplePage),
	})
	require.NoError(t, err)
	assert.Equal(t, constants.SourceWeb, doc.SourceKind)
	require.NotNil(t, doc.Web)
	assert.Equal(t, "Acme Widgets & Co", doc.Web.Title)
}

func TestNormalizeWhitespace(t *testing.T) {
	in := "a  \r\nb\t\n\n\n\nc\n"
	assert.Equal(t, "a\nb\n\nc", normalizeWhitespace(in))
}
