// ABOUTME: Text extraction for uploaded files: PDF page text and verbatim markdown
// ABOUTME: File type is decided by extension; unsupported types are rejected
package extract

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/secondbrain-labs/cerebro/internal/models"
)

// DocumentExtractor extracts text from PDF and markdown payloads
type DocumentExtractor struct{}

// NewDocumentExtractor creates a DocumentExtractor
func NewDocumentExtractor() *DocumentExtractor {
	return &DocumentExtractor{}
}

// Extract produces plain text from the payload based on file extension
func (e *DocumentExtractor) Extract(ctx context.Context, doc *models.Document, payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", fmt.Errorf("missing file payload for document %q", doc.Title)
	}

	ext := strings.ToLower(filepath.Ext(doc.FilePath))
	switch ext {
	case ".pdf":
		return extractPDF(payload)
	case ".md", ".markdown":
		// Markdown is indexed verbatim as UTF-8 text
		return string(payload), nil
	}
	return "", fmt.Errorf("unsupported file type: %s", ext)
}

// extractPDF concatenates per-page text with newline separators
func extractPDF(payload []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return "", fmt.Errorf("unreadable PDF: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to extract text from PDF page %d: %w", i, err)
		}
		if text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	}

	result := strings.TrimSpace(sb.String())
	if result == "" {
		return "", fmt.Errorf("PDF contains no extractable text")
	}
	return result, nil
}
