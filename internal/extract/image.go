// ABOUTME: Image content extraction via vision-model captioning
// ABOUTME: Produces a single searchable text block combining title and caption
package extract

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/secondbrain-labs/cerebro/internal/models"
)

// Captioner generates a text description of an image
type Captioner interface {
	Caption(ctx context.Context, image []byte, mimeType string) (string, error)
}

// ImageExtractor captions an image so it becomes searchable text.
// An image yields exactly one chunk downstream, so the extracted text
// is kept as a single block.
type ImageExtractor struct {
	captioner Captioner
}

func NewImageExtractor(captioner Captioner) *ImageExtractor {
	return &ImageExtractor{captioner: captioner}
}

func (e *ImageExtractor) Extract(ctx context.Context, doc *models.Document, payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", fmt.Errorf("missing image payload for document %q", doc.Title)
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(doc.FilePath)))
	caption, err := e.captioner.Caption(ctx, payload, mimeType)
	if err != nil {
		return "", fmt.Errorf("image captioning failed: %w", err)
	}
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return "", fmt.Errorf("captioning produced no description for %q", doc.Title)
	}

	return fmt.Sprintf("Image: %s\n\nDescription: %s", doc.Title, caption), nil
}
