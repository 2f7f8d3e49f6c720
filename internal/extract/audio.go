// ABOUTME: Audio extraction via a transcription capability
// ABOUTME: The filename hint carries the container format to the transcriber
package extract

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/secondbrain-labs/cerebro/internal/models"
)

// Transcriber converts audio bytes to text
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filenameHint string) (string, error)
}

// AudioExtractor transcribes audio payloads
type AudioExtractor struct {
	transcriber Transcriber
}

// NewAudioExtractor creates an AudioExtractor
func NewAudioExtractor(transcriber Transcriber) *AudioExtractor {
	return &AudioExtractor{transcriber: transcriber}
}

// Extract transcribes the audio payload to text
func (e *AudioExtractor) Extract(ctx context.Context, doc *models.Document, payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", fmt.Errorf("missing audio payload for document %q", doc.Title)
	}

	hint := filepath.Base(doc.FilePath)
	if hint == "." || hint == "/" {
		hint = ""
	}

	text, err := e.transcriber.Transcribe(ctx, payload, hint)
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	if text == "" {
		return "", fmt.Errorf("transcription produced no text")
	}
	return text, nil
}
