// ABOUTME: Ingestion pipeline driving a document from pending to completed or failed
// ABOUTME: Extract, chunk, embed, and atomically persist; any error marks the document failed
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/secondbrain-labs/cerebro/internal/chunker"
	"github.com/secondbrain-labs/cerebro/internal/extract"
	"github.com/secondbrain-labs/cerebro/internal/models"
	"github.com/secondbrain-labs/cerebro/internal/storage/sqlite"
)

// Embedder produces embedding vectors for a batch of texts, preserving order
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// Pipeline processes one document end to end. It is safe for concurrent
// use by multiple queue workers.
type Pipeline struct {
	docs       *sqlite.DocumentStore
	chunks     *sqlite.ChunkStore
	extractors extract.Registry
	chunker    *chunker.Chunker
	embedder   Embedder
	logger     *slog.Logger
}

// NewPipeline wires the ingestion stages together
func NewPipeline(docs *sqlite.DocumentStore, chunks *sqlite.ChunkStore, extractors extract.Registry, ch *chunker.Chunker, embedder Embedder, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		docs:       docs,
		chunks:     chunks,
		extractors: extractors,
		chunker:    ch,
		embedder:   embedder,
		logger:     logger,
	}
}

// Process runs the full pipeline for a document. The document moves to
// processing first, then either completes atomically with its chunks or
// is marked failed with the error message. The returned error mirrors
// what was recorded on the document.
func (p *Pipeline) Process(ctx context.Context, documentID int64, payload []byte) error {
	doc, err := p.docs.Get(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to load document %d: %w", documentID, err)
	}
	if doc == nil {
		return fmt.Errorf("document %d not found", documentID)
	}

	if err := p.docs.TransitionStatus(ctx, documentID, models.StatusProcessing, ""); err != nil {
		return fmt.Errorf("failed to start processing document %d: %w", documentID, err)
	}

	p.logger.Info("processing document",
		"document_id", documentID, "kind", doc.ContentKind, "title", doc.Title)

	text, err := p.extractText(ctx, doc, payload)
	if err != nil {
		return p.fail(ctx, documentID, err)
	}

	texts := p.split(doc.ContentKind, text)
	if len(texts) == 0 {
		return p.fail(ctx, documentID, fmt.Errorf("document contains no indexable text"))
	}

	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return p.fail(ctx, documentID, fmt.Errorf("embedding failed: %w", err))
	}
	if len(vectors) != len(texts) {
		return p.fail(ctx, documentID, fmt.Errorf("embedding returned %d vectors for %d chunks", len(vectors), len(texts)))
	}

	chunks := make([]models.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = models.Chunk{
			DocumentID: documentID,
			ChunkText:  t,
			ChunkIndex: i,
			Embedding:  vectors[i],
		}
	}

	if err := p.chunks.InsertBatchCompleted(ctx, documentID, chunks); err != nil {
		return p.fail(ctx, documentID, fmt.Errorf("failed to store chunks: %w", err))
	}

	p.logger.Info("document completed", "document_id", documentID, "chunks", len(chunks))
	return nil
}

func (p *Pipeline) extractText(ctx context.Context, doc *models.Document, payload []byte) (string, error) {
	extractor, ok := p.extractors.For(doc.ContentKind)
	if !ok {
		return "", fmt.Errorf("no extractor for content kind %q", doc.ContentKind)
	}
	text, err := extractor.Extract(ctx, doc, payload)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("extraction produced no text")
	}
	return text, nil
}

// split turns extracted text into chunk texts. Images are a single chunk:
// a caption is one coherent description and splitting it would scatter
// the only context the image has.
func (p *Pipeline) split(kind models.ContentKind, text string) []string {
	if kind == models.ContentKindImage {
		return []string{text}
	}
	pieces := p.chunker.Chunk(text)
	texts := make([]string, len(pieces))
	for i, piece := range pieces {
		texts[i] = piece.Text
	}
	return texts
}

// fail records the error on the document and returns it. If the status
// update itself fails, both errors are reported.
func (p *Pipeline) fail(ctx context.Context, documentID int64, cause error) error {
	p.logger.Error("document processing failed", "document_id", documentID, "error", cause)
	if err := p.docs.TransitionStatus(ctx, documentID, models.StatusFailed, cause.Error()); err != nil {
		return fmt.Errorf("processing failed (%v) and status update failed: %w", cause, err)
	}
	return cause
}
