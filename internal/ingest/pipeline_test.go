// ABOUTME: Tests for the ingestion pipeline and job queue against an in-memory database
// ABOUTME: Fake extractors and embedders keep tests deterministic and offline
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/secondbrain-labs/cerebro/internal/chunker"
	"github.com/secondbrain-labs/cerebro/internal/extract"
	"github.com/secondbrain-labs/cerebro/internal/models"
	"github.com/secondbrain-labs/cerebro/internal/storage/sqlite"
)

const testDimension = 3

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(_ context.Context, _ *models.Document, _ []byte) (string, error) {
	return f.text, f.err
}

// fakeEmbedder returns a deterministic vector per input position
type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float64, len(texts))
	for i := range texts {
		vectors[i] = []float64{float64(i), 1, 0}
	}
	return vectors, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPipeline(t *testing.T, extractors extract.Registry, embedder Embedder) (*Pipeline, *sqlite.DocumentStore, *sqlite.ChunkStore) {
	t.Helper()
	db, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	docs := sqlite.NewDocumentStore(db)
	chunks := sqlite.NewChunkStore(db, testDimension)
	p := NewPipeline(docs, chunks, extractors, chunker.New(100, 10), embedder, discardLogger())
	return p, docs, chunks
}

func createDoc(t *testing.T, docs *sqlite.DocumentStore, kind models.ContentKind) *models.Document {
	t.Helper()
	doc := &models.Document{Title: "test document", ContentKind: kind}
	if kind == models.ContentKindWeb {
		doc.SourceURL = "https://example.com/page"
	}
	if err := docs.Create(context.Background(), doc); err != nil {
		t.Fatalf("failed to create document: %v", err)
	}
	return doc
}

func TestPipelineProcessSuccess(t *testing.T) {
	text := "First sentence about gardening. Second sentence about tomatoes. " +
		strings.Repeat("More sentences to force multiple chunks. ", 10)
	embedder := &fakeEmbedder{}
	p, docs, chunks := newTestPipeline(t,
		extract.Registry{models.ContentKindDocument: &fakeExtractor{text: text}}, embedder)
	doc := createDoc(t, docs, models.ContentKindDocument)

	if err := p.Process(context.Background(), doc.DocumentID, []byte("payload")); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	got, err := docs.Get(context.Background(), doc.DocumentID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusCompleted {
		t.Errorf("expected completed, got %s", got.Status)
	}
	if got.ErrorMessage != "" {
		t.Errorf("unexpected error message %q", got.ErrorMessage)
	}

	stored, err := chunks.GetByDocument(context.Background(), doc.DocumentID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) < 2 {
		t.Errorf("expected multiple chunks, got %d", len(stored))
	}
	for i, c := range stored {
		if c.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, c.ChunkIndex)
		}
		if len(c.Embedding) != testDimension {
			t.Errorf("chunk %d embedding has dimension %d", i, len(c.Embedding))
		}
	}
	if embedder.calls != 1 {
		t.Errorf("expected one embedding batch call, got %d", embedder.calls)
	}
}

func TestPipelineImageSingleChunk(t *testing.T) {
	caption := "Image: sunset photo\n\nDescription: An orange sky over the bay. " +
		strings.Repeat("A very long description sentence. ", 20)
	p, docs, chunks := newTestPipeline(t,
		extract.Registry{models.ContentKindImage: &fakeExtractor{text: caption}}, &fakeEmbedder{})
	doc := createDoc(t, docs, models.ContentKindImage)

	if err := p.Process(context.Background(), doc.DocumentID, []byte{0xFF}); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	stored, err := chunks.GetByDocument(context.Background(), doc.DocumentID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected exactly one chunk for image, got %d", len(stored))
	}
	if stored[0].ChunkText != caption {
		t.Error("image chunk text was altered")
	}
	if stored[0].ChunkIndex != 0 {
		t.Errorf("image chunk index = %d", stored[0].ChunkIndex)
	}
}

func TestPipelineExtractionFailure(t *testing.T) {
	p, docs, _ := newTestPipeline(t,
		extract.Registry{models.ContentKindWeb: &fakeExtractor{err: errors.New("access forbidden (403): blocked")}},
		&fakeEmbedder{})
	doc := createDoc(t, docs, models.ContentKindWeb)

	err := p.Process(context.Background(), doc.DocumentID, nil)
	if err == nil {
		t.Fatal("expected error")
	}

	got, getErr := docs.Get(context.Background(), doc.DocumentID)
	if getErr != nil {
		t.Fatal(getErr)
	}
	if got.Status != models.StatusFailed {
		t.Errorf("expected failed, got %s", got.Status)
	}
	if !strings.Contains(got.ErrorMessage, "access forbidden") {
		t.Errorf("expected extraction error recorded, got %q", got.ErrorMessage)
	}
}

func TestPipelineEmbeddingFailure(t *testing.T) {
	p, docs, chunks := newTestPipeline(t,
		extract.Registry{models.ContentKindDocument: &fakeExtractor{text: "Some text to index."}},
		&fakeEmbedder{err: errors.New("rate limited")})
	doc := createDoc(t, docs, models.ContentKindDocument)

	if err := p.Process(context.Background(), doc.DocumentID, []byte("x")); err == nil {
		t.Fatal("expected error")
	}

	got, err := docs.Get(context.Background(), doc.DocumentID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusFailed {
		t.Errorf("expected failed, got %s", got.Status)
	}
	if !strings.Contains(got.ErrorMessage, "embedding failed") {
		t.Errorf("unexpected error message %q", got.ErrorMessage)
	}

	count, err := chunks.CountByDocument(context.Background(), doc.DocumentID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected no chunks after failure, got %d", count)
	}
}

func TestPipelineEmptyExtraction(t *testing.T) {
	p, docs, _ := newTestPipeline(t,
		extract.Registry{models.ContentKindDocument: &fakeExtractor{text: "   \n  "}}, &fakeEmbedder{})
	doc := createDoc(t, docs, models.ContentKindDocument)

	if err := p.Process(context.Background(), doc.DocumentID, []byte("x")); err == nil {
		t.Fatal("expected error for whitespace-only extraction")
	}
	got, err := docs.Get(context.Background(), doc.DocumentID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusFailed {
		t.Errorf("expected failed, got %s", got.Status)
	}
}

func TestPipelineUnknownKindExtractor(t *testing.T) {
	p, docs, _ := newTestPipeline(t, extract.Registry{}, &fakeEmbedder{})
	doc := createDoc(t, docs, models.ContentKindAudio)

	err := p.Process(context.Background(), doc.DocumentID, []byte("x"))
	if err == nil {
		t.Fatal("expected error for missing extractor")
	}
	got, getErr := docs.Get(context.Background(), doc.DocumentID)
	if getErr != nil {
		t.Fatal(getErr)
	}
	if got.Status != models.StatusFailed {
		t.Errorf("expected failed, got %s", got.Status)
	}
}

func TestPipelineMissingDocument(t *testing.T) {
	p, _, _ := newTestPipeline(t, extract.Registry{}, &fakeEmbedder{})
	if err := p.Process(context.Background(), 9999, nil); err == nil {
		t.Fatal("expected error for unknown document")
	}
}

func TestQueueProcessesJobs(t *testing.T) {
	p, docs, _ := newTestPipeline(t,
		extract.Registry{models.ContentKindDocument: &fakeExtractor{text: "Short note."}}, &fakeEmbedder{})
	q := NewQueue(p, 2, time.Minute, 30*time.Second, discardLogger())

	const n = 5
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		doc := &models.Document{Title: fmt.Sprintf("doc %d", i), ContentKind: models.ContentKindDocument}
		if err := docs.Create(context.Background(), doc); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, doc.DocumentID)
		if _, err := q.Enqueue(doc.DocumentID, []byte("x")); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := q.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	for _, id := range ids {
		got, err := docs.Get(context.Background(), id)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != models.StatusCompleted {
			t.Errorf("document %d status = %s", id, got.Status)
		}
	}
}

func TestQueueRejectsAfterShutdown(t *testing.T) {
	p, _, _ := newTestPipeline(t, extract.Registry{}, &fakeEmbedder{})
	q := NewQueue(p, 1, time.Minute, 30*time.Second, discardLogger())
	if err := q.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := q.Enqueue(1, nil); err == nil {
		t.Fatal("expected error enqueueing after shutdown")
	}
}
