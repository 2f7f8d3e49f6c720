// ABOUTME: Tests for atomic chunk batch insertion and cascade deletion
// ABOUTME: Verifies completed-implies-chunks and insert-only invariants

package sqlite

import (
	"context"
	"testing"

	"github.com/secondbrain-labs/cerebro/internal/models"
)

const testDimension = 3

func makeChunks(n int) []models.Chunk {
	chunks := make([]models.Chunk, n)
	for i := range chunks {
		chunks[i] = models.Chunk{
			ChunkText:  "chunk text number " + string(rune('a'+i)),
			ChunkIndex: i,
			Embedding:  []float64{float64(i), 1, 0},
		}
	}
	return chunks
}

func processingDocument(t *testing.T, docs *DocumentStore, kind models.ContentKind) *models.Document {
	t.Helper()
	doc := createTestDocument(t, docs, kind)
	if err := docs.TransitionStatus(context.Background(), doc.DocumentID, models.StatusProcessing, ""); err != nil {
		t.Fatalf("TransitionStatus() error = %v", err)
	}
	return doc
}

func TestChunkStore_InsertBatchCompleted(t *testing.T) {
	db := newTestDB(t)
	docs := NewDocumentStore(db)
	chunks := NewChunkStore(db, testDimension)
	ctx := context.Background()

	doc := processingDocument(t, docs, models.ContentKindDocument)

	if err := chunks.InsertBatchCompleted(ctx, doc.DocumentID, makeChunks(3)); err != nil {
		t.Fatalf("InsertBatchCompleted() error = %v", err)
	}

	got, _ := docs.Get(ctx, doc.DocumentID)
	if got.Status != models.StatusCompleted {
		t.Errorf("Status = %s, want completed", got.Status)
	}

	stored, err := chunks.GetByDocument(ctx, doc.DocumentID)
	if err != nil {
		t.Fatalf("GetByDocument() error = %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("Stored %d chunks, want 3", len(stored))
	}
	for i, c := range stored {
		if c.ChunkIndex != i {
			t.Errorf("Chunk %d has index %d", i, c.ChunkIndex)
		}
		if len(c.Embedding) != testDimension {
			t.Errorf("Chunk %d embedding dimension = %d", i, len(c.Embedding))
		}
		if !c.CreatedAt.Equal(stored[0].CreatedAt) {
			t.Error("Chunks of one document must share created_at")
		}
	}

	// Chunk created_at inherits document provenance time
	if !stored[0].CreatedAt.Equal(got.CreatedAt) {
		t.Errorf("Chunk created_at = %v, want document created_at %v", stored[0].CreatedAt, got.CreatedAt)
	}
}

func TestChunkStore_RefusesZeroChunks(t *testing.T) {
	db := newTestDB(t)
	docs := NewDocumentStore(db)
	chunks := NewChunkStore(db, testDimension)

	doc := processingDocument(t, docs, models.ContentKindWeb)

	if err := chunks.InsertBatchCompleted(context.Background(), doc.DocumentID, nil); err == nil {
		t.Error("Expected error completing with zero chunks")
	}

	got, _ := docs.Get(context.Background(), doc.DocumentID)
	if got.Status != models.StatusProcessing {
		t.Errorf("Status = %s, want processing untouched", got.Status)
	}
}

func TestChunkStore_ValidatesBatch(t *testing.T) {
	db := newTestDB(t)
	docs := NewDocumentStore(db)
	store := NewChunkStore(db, testDimension)
	ctx := context.Background()

	doc := processingDocument(t, docs, models.ContentKindDocument)

	t.Run("non-contiguous indices", func(t *testing.T) {
		bad := makeChunks(2)
		bad[1].ChunkIndex = 5
		if err := store.InsertBatchCompleted(ctx, doc.DocumentID, bad); err == nil {
			t.Error("Expected error for gap in chunk indices")
		}
	})

	t.Run("wrong dimension", func(t *testing.T) {
		bad := makeChunks(1)
		bad[0].Embedding = []float64{1, 2}
		if err := store.InsertBatchCompleted(ctx, doc.DocumentID, bad); err == nil {
			t.Error("Expected error for wrong embedding dimension")
		}
	})

	t.Run("empty text", func(t *testing.T) {
		bad := makeChunks(1)
		bad[0].ChunkText = ""
		if err := store.InsertBatchCompleted(ctx, doc.DocumentID, bad); err == nil {
			t.Error("Expected error for empty chunk text")
		}
	})
}

func TestChunkStore_RequiresProcessingStatus(t *testing.T) {
	db := newTestDB(t)
	docs := NewDocumentStore(db)
	store := NewChunkStore(db, testDimension)
	ctx := context.Background()

	// still pending
	doc := createTestDocument(t, docs, models.ContentKindDocument)
	if err := store.InsertBatchCompleted(ctx, doc.DocumentID, makeChunks(1)); err == nil {
		t.Error("Expected error inserting chunks for pending document")
	}

	// already completed: no further chunks may land
	doc2 := processingDocument(t, docs, models.ContentKindDocument)
	if err := store.InsertBatchCompleted(ctx, doc2.DocumentID, makeChunks(1)); err != nil {
		t.Fatalf("InsertBatchCompleted() error = %v", err)
	}
	if err := store.InsertBatchCompleted(ctx, doc2.DocumentID, makeChunks(1)); err == nil {
		t.Error("Expected error inserting chunks for completed document")
	}
	count, _ := store.CountByDocument(ctx, doc2.DocumentID)
	if count != 1 {
		t.Errorf("Chunk count = %d, want 1 after rejected second batch", count)
	}
}

func TestChunkStore_CascadeDelete(t *testing.T) {
	db := newTestDB(t)
	docs := NewDocumentStore(db)
	store := NewChunkStore(db, testDimension)
	ctx := context.Background()

	doc := processingDocument(t, docs, models.ContentKindDocument)
	if err := store.InsertBatchCompleted(ctx, doc.DocumentID, makeChunks(2)); err != nil {
		t.Fatalf("InsertBatchCompleted() error = %v", err)
	}

	if err := docs.Delete(ctx, doc.DocumentID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	count, err := store.CountByDocument(ctx, doc.DocumentID)
	if err != nil {
		t.Fatalf("CountByDocument() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Chunk count after cascade delete = %d, want 0", count)
	}

	// The lexical index must not return ghost rows
	results, err := store.LexicalCandidates(ctx, "chunk text", nil, 10)
	if err != nil {
		t.Fatalf("LexicalCandidates() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Lexical index returned %d rows after cascade delete, want 0", len(results))
	}
}
