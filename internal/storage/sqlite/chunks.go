// ABOUTME: Chunk persistence with atomic batch insertion and completion
// ABOUTME: Chunks are insert-only; completion and insertion share one transaction
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/secondbrain-labs/cerebro/internal/models"
)

// ChunkStore handles chunk persistence and candidate retrieval
type ChunkStore struct {
	db        *DB
	dimension int
}

// NewChunkStore creates a ChunkStore validating the given vector dimension
func NewChunkStore(db *DB, dimension int) *ChunkStore {
	return &ChunkStore{db: db, dimension: dimension}
}

// InsertBatchCompleted writes all chunks for a document and flips the
// document to completed in a single transaction: a concurrent status read
// never observes completed with zero or partial chunks. The document must
// currently be processing.
func (s *ChunkStore) InsertBatchCompleted(ctx context.Context, documentID int64, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("refusing to complete document %d with zero chunks", documentID)
	}
	for i, c := range chunks {
		if c.ChunkText == "" {
			return fmt.Errorf("chunk %d has empty text", i)
		}
		if c.ChunkIndex != i {
			return fmt.Errorf("chunk indices must be contiguous from 0: position %d has index %d", i, c.ChunkIndex)
		}
		if len(c.Embedding) != s.dimension {
			return fmt.Errorf("invalid embedding dimension: expected %d, got %d", s.dimension, len(c.Embedding))
		}
	}

	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		current   string
		createdAt time.Time
	)
	err = tx.QueryRowContext(ctx, "SELECT status, created_at FROM documents WHERE document_id = ?", documentID).
		Scan(&current, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("document %d not found", documentID)
		}
		return fmt.Errorf("failed to read document %d: %w", documentID, err)
	}

	currentStatus, err := models.ParseProcessingStatus(current)
	if err != nil {
		return err
	}
	if _, err := currentStatus.Transition(models.StatusCompleted); err != nil {
		return fmt.Errorf("document %d: %w", documentID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (document_id, chunk_text, chunk_index, embedding, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range chunks {
		// created_at inherits document provenance time, not insert time
		if _, err := stmt.ExecContext(ctx, documentID, c.ChunkText, c.ChunkIndex,
			vectorToBlob(c.Embedding), createdAt.UTC()); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", c.ChunkIndex, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE documents SET status = ?, error_message = NULL, updated_at = ? WHERE document_id = ?
	`, string(models.StatusCompleted), time.Now().UTC(), documentID); err != nil {
		return fmt.Errorf("failed to complete document %d: %w", documentID, err)
	}

	return tx.Commit()
}

// GetByDocument returns a document's chunks ordered by chunk index
func (s *ChunkStore) GetByDocument(ctx context.Context, documentID int64) ([]models.Chunk, error) {
	rows, err := s.db.conn.QueryContext(ctx, `
		SELECT chunk_id, document_id, chunk_text, chunk_index, embedding, created_at
		FROM chunks
		WHERE document_id = ?
		ORDER BY chunk_index ASC
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks for document %d: %w", documentID, err)
	}
	defer func() { _ = rows.Close() }()

	var chunks []models.Chunk
	for rows.Next() {
		var (
			c    models.Chunk
			blob []byte
		)
		if err := rows.Scan(&c.ChunkID, &c.DocumentID, &c.ChunkText, &c.ChunkIndex, &blob, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Embedding = blobToVector(blob)
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// CountByDocument returns the number of chunks stored for a document
func (s *ChunkStore) CountByDocument(ctx context.Context, documentID int64) (int, error) {
	var count int
	err := s.db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE document_id = ?", documentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks for document %d: %w", documentID, err)
	}
	return count, nil
}
