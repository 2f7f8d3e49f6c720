// ABOUTME: Document persistence with state-machine-enforcing status updates
// ABOUTME: Status changes go through a transaction that rejects illegal transitions
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/secondbrain-labs/cerebro/internal/models"
)

// DocumentStore handles document persistence
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Create inserts a new document in pending status. The server assigns
// document_id and created_at; the caller's values for both are ignored.
func (s *DocumentStore) Create(ctx context.Context, doc *models.Document) error {
	doc.Status = models.StatusPending
	doc.CreatedAt = time.Now().UTC()
	doc.ErrorMessage = ""

	if err := doc.Validate(); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}

	res, err := s.db.conn.ExecContext(ctx, `
		INSERT INTO documents (title, content_kind, source_url, file_path, file_size, created_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, doc.Title, string(doc.ContentKind), nullString(doc.SourceURL), nullString(doc.FilePath),
		nullInt64(doc.FileSize), doc.CreatedAt, string(doc.Status))
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read document id: %w", err)
	}
	doc.DocumentID = id

	return nil
}

// Get retrieves a document by id. Returns (nil, nil) when not found.
func (s *DocumentStore) Get(ctx context.Context, id int64) (*models.Document, error) {
	row := s.db.conn.QueryRowContext(ctx, `
		SELECT document_id, title, content_kind, source_url, file_path, file_size,
		       created_at, updated_at, status, error_message
		FROM documents
		WHERE document_id = ?
	`, id)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %d: %w", id, err)
	}
	return doc, nil
}

// List returns all documents, newest first
func (s *DocumentStore) List(ctx context.Context) ([]models.Document, error) {
	rows, err := s.db.conn.QueryContext(ctx, `
		SELECT document_id, title, content_kind, source_url, file_path, file_size,
		       created_at, updated_at, status, error_message
		FROM documents
		ORDER BY created_at DESC, document_id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// Delete removes a document and all its chunks. Chunks are deleted
// explicitly (not left to the FK cascade) so the FTS delete trigger is
// guaranteed to fire and the lexical index stays consistent.
func (s *DocumentStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete chunks for document %d: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE document_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete document %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("document %d not found", id)
	}

	return tx.Commit()
}

// TransitionStatus moves a document through the processing state machine,
// validating the transition against the current persisted status inside a
// transaction. An error message may only accompany the failed status.
func (s *DocumentStore) TransitionStatus(ctx context.Context, id int64, next models.ProcessingStatus, errorMessage string) error {
	if errorMessage != "" && next != models.StatusFailed {
		return fmt.Errorf("error message requires failed status, got %s", next)
	}

	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	if err := tx.QueryRowContext(ctx, "SELECT status FROM documents WHERE document_id = ?", id).Scan(&current); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("document %d not found", id)
		}
		return fmt.Errorf("failed to read status for document %d: %w", id, err)
	}

	currentStatus, err := models.ParseProcessingStatus(current)
	if err != nil {
		return err
	}
	if _, err := currentStatus.Transition(next); err != nil {
		return fmt.Errorf("document %d: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE documents SET status = ?, error_message = ?, updated_at = ? WHERE document_id = ?
	`, string(next), nullString(errorMessage), time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to update status for document %d: %w", id, err)
	}

	return tx.Commit()
}

// scanner abstracts sql.Row and sql.Rows for shared scanning
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row scanner) (*models.Document, error) {
	var (
		doc       models.Document
		kind      string
		status    string
		sourceURL sql.NullString
		filePath  sql.NullString
		fileSize  sql.NullInt64
		updatedAt sql.NullTime
		errMsg    sql.NullString
	)

	err := row.Scan(&doc.DocumentID, &doc.Title, &kind, &sourceURL, &filePath, &fileSize,
		&doc.CreatedAt, &updatedAt, &status, &errMsg)
	if err != nil {
		return nil, err
	}

	doc.ContentKind = models.ContentKind(kind)
	doc.Status = models.ProcessingStatus(status)
	if sourceURL.Valid {
		doc.SourceURL = sourceURL.String
	}
	if filePath.Valid {
		doc.FilePath = filePath.String
	}
	if fileSize.Valid {
		doc.FileSize = fileSize.Int64
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		doc.UpdatedAt = &t
	}
	if errMsg.Valid {
		doc.ErrorMessage = errMsg.String
	}

	return &doc, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullInt64(i int64) interface{} {
	if i == 0 {
		return nil
	}
	return i
}
