// ABOUTME: Candidate retrieval for hybrid search: vector similarity and FTS5 bm25
// ABOUTME: All filters are parameterized predicates, never interpolated SQL
package sqlite

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/secondbrain-labs/cerebro/internal/models"
)

// TimeRange is a half-open interval [Start, End) over chunk creation time
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// SemanticCandidates returns up to topK chunks of completed documents
// ranked by cosine similarity to the query embedding, optionally
// restricted to a time range. Similarity is computed in Go over the
// filtered candidate rows.
func (s *ChunkStore) SemanticCandidates(ctx context.Context, queryVector []float64, timeRange *TimeRange, topK int) ([]models.ScoredChunk, error) {
	if len(queryVector) != s.dimension {
		return nil, fmt.Errorf("invalid query embedding dimension: expected %d, got %d", s.dimension, len(queryVector))
	}

	query := `
		SELECT c.chunk_id, c.document_id, c.chunk_text, c.chunk_index, c.embedding, c.created_at,
		       d.title, d.content_kind
		FROM chunks c
		JOIN documents d ON d.document_id = c.document_id
		WHERE d.status = ?`
	args := []interface{}{string(models.StatusCompleted)}

	if timeRange != nil {
		query += " AND c.created_at >= ? AND c.created_at < ?"
		args = append(args, timeRange.Start.UTC(), timeRange.End.UTC())
	}

	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("semantic candidate query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []models.ScoredChunk
	for rows.Next() {
		var (
			sc   models.ScoredChunk
			blob []byte
			kind string
		)
		if err := rows.Scan(&sc.Chunk.ChunkID, &sc.Chunk.DocumentID, &sc.Chunk.ChunkText,
			&sc.Chunk.ChunkIndex, &blob, &sc.Chunk.CreatedAt, &sc.DocumentTitle, &kind); err != nil {
			return nil, err
		}
		sc.ContentKind = models.ContentKind(kind)
		sc.Chunk.Embedding = blobToVector(blob)
		sc.Score = CosineSimilarity(queryVector, sc.Chunk.Embedding)
		results = append(results, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// LexicalCandidates returns up to topK chunks of completed documents
// ranked by FTS5 bm25 relevance for the query terms, optionally
// restricted to a time range. Scores are raw (positive) bm25 relevance;
// normalization is the fusion stage's concern.
func (s *ChunkStore) LexicalCandidates(ctx context.Context, query string, timeRange *TimeRange, topK int) ([]models.ScoredChunk, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}

	sqlQuery := `
		SELECT c.chunk_id, c.document_id, c.chunk_text, c.chunk_index, c.created_at,
		       d.title, d.content_kind, -bm25(chunks_fts) AS relevance
		FROM chunks_fts f
		JOIN chunks c ON c.chunk_id = f.rowid
		JOIN documents d ON d.document_id = c.document_id
		WHERE chunks_fts MATCH ? AND d.status = ?`
	args := []interface{}{match, string(models.StatusCompleted)}

	if timeRange != nil {
		sqlQuery += " AND c.created_at >= ? AND c.created_at < ?"
		args = append(args, timeRange.Start.UTC(), timeRange.End.UTC())
	}

	sqlQuery += " ORDER BY bm25(chunks_fts) LIMIT ?"
	args = append(args, topK)

	rows, err := s.db.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("lexical candidate query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []models.ScoredChunk
	for rows.Next() {
		var (
			sc   models.ScoredChunk
			kind string
		)
		if err := rows.Scan(&sc.Chunk.ChunkID, &sc.Chunk.DocumentID, &sc.Chunk.ChunkText,
			&sc.Chunk.ChunkIndex, &sc.Chunk.CreatedAt, &sc.DocumentTitle, &kind, &sc.Score); err != nil {
			return nil, err
		}
		sc.ContentKind = models.ContentKind(kind)
		results = append(results, sc)
	}
	return results, rows.Err()
}

// ftsQuery turns free text into a safe FTS5 match expression: word tokens
// are quoted and joined with OR. OR keeps recall high; bm25 still ranks
// multi-term matches above single-term ones.
func ftsQuery(query string) string {
	tokens := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(tokens) == 0 {
		return ""
	}

	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = `"` + tok + `"`
	}
	return strings.Join(quoted, " OR ")
}
