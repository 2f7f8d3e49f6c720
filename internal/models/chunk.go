// ABOUTME: Chunk represents one indexed passage with its embedding vector
// ABOUTME: Chunks belong to exactly one document and are never updated
package models

import "time"

// Chunk is a searchable passage of an ingested document
type Chunk struct {
	ChunkID    int64     `json:"chunk_id"`
	DocumentID int64     `json:"document_id"`
	ChunkText  string    `json:"chunk_text"`
	ChunkIndex int       `json:"chunk_index"`
	Embedding  []float64 `json:"-"`
	// CreatedAt is inherited from the owning document: temporal filtering
	// reflects content provenance time, not indexing time.
	CreatedAt time.Time `json:"created_at"`
}

// ScoredChunk pairs a chunk with a retrieval score. Document metadata is
// denormalized so result rendering never needs a second lookup.
type ScoredChunk struct {
	Chunk         Chunk       `json:"chunk"`
	DocumentTitle string      `json:"document_title"`
	ContentKind   ContentKind `json:"content_kind"`
	Score         float64     `json:"score"`
}
