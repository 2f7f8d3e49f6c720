// ABOUTME: Query event types streamed back to callers during answer generation
// ABOUTME: Fixed emission order: status*, chunks, status/token*, then done or error
package models

// EventType identifies one kind of query stream event
type EventType string

const (
	EventStatus EventType = "status"
	EventChunks EventType = "chunks"
	EventToken  EventType = "token"
	EventDone   EventType = "done"
	EventError  EventType = "error"
)

// ChunkMetadata is the per-chunk payload of a chunks event
type ChunkMetadata struct {
	ChunkID       int64       `json:"chunk_id"`
	DocumentTitle string      `json:"document_title"`
	ContentKind   ContentKind `json:"content_kind"`
	CreatedAt     string      `json:"created_at"`
	Score         float64     `json:"score"`
}

// QueryEvent is one element of the ordered answer event stream.
// Exactly one of the payload fields is meaningful per event type.
type QueryEvent struct {
	Type           EventType       `json:"type"`
	Message        string          `json:"message,omitempty"`
	Chunks         []ChunkMetadata `json:"chunks,omitempty"`
	Content        string          `json:"content,omitempty"`
	ElapsedSeconds float64         `json:"processing_time,omitempty"`
}

// SearchResult is one row of the raw search entry point
type SearchResult struct {
	ChunkID         int64       `json:"chunk_id"`
	ChunkText       string      `json:"chunk_text"`
	DocumentTitle   string      `json:"document_title"`
	ContentKind     ContentKind `json:"content_kind"`
	CreatedAt       string      `json:"created_at"`
	SimilarityScore float64     `json:"similarity_score"`
}
