// ABOUTME: Extractor abstraction: each content kind turns a raw payload into plain text
// ABOUTME: The ingestion pipeline stays kind-agnostic past this boundary
package extract

import (
	"context"

	"github.com/secondbrain-labs/cerebro/internal/models"
)

// Extractor produces plain text from a source-specific payload.
// Implementations exist per content kind; errors carry the human-readable
// message that ends up on a failed document.
type Extractor interface {
	Extract(ctx context.Context, doc *models.Document, payload []byte) (string, error)
}

// Registry maps content kinds to their extractors
type Registry map[models.ContentKind]Extractor

// For returns the extractor for a kind, or (nil, false) when unsupported
func (r Registry) For(kind models.ContentKind) (Extractor, bool) {
	e, ok := r[kind]
	return e, ok
}
