// ABOUTME: Document represents one ingested item (audio, document, web, image)
// ABOUTME: Carries the processing status state machine for async ingestion
package models

import (
	"fmt"
	"time"
)

// ContentKind identifies the source type of an ingested document
type ContentKind string

const (
	ContentKindAudio    ContentKind = "audio"
	ContentKindDocument ContentKind = "document"
	ContentKindWeb      ContentKind = "web"
	ContentKindImage    ContentKind = "image"
)

// ParseContentKind validates and converts a string to a ContentKind
func ParseContentKind(s string) (ContentKind, error) {
	switch ContentKind(s) {
	case ContentKindAudio, ContentKindDocument, ContentKindWeb, ContentKindImage:
		return ContentKind(s), nil
	}
	return "", fmt.Errorf("unknown content kind: %q", s)
}

// ProcessingStatus tracks a document through the ingestion state machine
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// ParseProcessingStatus validates and converts a string to a ProcessingStatus
func ParseProcessingStatus(s string) (ProcessingStatus, error) {
	switch ProcessingStatus(s) {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return ProcessingStatus(s), nil
	}
	return "", fmt.Errorf("unknown processing status: %q", s)
}

// IsTerminal reports whether no further transitions leave this status
func (s ProcessingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether the state machine allows moving to next.
// Legal transitions: pending → processing → {completed | failed}.
func (s ProcessingStatus) CanTransitionTo(next ProcessingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	}
	return false
}

// Transition validates and returns the next status, or an error for an
// illegal move. Error messages name both states for debuggability.
func (s ProcessingStatus) Transition(next ProcessingStatus) (ProcessingStatus, error) {
	if !s.CanTransitionTo(next) {
		return s, fmt.Errorf("illegal status transition: %s → %s", s, next)
	}
	return next, nil
}

// MaxTitleLength is the longest accepted document title
const MaxTitleLength = 500

// Document is the parent record for ingested content
type Document struct {
	DocumentID   int64            `json:"document_id"`
	Title        string           `json:"title"`
	ContentKind  ContentKind      `json:"content_kind"`
	SourceURL    string           `json:"source_url,omitempty"`
	FilePath     string           `json:"file_path,omitempty"`
	FileSize     int64            `json:"file_size,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    *time.Time       `json:"updated_at,omitempty"`
	Status       ProcessingStatus `json:"status"`
	ErrorMessage string           `json:"error_message,omitempty"`
}

// Validate checks invariants that hold for every persisted document
func (d *Document) Validate() error {
	if d.Title == "" {
		return fmt.Errorf("document title must not be empty")
	}
	if len(d.Title) > MaxTitleLength {
		return fmt.Errorf("document title exceeds %d characters", MaxTitleLength)
	}
	if _, err := ParseContentKind(string(d.ContentKind)); err != nil {
		return err
	}
	if d.SourceURL != "" && d.ContentKind != ContentKindWeb {
		return fmt.Errorf("source_url is only valid for web documents, got kind %s", d.ContentKind)
	}
	if d.ErrorMessage != "" && d.Status != StatusFailed {
		return fmt.Errorf("error_message requires failed status, got %s", d.Status)
	}
	return nil
}
