// ABOUTME: Tests for answer synthesis streaming and source context formatting
// ABOUTME: A fake token stream stands in for the chat completion API
package synthesis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/secondbrain-labs/cerebro/internal/llm"
	"github.com/secondbrain-labs/cerebro/internal/models"
)

type fakeStream struct {
	tokens []string
	pos    int
	err    error
	closed bool
}

func (f *fakeStream) Recv() (string, error) {
	if f.pos >= len(f.tokens) {
		if f.err != nil {
			return "", f.err
		}
		return "", io.EOF
	}
	token := f.tokens[f.pos]
	f.pos++
	return token, nil
}

func (f *fakeStream) Close() error {
	f.closed = true
	return nil
}

type fakeCompleter struct {
	stream       *fakeStream
	err          error
	systemPrompt string
}

func (f *fakeCompleter) CompleteStream(_ context.Context, systemPrompt, _ string) (llm.TokenStream, error) {
	f.systemPrompt = systemPrompt
	if f.err != nil {
		return nil, f.err
	}
	return f.stream, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleChunks() []models.ScoredChunk {
	created := time.Date(2025, 12, 5, 10, 0, 0, 0, time.UTC)
	return []models.ScoredChunk{
		{
			Chunk:         models.Chunk{ChunkID: 1, ChunkText: "Planted tomatoes in the raised bed.", CreatedAt: created},
			DocumentTitle: "garden log",
			ContentKind:   models.ContentKindDocument,
			Score:         0.9,
		},
		{
			Chunk:         models.Chunk{ChunkID: 2, ChunkText: "Watered the seedlings.", CreatedAt: created},
			DocumentTitle: "garden log",
			ContentKind:   models.ContentKindDocument,
			Score:         0.7,
		},
	}
}

func TestBuildContext(t *testing.T) {
	got := BuildContext(sampleChunks())

	if !strings.Contains(got, "[Source 1] garden log (document, 2025-12-05)") {
		t.Errorf("missing first source header: %q", got)
	}
	if !strings.Contains(got, "[Source 2]") {
		t.Error("missing second source header")
	}
	if !strings.Contains(got, "\n---\n") {
		t.Error("missing separator between sources")
	}
	if !strings.Contains(got, "Planted tomatoes in the raised bed.") {
		t.Error("missing chunk text")
	}
}

func TestBuildContextEmpty(t *testing.T) {
	if got := BuildContext(nil); got != "" {
		t.Errorf("expected empty context, got %q", got)
	}
}

func TestStreamDeliversTokens(t *testing.T) {
	stream := &fakeStream{tokens: []string{"You ", "planted ", "tomatoes."}}
	completer := &fakeCompleter{stream: stream}
	s := NewStreamer(completer, discardLogger())

	out := make(chan string, 16)
	err := s.Stream(context.Background(), "what did I plant?", sampleChunks(), out)
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	var sb strings.Builder
	for token := range out {
		sb.WriteString(token)
	}
	if sb.String() != "You planted tomatoes." {
		t.Errorf("got %q", sb.String())
	}
	if !stream.closed {
		t.Error("underlying stream was not closed")
	}
	if !strings.Contains(completer.systemPrompt, "[Source 1]") {
		t.Error("system prompt missing source context")
	}
	if !strings.Contains(completer.systemPrompt, "ONLY the information provided") {
		t.Error("system prompt missing grounding instruction")
	}
}

func TestStreamMidstreamError(t *testing.T) {
	stream := &fakeStream{tokens: []string{"partial "}, err: errors.New("connection reset")}
	s := NewStreamer(&fakeCompleter{stream: stream}, discardLogger())

	out := make(chan string, 16)
	err := s.Stream(context.Background(), "q", sampleChunks(), out)
	if err == nil {
		t.Fatal("expected error")
	}
	// Channel must be closed even on failure so readers do not hang.
	if _, open := <-out; open {
		if _, open := <-out; open {
			t.Error("channel left open after error")
		}
	}
}

func TestStreamStartFailure(t *testing.T) {
	s := NewStreamer(&fakeCompleter{err: errors.New("api down")}, discardLogger())
	out := make(chan string, 1)
	if err := s.Stream(context.Background(), "q", sampleChunks(), out); err == nil {
		t.Fatal("expected error")
	}
}

func TestStreamContextCancellation(t *testing.T) {
	stream := &fakeStream{tokens: []string{"a", "b", "c", "d"}}
	s := NewStreamer(&fakeCompleter{stream: stream}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Unbuffered channel with no reader: the send must fall through to
	// the cancelled context instead of blocking forever.
	out := make(chan string)
	err := s.Stream(ctx, "q", sampleChunks(), out)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
