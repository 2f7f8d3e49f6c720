// ABOUTME: Integration-style tests for the query service event pipeline
// ABOUTME: Real in-memory storage with fake LLM capabilities behind the interfaces
package query

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/secondbrain-labs/cerebro/internal/llm"
	"github.com/secondbrain-labs/cerebro/internal/models"
	"github.com/secondbrain-labs/cerebro/internal/retrieval"
	"github.com/secondbrain-labs/cerebro/internal/storage/sqlite"
	"github.com/secondbrain-labs/cerebro/internal/synthesis"
)

type fakeJSONCompleter struct{ response string }

func (f *fakeJSONCompleter) CompleteJSON(_ context.Context, _, _ string) (string, error) {
	return f.response, nil
}

type fakeEmbedder struct{ vector []float64 }

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	return f.vector, nil
}

type fakeTokenStream struct {
	tokens []string
	pos    int
}

func (f *fakeTokenStream) Recv() (string, error) {
	if f.pos >= len(f.tokens) {
		return "", io.EOF
	}
	t := f.tokens[f.pos]
	f.pos++
	return t, nil
}

func (f *fakeTokenStream) Close() error { return nil }

type fakeCompleter struct{ tokens []string }

func (f *fakeCompleter) CompleteStream(_ context.Context, _, _ string) (llm.TokenStream, error) {
	return &fakeTokenStream{tokens: f.tokens}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestService builds a service over an in-memory database. seed adds
// documents before the service runs.
func newTestService(t *testing.T, tokens []string, seed func(docs *sqlite.DocumentStore, chunks *sqlite.ChunkStore)) *Service {
	t.Helper()
	db, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	docs := sqlite.NewDocumentStore(db)
	chunks := sqlite.NewChunkStore(db, 3)
	if seed != nil {
		seed(docs, chunks)
	}

	logger := discardLogger()
	temporal := retrieval.NewTemporalParser(&fakeJSONCompleter{response: `{"has_temporal_constraint": false}`}, logger)
	hybrid := retrieval.NewHybridEngine(chunks, &fakeEmbedder{vector: []float64{1, 0, 0}}, logger)
	streamer := synthesis.NewStreamer(&fakeCompleter{tokens: tokens}, logger)
	return NewService(temporal, hybrid, retrieval.NewScoreReranker(), streamer, 20, 10, logger)
}

func seedCompletedDocument(t *testing.T) func(docs *sqlite.DocumentStore, chunks *sqlite.ChunkStore) {
	return func(docs *sqlite.DocumentStore, chunks *sqlite.ChunkStore) {
		ctx := context.Background()
		doc := &models.Document{Title: "garden log", ContentKind: models.ContentKindDocument}
		if err := docs.Create(ctx, doc); err != nil {
			t.Fatal(err)
		}
		if err := docs.TransitionStatus(ctx, doc.DocumentID, models.StatusProcessing, ""); err != nil {
			t.Fatal(err)
		}
		batch := []models.Chunk{
			{DocumentID: doc.DocumentID, ChunkText: "planted tomatoes in the raised bed", ChunkIndex: 0, Embedding: []float64{1, 0, 0}},
		}
		if err := chunks.InsertBatchCompleted(ctx, doc.DocumentID, batch); err != nil {
			t.Fatal(err)
		}
	}
}

func collectEvents(t *testing.T, s *Service, queryText string) []models.QueryEvent {
	t.Helper()
	out := make(chan models.QueryEvent, 64)
	s.Answer(context.Background(), queryText, 0, out)
	var events []models.QueryEvent
	for e := range out {
		events = append(events, e)
	}
	return events
}

func TestAnswerEventOrder(t *testing.T) {
	s := newTestService(t, []string{"You ", "planted ", "tomatoes."}, seedCompletedDocument(t))
	events := collectEvents(t, s, "what did I plant?")

	var types []models.EventType
	for _, e := range events {
		types = append(types, e.Type)
	}

	if len(types) < 5 {
		t.Fatalf("expected at least 5 events, got %v", types)
	}
	if types[0] != models.EventStatus {
		t.Errorf("first event = %s, want status", types[0])
	}
	if types[1] != models.EventChunks {
		t.Errorf("second event = %s, want chunks", types[1])
	}
	if types[2] != models.EventStatus {
		t.Errorf("third event = %s, want status", types[2])
	}
	if last := types[len(types)-1]; last != models.EventDone {
		t.Errorf("last event = %s, want done", last)
	}

	var answer strings.Builder
	for _, e := range events {
		if e.Type == models.EventToken {
			answer.WriteString(e.Content)
		}
	}
	if answer.String() != "You planted tomatoes." {
		t.Errorf("assembled answer = %q", answer.String())
	}

	done := events[len(events)-1]
	if done.ElapsedSeconds < 0 {
		t.Errorf("done event elapsed = %v", done.ElapsedSeconds)
	}
}

func TestAnswerChunkMetadata(t *testing.T) {
	s := newTestService(t, []string{"answer"}, seedCompletedDocument(t))
	events := collectEvents(t, s, "tomatoes")

	var chunksEvent *models.QueryEvent
	for i := range events {
		if events[i].Type == models.EventChunks {
			chunksEvent = &events[i]
			break
		}
	}
	if chunksEvent == nil {
		t.Fatal("no chunks event emitted")
	}
	if len(chunksEvent.Chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunksEvent.Chunks))
	}
	c := chunksEvent.Chunks[0]
	if c.DocumentTitle != "garden log" || c.ContentKind != models.ContentKindDocument {
		t.Errorf("unexpected metadata: %+v", c)
	}
	if c.Score <= 0 {
		t.Errorf("expected positive score, got %v", c.Score)
	}
}

func TestAnswerEmptyKnowledgeBase(t *testing.T) {
	s := newTestService(t, []string{"should never stream"}, nil)
	events := collectEvents(t, s, "anything")

	last := events[len(events)-1]
	if last.Type != models.EventError {
		t.Fatalf("expected terminal error event, got %s", last.Type)
	}
	if !strings.Contains(last.Message, "No relevant information") {
		t.Errorf("unexpected message %q", last.Message)
	}
	// Synthesis must not run when retrieval finds nothing.
	for _, e := range events {
		if e.Type == models.EventToken {
			t.Error("token event emitted despite empty retrieval")
		}
	}
}

func TestSearchReturnsRankedResults(t *testing.T) {
	s := newTestService(t, nil, seedCompletedDocument(t))
	results, err := s.Search(context.Background(), "tomatoes", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.ChunkText != "planted tomatoes in the raised bed" {
		t.Errorf("unexpected chunk text %q", r.ChunkText)
	}
	if r.DocumentTitle != "garden log" {
		t.Errorf("unexpected title %q", r.DocumentTitle)
	}
	if r.SimilarityScore <= 0 {
		t.Errorf("expected positive score, got %v", r.SimilarityScore)
	}
}

func TestSearchTopKOverride(t *testing.T) {
	seed := func(docs *sqlite.DocumentStore, chunks *sqlite.ChunkStore) {
		ctx := context.Background()
		doc := &models.Document{Title: "garden log", ContentKind: models.ContentKindDocument}
		if err := docs.Create(ctx, doc); err != nil {
			t.Fatal(err)
		}
		if err := docs.TransitionStatus(ctx, doc.DocumentID, models.StatusProcessing, ""); err != nil {
			t.Fatal(err)
		}
		batch := []models.Chunk{
			{DocumentID: doc.DocumentID, ChunkText: "planted tomatoes in the raised bed", ChunkIndex: 0, Embedding: []float64{1, 0, 0}},
			{DocumentID: doc.DocumentID, ChunkText: "watered the seedlings", ChunkIndex: 1, Embedding: []float64{0, 1, 0}},
			{DocumentID: doc.DocumentID, ChunkText: "staked the vines", ChunkIndex: 2, Embedding: []float64{0, 0, 1}},
		}
		if err := chunks.InsertBatchCompleted(ctx, doc.DocumentID, batch); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("default returns all matches", func(t *testing.T) {
		s := newTestService(t, nil, seed)
		results, err := s.Search(context.Background(), "tomato", 0)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("expected 3 results with default limit, got %d", len(results))
		}
	})

	t.Run("per-request limit caps results", func(t *testing.T) {
		s := newTestService(t, nil, seed)
		results, err := s.Search(context.Background(), "tomato", 1)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("expected 1 result with top_k=1, got %d", len(results))
		}
		if results[0].ChunkText != "planted tomatoes in the raised bed" {
			t.Errorf("expected the highest-scoring chunk, got %q", results[0].ChunkText)
		}
	})

	t.Run("answer respects the limit", func(t *testing.T) {
		s := newTestService(t, []string{"answer"}, seed)
		out := make(chan models.QueryEvent, 64)
		s.Answer(context.Background(), "tomato", 1, out)
		for e := range out {
			if e.Type == models.EventChunks && len(e.Chunks) != 1 {
				t.Errorf("expected 1 chunk with top_k=1, got %d", len(e.Chunks))
			}
		}
	})
}

func TestSearchEmpty(t *testing.T) {
	s := newTestService(t, nil, nil)
	results, err := s.Search(context.Background(), "anything", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
