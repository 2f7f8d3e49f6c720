// ABOUTME: Query service orchestrating retrieval, re-ranking, and streamed synthesis
// ABOUTME: Emits the ordered event protocol consumed by the SSE transport and the CLI
package query

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/secondbrain-labs/cerebro/internal/models"
	"github.com/secondbrain-labs/cerebro/internal/retrieval"
	"github.com/secondbrain-labs/cerebro/internal/synthesis"
)

// Service answers questions against the knowledge base
type Service struct {
	temporal   *retrieval.TemporalParser
	hybrid     *retrieval.HybridEngine
	reranker   retrieval.Reranker
	streamer   *synthesis.Streamer
	topK       int
	rerankTopN int
	logger     *slog.Logger
}

func NewService(temporal *retrieval.TemporalParser, hybrid *retrieval.HybridEngine, reranker retrieval.Reranker, streamer *synthesis.Streamer, topK, rerankTopN int, logger *slog.Logger) *Service {
	return &Service{
		temporal:   temporal,
		hybrid:     hybrid,
		reranker:   reranker,
		streamer:   streamer,
		topK:       topK,
		rerankTopN: rerankTopN,
		logger:     logger,
	}
}

// retrieve runs the full retrieval pipeline: temporal parsing, hybrid
// search, then re-ranking.
func (s *Service) retrieve(ctx context.Context, queryText string, topK int) ([]models.ScoredChunk, error) {
	if topK <= 0 {
		topK = s.topK
	}
	timeRange := s.temporal.Parse(ctx, queryText)

	candidates, err := s.hybrid.Search(ctx, queryText, timeRange, topK)
	if err != nil {
		return nil, err
	}
	topN := s.rerankTopN
	if topK < topN {
		topN = topK
	}
	return s.reranker.Rerank(ctx, queryText, candidates, topN)
}

// Search returns raw ranked chunks without synthesizing an answer.
// A topK of zero or less uses the configured default.
func (s *Service) Search(ctx context.Context, queryText string, topK int) ([]models.SearchResult, error) {
	chunks, err := s.retrieve(ctx, queryText, topK)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]models.SearchResult, len(chunks))
	for i, c := range chunks {
		results[i] = models.SearchResult{
			ChunkID:         c.Chunk.ChunkID,
			ChunkText:       c.Chunk.ChunkText,
			DocumentTitle:   c.DocumentTitle,
			ContentKind:     c.ContentKind,
			CreatedAt:       c.Chunk.CreatedAt.Format(time.RFC3339),
			SimilarityScore: c.Score,
		}
	}
	return results, nil
}

// Answer runs retrieval and synthesis, emitting events to out in order:
// status, chunks, status, token*, done — or error as the terminal event.
// When retrieval finds nothing, the error event short-circuits synthesis.
// The out channel is closed before Answer returns.
func (s *Service) Answer(ctx context.Context, queryText string, topK int, out chan<- models.QueryEvent) {
	defer close(out)
	start := time.Now()

	if !s.emit(ctx, out, models.QueryEvent{Type: models.EventStatus, Message: "Searching your knowledge base..."}) {
		return
	}

	chunks, err := s.retrieve(ctx, queryText, topK)
	if err != nil {
		s.logger.Error("retrieval failed", "query", queryText, "error", err)
		s.emit(ctx, out, models.QueryEvent{Type: models.EventError, Message: err.Error()})
		return
	}
	s.logger.Info("retrieved chunks", "query", queryText, "count", len(chunks), "elapsed", time.Since(start))

	if len(chunks) == 0 {
		s.emit(ctx, out, models.QueryEvent{Type: models.EventError, Message: "No relevant information found in your knowledge base."})
		return
	}

	metadata := make([]models.ChunkMetadata, len(chunks))
	for i, c := range chunks {
		metadata[i] = models.ChunkMetadata{
			ChunkID:       c.Chunk.ChunkID,
			DocumentTitle: c.DocumentTitle,
			ContentKind:   c.ContentKind,
			CreatedAt:     c.Chunk.CreatedAt.Format(time.RFC3339),
			Score:         c.Score,
		}
	}
	if !s.emit(ctx, out, models.QueryEvent{Type: models.EventChunks, Chunks: metadata}) {
		return
	}
	if !s.emit(ctx, out, models.QueryEvent{Type: models.EventStatus, Message: "Generating answer..."}) {
		return
	}

	tokens := make(chan string, 64)
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.streamer.Stream(ctx, queryText, chunks, tokens)
	}()

	for token := range tokens {
		if !s.emit(ctx, out, models.QueryEvent{Type: models.EventToken, Content: token}) {
			<-errCh
			return
		}
	}
	if err := <-errCh; err != nil {
		s.logger.Error("synthesis failed", "query", queryText, "error", err)
		s.emit(ctx, out, models.QueryEvent{Type: models.EventError, Message: err.Error()})
		return
	}

	s.emit(ctx, out, models.QueryEvent{Type: models.EventDone, ElapsedSeconds: time.Since(start).Seconds()})
}

// emit sends one event unless the caller has gone away
func (s *Service) emit(ctx context.Context, out chan<- models.QueryEvent, event models.QueryEvent) bool {
	select {
	case out <- event:
		return true
	case <-ctx.Done():
		return false
	}
}
