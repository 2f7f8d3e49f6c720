// ABOUTME: Grounded answer synthesis streaming tokens from the chat model
// ABOUTME: The system prompt restricts answers to the retrieved sources, cited by number
package synthesis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/secondbrain-labs/cerebro/internal/llm"
	"github.com/secondbrain-labs/cerebro/internal/models"
)

// Completer opens a streaming chat completion
type Completer interface {
	CompleteStream(ctx context.Context, systemPrompt, userPrompt string) (llm.TokenStream, error)
}

const groundingPrompt = `You are Cerebro, a personal AI assistant with perfect memory.

Your role is to answer questions using ONLY the information provided in the context below.

CRITICAL RULES:
1. Base your answer EXCLUSIVELY on the provided sources
2. If the context doesn't contain enough information, say "I don't have enough information in your knowledge base to answer that."
3. Cite sources by number when making specific claims (e.g., "According to Source 1...")
4. Be conversational but precise
5. NEVER make up or infer information not present in the sources

Context:
%s`

// Streamer produces grounded answers from retrieved chunks
type Streamer struct {
	llm    Completer
	logger *slog.Logger
}

func NewStreamer(llm Completer, logger *slog.Logger) *Streamer {
	return &Streamer{llm: llm, logger: logger}
}

// Stream synthesizes an answer to the query grounded in the given chunks
// and sends tokens to the out channel as they arrive. The channel is
// closed when the stream ends. Cancelling ctx aborts the stream.
func (s *Streamer) Stream(ctx context.Context, query string, chunks []models.ScoredChunk, out chan<- string) error {
	defer close(out)

	systemPrompt := fmt.Sprintf(groundingPrompt, BuildContext(chunks))
	userPrompt := fmt.Sprintf("Question: %s\n\nPlease answer based on the sources provided.", query)

	stream, err := s.llm.CompleteStream(ctx, systemPrompt, userPrompt)
	if err != nil {
		return fmt.Errorf("failed to start synthesis: %w", err)
	}
	defer func() { _ = stream.Close() }()

	for {
		token, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("synthesis stream failed: %w", err)
		}
		if token == "" {
			continue
		}
		select {
		case out <- token:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// BuildContext renders retrieved chunks as numbered source blocks. Source
// numbers start at 1 and match the citation numbers the prompt asks for.
func BuildContext(chunks []models.ScoredChunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = fmt.Sprintf("[Source %d] %s (%s, %s)\n%s\n",
			i+1, c.DocumentTitle, c.ContentKind, c.Chunk.CreatedAt.Format("2006-01-02"), c.Chunk.ChunkText)
	}
	return strings.Join(parts, "\n---\n")
}
