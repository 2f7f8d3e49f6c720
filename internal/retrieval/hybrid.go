// ABOUTME: Hybrid retrieval fusing semantic and lexical candidates by weighted score
// ABOUTME: Both searches run in parallel; either branch can contribute results alone
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/secondbrain-labs/cerebro/internal/models"
	"github.com/secondbrain-labs/cerebro/internal/storage/sqlite"
)

// Fusion weights favor semantic similarity while letting exact keyword
// matches break ties and surface terms embeddings miss.
const (
	semanticWeight = 0.7
	lexicalWeight  = 0.3
)

// Embedder produces a single query embedding
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// HybridEngine runs semantic and lexical search and fuses the results
type HybridEngine struct {
	chunks   *sqlite.ChunkStore
	embedder Embedder
	logger   *slog.Logger
}

func NewHybridEngine(chunks *sqlite.ChunkStore, embedder Embedder, logger *slog.Logger) *HybridEngine {
	return &HybridEngine{chunks: chunks, embedder: embedder, logger: logger}
}

// Search retrieves up to topK chunks for the query within the optional
// time range, scored by weighted fusion of cosine similarity and
// normalized BM25 relevance.
func (e *HybridEngine) Search(ctx context.Context, query string, timeRange *sqlite.TimeRange, topK int) ([]models.ScoredChunk, error) {
	queryVector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	var semantic, lexical []models.ScoredChunk
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		semantic, err = e.chunks.SemanticCandidates(gctx, queryVector, timeRange, topK)
		return err
	})
	g.Go(func() error {
		var err error
		lexical, err = e.chunks.LexicalCandidates(gctx, query, timeRange, topK)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("hybrid search failed: %w", err)
	}

	fused := fuse(semantic, lexical)
	if len(fused) > topK {
		fused = fused[:topK]
	}

	e.logger.Debug("hybrid search",
		"semantic", len(semantic), "lexical", len(lexical), "fused", len(fused),
		"time_filtered", timeRange != nil)
	return fused, nil
}

// fuse combines the two candidate sets over their union. BM25 relevance
// is unbounded, so it is normalized by the set maximum into [0, 1] to be
// commensurable with cosine similarity. A chunk absent from one branch
// contributes zero for that branch.
func fuse(semantic, lexical []models.ScoredChunk) []models.ScoredChunk {
	var maxLexical float64
	for _, c := range lexical {
		if c.Score > maxLexical {
			maxLexical = c.Score
		}
	}

	combined := make(map[int64]models.ScoredChunk, len(semantic)+len(lexical))
	order := make([]int64, 0, len(semantic)+len(lexical))

	for _, c := range semantic {
		c.Score = semanticWeight * c.Score
		combined[c.Chunk.ChunkID] = c
		order = append(order, c.Chunk.ChunkID)
	}
	for _, c := range lexical {
		normalized := 0.0
		if maxLexical > 0 {
			normalized = c.Score / maxLexical
		}
		if existing, ok := combined[c.Chunk.ChunkID]; ok {
			existing.Score += lexicalWeight * normalized
			combined[c.Chunk.ChunkID] = existing
		} else {
			c.Score = lexicalWeight * normalized
			combined[c.Chunk.ChunkID] = c
			order = append(order, c.Chunk.ChunkID)
		}
	}

	fused := make([]models.ScoredChunk, 0, len(order))
	for _, id := range order {
		fused = append(fused, combined[id])
	}
	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})
	return fused
}
