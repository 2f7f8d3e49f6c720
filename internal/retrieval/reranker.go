// ABOUTME: Result re-ranking stage applied after hybrid fusion
// ABOUTME: The score reranker orders by fused score; the interface leaves room for a cross-encoder
package retrieval

import (
	"context"
	"sort"

	"github.com/secondbrain-labs/cerebro/internal/models"
)

// Reranker reorders retrieval candidates and truncates to topN
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []models.ScoredChunk, topN int) ([]models.ScoredChunk, error)
}

// ScoreReranker ranks purely by the fused retrieval score. It keeps the
// rerank stage in the pipeline so a cross-encoder can slot in without
// touching callers.
type ScoreReranker struct{}

func NewScoreReranker() *ScoreReranker {
	return &ScoreReranker{}
}

func (r *ScoreReranker) Rerank(_ context.Context, _ string, candidates []models.ScoredChunk, topN int) ([]models.ScoredChunk, error) {
	ranked := make([]models.ScoredChunk, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if topN >= 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked, nil
}
