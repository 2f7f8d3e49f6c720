// ABOUTME: Benchmark runner executing scenarios against the real ingestion and query pipeline
// ABOUTME: Each scenario gets an isolated temporary database; the OpenAI API is used live
package ragas

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/secondbrain-labs/cerebro/internal/chunker"
	"github.com/secondbrain-labs/cerebro/internal/config"
	"github.com/secondbrain-labs/cerebro/internal/extract"
	"github.com/secondbrain-labs/cerebro/internal/ingest"
	"github.com/secondbrain-labs/cerebro/internal/llm"
	"github.com/secondbrain-labs/cerebro/internal/models"
	"github.com/secondbrain-labs/cerebro/internal/query"
	"github.com/secondbrain-labs/cerebro/internal/retrieval"
	"github.com/secondbrain-labs/cerebro/internal/storage/sqlite"
	"github.com/secondbrain-labs/cerebro/internal/synthesis"
)

// Runner executes benchmark scenarios end to end
type Runner struct {
	cfg     *config.Config
	client  *llm.Client
	metrics *MetricsCalculator
	logger  *slog.Logger
	verbose bool
}

// NewRunner creates a benchmark runner. Requires OPENAI_API_KEY.
func NewRunner(verbose bool) (*Runner, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	client, err := llm.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing OpenAI client: %w", err)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return &Runner{
		cfg:     cfg,
		client:  client,
		metrics: NewMetricsCalculator(),
		logger:  logger,
		verbose: verbose,
	}, nil
}

// RunAll executes every scenario and returns the results
func (r *Runner) RunAll(ctx context.Context) ([]Result, error) {
	var results []Result
	for _, scenario := range AllScenarios() {
		result, err := r.Run(ctx, scenario)
		if err != nil {
			result = Result{
				ScenarioID:   scenario.ID,
				ScenarioName: scenario.Name,
				Status:       "ERROR",
				ErrorMessage: err.Error(),
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// Run executes one scenario: ingest seed documents into a fresh
// database, run the query, and score the outcome.
func (r *Runner) Run(ctx context.Context, scenario Scenario) (Result, error) {
	if r.verbose {
		fmt.Printf("\n=== %s: %s ===\n%s\n\n", scenario.ID, scenario.Name, scenario.Description)
	}

	dbPath := filepath.Join(os.TempDir(), fmt.Sprintf("cerebro_bench_%s_%d.db", scenario.ID, time.Now().UnixNano()))
	db, err := sqlite.Open(dbPath)
	if err != nil {
		return Result{}, fmt.Errorf("opening scenario database: %w", err)
	}
	defer func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}()

	docs := sqlite.NewDocumentStore(db)
	chunks := sqlite.NewChunkStore(db, r.cfg.VectorDimension)

	registry := extract.Registry{
		models.ContentKindDocument: extract.NewDocumentExtractor(),
	}
	pipeline := ingest.NewPipeline(docs, chunks, registry,
		chunker.New(r.cfg.ChunkSize, r.cfg.ChunkOverlap), r.client, r.logger)

	for _, seed := range scenario.Documents {
		doc := &models.Document{Title: seed.Title, ContentKind: seed.Kind, FilePath: seed.Title + ".md"}
		if err := docs.Create(ctx, doc); err != nil {
			return Result{}, fmt.Errorf("seeding %q: %w", seed.Title, err)
		}
		if err := pipeline.Process(ctx, doc.DocumentID, []byte(seed.Text)); err != nil {
			return Result{}, fmt.Errorf("ingesting %q: %w", seed.Title, err)
		}
	}

	temporal := retrieval.NewTemporalParser(r.client, r.logger)
	hybrid := retrieval.NewHybridEngine(chunks, r.client, r.logger)
	streamer := synthesis.NewStreamer(r.client, r.logger)
	querySvc := query.NewService(temporal, hybrid, retrieval.NewScoreReranker(), streamer,
		r.cfg.TopKResults, r.cfg.RerankTopN, r.logger)

	answer, retrievedContext, err := r.ask(ctx, querySvc, scenario.Query)
	if err != nil {
		return Result{}, err
	}

	result := r.metrics.Evaluate(scenario, answer, retrievedContext)
	if r.verbose {
		fmt.Printf("faithfulness=%.2f recall=%.2f status=%s\n",
			result.FaithfulnessScore, result.ContextRecallScore, result.Status)
	}
	return result, nil
}

// ask runs the full answer pipeline and collects the assembled answer
// plus the retrieved chunk texts.
func (r *Runner) ask(ctx context.Context, querySvc *query.Service, question string) (string, []string, error) {
	// The refusal scenario produces a terminal error event when nothing
	// relevant is retrieved; that message is the "answer" being scored.
	results, err := querySvc.Search(ctx, question, 0)
	if err != nil {
		return "", nil, fmt.Errorf("retrieval failed: %w", err)
	}
	retrievedContext := make([]string, len(results))
	for i, res := range results {
		retrievedContext[i] = res.ChunkText
	}

	events := make(chan models.QueryEvent, 64)
	go querySvc.Answer(ctx, question, 0, events)

	var answer strings.Builder
	var failure string
	for event := range events {
		switch event.Type {
		case models.EventToken:
			answer.WriteString(event.Content)
		case models.EventError:
			failure = event.Message
		}
	}
	if answer.Len() == 0 && failure != "" {
		return failure, retrievedContext, nil
	}
	return answer.String(), retrievedContext, nil
}

// WriteResults writes results as indented JSON to path
func WriteResults(path string, results []Result) error {
	data, err := json.MarshalIndent(map[string]interface{}{
		"generated_at": time.Now().UTC().Format(time.RFC3339),
		"results":      results,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Summarize prints a compact pass/fail table to stdout
func Summarize(results []Result) (passed, failed int) {
	fmt.Println()
	for _, r := range results {
		marker := "FAIL"
		if r.Status == "PASS" {
			marker = "PASS"
			passed++
		} else {
			failed++
		}
		fmt.Printf("[%s] %-10s %-28s faithfulness=%.2f recall=%.2f\n",
			marker, r.ScenarioID, r.ScenarioName, r.FaithfulnessScore, r.ContextRecallScore)
		if r.ErrorMessage != "" {
			fmt.Printf("       error: %s\n", r.ErrorMessage)
		}
	}
	fmt.Printf("\n%d passed, %d failed\n", passed, failed)
	return passed, failed
}
