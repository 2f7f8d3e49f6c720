// ABOUTME: Shared application wiring and helpers for CLI commands
// ABOUTME: Builds the full service stack from configuration in one place
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/secondbrain-labs/cerebro/internal/api"
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

// app bundles the fully wired service stack for CLI commands
type app struct {
	cfg      *config.Config
	db       *sqlite.DB
	docs     *sqlite.DocumentStore
	chunks   *sqlite.ChunkStore
	pipeline *ingest.Pipeline
	queue    *ingest.Queue
	query    *query.Service
	server   *api.Server
	logger   *slog.Logger
}

// newApp loads config and wires every service. The caller owns Close.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger()

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = sqlite.DefaultDBPath()
	}
	db, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	client, err := llm.NewClient(cfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing OpenAI client: %w", err)
	}

	docs := sqlite.NewDocumentStore(db)
	chunks := sqlite.NewChunkStore(db, cfg.VectorDimension)

	registry := extract.Registry{
		models.ContentKindAudio:    extract.NewAudioExtractor(client),
		models.ContentKindDocument: extract.NewDocumentExtractor(),
		models.ContentKindWeb:      extract.NewWebExtractor(cfg.WebFetchTimeout),
		models.ContentKindImage:    extract.NewImageExtractor(client),
	}

	pipeline := ingest.NewPipeline(docs, chunks, registry, chunker.New(cfg.ChunkSize, cfg.ChunkOverlap), client, logger)
	queue := ingest.NewQueue(pipeline, cfg.IngestWorkers, cfg.JobTimeout, cfg.JobSoftTimeout, logger)

	temporal := retrieval.NewTemporalParser(client, logger)
	hybrid := retrieval.NewHybridEngine(chunks, client, logger)
	streamer := synthesis.NewStreamer(client, logger)
	querySvc := query.NewService(temporal, hybrid, retrieval.NewScoreReranker(), streamer, cfg.TopKResults, cfg.RerankTopN, logger)

	return &app{
		cfg:      cfg,
		db:       db,
		docs:     docs,
		chunks:   chunks,
		pipeline: pipeline,
		queue:    queue,
		query:    querySvc,
		server:   api.NewServer(docs, queue, querySvc, cfg.MaxUploadBytes, logger),
		logger:   logger,
	}, nil
}

func (a *app) Close() {
	_ = a.db.Close()
}

// newLogger builds a logger honoring the global verbosity flags.
// Logs go to stderr so command output stays clean on stdout.
func newLogger() *slog.Logger {
	var out io.Writer = os.Stderr
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		out = io.Discard
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}
