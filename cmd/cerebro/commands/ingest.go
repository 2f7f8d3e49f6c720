// ABOUTME: Ingest command for adding files and URLs to the knowledge base
// ABOUTME: Processes synchronously so the outcome is visible before the command exits
package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/secondbrain-labs/cerebro/internal/models"
)

var (
	ingestURL   string
	ingestTitle string
)

// fileKinds maps accepted file extensions to content kinds
var fileKinds = map[string]models.ContentKind{
	".mp3":      models.ContentKindAudio,
	".m4a":      models.ContentKindAudio,
	".wav":      models.ContentKindAudio,
	".ogg":      models.ContentKindAudio,
	".webm":     models.ContentKindAudio,
	".pdf":      models.ContentKindDocument,
	".md":       models.ContentKindDocument,
	".markdown": models.ContentKindDocument,
	".jpg":      models.ContentKindImage,
	".jpeg":     models.ContentKindImage,
	".png":      models.ContentKindImage,
	".webp":     models.ContentKindImage,
}

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Add a file or URL to the knowledge base",
		Long: `Ingest content into Cerebro.

Accepts audio (.mp3, .m4a, .wav, .ogg, .webm), documents (.pdf, .md),
and images (.jpg, .png, .webp), or a web page via --url. Content is
extracted, chunked, embedded, and indexed for retrieval.

Examples:
  cerebro ingest notes.md
  cerebro ingest recording.mp3 --title "standup 2026-08-28"
  cerebro ingest --url https://example.com/article`,
		Args: cobra.MaximumNArgs(1),
		RunE: runIngest,
	}

	cmd.Flags().StringVar(&ingestURL, "url", "", "Web page URL to scrape and index")
	cmd.Flags().StringVar(&ingestTitle, "title", "", "Document title (defaults to filename or URL)")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	if ingestURL == "" && len(args) == 0 {
		return fmt.Errorf("provide a file path or --url")
	}
	if ingestURL != "" && len(args) > 0 {
		return fmt.Errorf("provide either a file path or --url, not both")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var doc *models.Document
	var payload []byte

	if ingestURL != "" {
		title := ingestTitle
		if title == "" {
			title = ingestURL
		}
		doc = &models.Document{Title: title, ContentKind: models.ContentKindWeb, SourceURL: ingestURL}
	} else {
		path := args[0]
		kind, ok := fileKinds[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return fmt.Errorf("unsupported file type %q", filepath.Ext(path))
		}
		payload, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if int64(len(payload)) > a.cfg.MaxUploadBytes {
			return fmt.Errorf("file too large: %d bytes exceeds limit of %d", len(payload), a.cfg.MaxUploadBytes)
		}
		title := ingestTitle
		if title == "" {
			title = filepath.Base(path)
		}
		doc = &models.Document{
			Title:       title,
			ContentKind: kind,
			FilePath:    filepath.Base(path),
			FileSize:    int64(len(payload)),
		}
	}

	if err := a.docs.Create(ctx, doc); err != nil {
		return fmt.Errorf("creating document: %w", err)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Processing %q (document %d)...\n", doc.Title, doc.DocumentID)
	}

	if err := a.pipeline.Process(ctx, doc.DocumentID, payload); err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	count, err := a.chunks.CountByDocument(ctx, doc.DocumentID)
	if err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d chunk(s)\n", count)
	}
	return nil
}
