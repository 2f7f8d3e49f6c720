// ABOUTME: Ask command streaming a grounded answer to the terminal
// ABOUTME: Consumes the query event channel and prints tokens as they arrive
package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/secondbrain-labs/cerebro/internal/models"
)

var (
	askShowSources bool
	askTopK        int
)

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question answered from your content",
		Long: `Ask a natural language question and get an answer grounded in
your ingested content, with sources cited by number.

Examples:
  cerebro ask "what did I plant in the garden?"
  cerebro ask --sources "what did I work on last month?"`,
		Args: cobra.ExactArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().BoolVar(&askShowSources, "sources", false, "Show retrieved sources before the answer")
	cmd.Flags().IntVar(&askTopK, "top-k", 0, "Maximum number of source chunks to retrieve (0 uses the configured default)")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	events := make(chan models.QueryEvent, 64)
	go a.query.Answer(ctx, args[0], askTopK, events)

	var failed string
	answered := false
	for event := range events {
		switch event.Type {
		case models.EventStatus:
			if !quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", event.Message)
			}
		case models.EventChunks:
			if askShowSources {
				for i, c := range event.Chunks {
					fmt.Fprintf(out, "[Source %d] %s (%s, score %.3f)\n", i+1, c.DocumentTitle, c.ContentKind, c.Score)
				}
				fmt.Fprintln(out)
			}
		case models.EventToken:
			fmt.Fprint(out, event.Content)
			answered = true
		case models.EventDone:
			fmt.Fprintln(out)
			if !quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "\nAnswered in %.2fs\n", event.ElapsedSeconds)
			}
		case models.EventError:
			failed = event.Message
		}
	}

	if failed != "" {
		if answered {
			fmt.Fprintln(out)
		}
		return fmt.Errorf("%s", failed)
	}
	return nil
}
