// ABOUTME: Root CLI command wiring global flags and subcommands
// ABOUTME: Every subcommand hangs off the root built here
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cerebro",
		Short: "Personal AI knowledge base",
		Long: `Cerebro — a searchable memory for everything you feed it.

Ingest documents, web pages, audio, and images; ask questions in plain
language and get answers grounded in your own content.

Examples:
  cerebro ingest notes.md
  cerebro ingest --url https://example.com/article
  cerebro search "tomato planting"
  cerebro ask "what did I work on last month?"
  cerebro serve`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table, json")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewIngestCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewAskCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the CLI
func Execute() error {
	return NewRootCmd().Execute()
}
