// ABOUTME: Search command returning raw ranked chunks without answer synthesis
// ABOUTME: Runs the full retrieval pipeline including temporal parsing
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var searchTopK int

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge base",
		Long: `Search indexed content and show the ranked chunks.

Combines semantic similarity with keyword matching. Queries with
temporal phrasing ("last month", "yesterday") are filtered to the
matching date range.

Examples:
  cerebro search "tomato planting"
  cerebro search --format json "meeting notes from last week"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchTopK, "top-k", 0, "Maximum number of results (0 uses the configured default)")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.query.Search(cmd.Context(), args[0], searchTopK)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No results for query: %s\n", args[0])
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SCORE\tTITLE\tKIND\tTEXT\n")
	fmt.Fprintf(w, "-----\t-----\t----\t----\n")
	for _, r := range results {
		fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\n",
			r.SimilarityScore,
			truncate(r.DocumentTitle, 25),
			r.ContentKind,
			truncate(r.ChunkText, 60))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d result(s)\n", len(results))
	}
	return nil
}
