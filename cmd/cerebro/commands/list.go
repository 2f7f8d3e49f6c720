// ABOUTME: List command showing ingested documents and their processing status
// ABOUTME: Supports table and JSON output formats
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ingested documents",
		Long: `List all documents in the knowledge base with their processing status.

Examples:
  cerebro list
  cerebro list --format json`,
		RunE: runList,
	}

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	docs, err := a.docs.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if len(docs) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No documents ingested yet")
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tTITLE\tKIND\tSTATUS\tCREATED\n")
	fmt.Fprintf(w, "--\t-----\t----\t------\t-------\n")
	for _, doc := range docs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			doc.DocumentID,
			truncate(doc.Title, 40),
			doc.ContentKind,
			doc.Status,
			doc.CreatedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d document(s)\n", len(docs))
	}
	return nil
}
