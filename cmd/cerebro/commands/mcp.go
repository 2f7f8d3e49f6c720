// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents to search and feed the knowledge base via stdio
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/secondbrain-labs/cerebro/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Run Cerebro as an MCP (Model Context Protocol) server over stdio,
exposing knowledge base search, grounded question answering, and URL
ingestion as agent tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically launched by an agent host)
  cerebro mcp

  # Configure in the host's MCP config:
  # {
  #   "mcpServers": {
  #     "cerebro": {
  #       "command": "cerebro",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

func runMCP(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	server := mcpserver.NewMCPServer("Cerebro Knowledge Base", versionInfo.Version)
	mcp.RegisterTools(server, a.docs, a.queue, a.query, a.logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info("mcp server starting on stdio")

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := a.queue.Shutdown(drainCtx); err != nil {
			return fmt.Errorf("draining ingestion queue: %w", err)
		}
		return nil
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
