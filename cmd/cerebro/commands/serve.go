// ABOUTME: Serve command running the HTTP API with graceful shutdown
// ABOUTME: Drains the ingestion queue before the process exits
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var serveAddr string

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Start the Cerebro HTTP API server.

Serves ingestion, document management, and query endpoints, including
SSE answer streaming on /api/v1/query/chat.

Examples:
  cerebro serve
  cerebro serve --addr :9000`,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides CEREBRO_LISTEN_ADDR)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.ListenAddr
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		a.logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown failed", "error", err)
	}
	if err := a.queue.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("draining ingestion queue: %w", err)
	}
	return nil
}
