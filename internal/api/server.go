// ABOUTME: HTTP server wiring the ingestion and query services behind a REST surface
// ABOUTME: Thin transport layer; all domain logic lives in the services it delegates to
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/secondbrain-labs/cerebro/internal/ingest"
	"github.com/secondbrain-labs/cerebro/internal/query"
	"github.com/secondbrain-labs/cerebro/internal/storage/sqlite"
)

// Server exposes the REST and SSE endpoints
type Server struct {
	echo           *echo.Echo
	docs           *sqlite.DocumentStore
	queue          *ingest.Queue
	query          *query.Service
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewServer builds the server and registers all routes
func NewServer(docs *sqlite.DocumentStore, queue *ingest.Queue, querySvc *query.Service, maxUploadBytes int64, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:           e,
		docs:           docs,
		queue:          queue,
		query:          querySvc,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}

	e.GET("/health", s.handleHealth)

	v1 := e.Group("/api/v1")
	v1.POST("/ingest/upload", s.handleUpload)
	v1.POST("/ingest/url", s.handleIngestURL)
	v1.GET("/documents", s.handleListDocuments)
	v1.GET("/documents/:id", s.handleGetDocument)
	v1.DELETE("/documents/:id", s.handleDeleteDocument)
	v1.POST("/query/chat", s.handleChat)
	v1.POST("/query/search", s.handleSearch)

	return s
}

// Start blocks serving HTTP on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	err := s.echo.Start(addr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP listener
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
