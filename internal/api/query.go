// ABOUTME: Query endpoints: SSE chat streaming and raw search
// ABOUTME: The chat handler bridges the answer event channel onto Server-Sent Events
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/secondbrain-labs/cerebro/internal/models"
)

type queryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// handleChat streams a grounded answer as Server-Sent Events. Each event
// is one JSON object on a "data:" line; the stream ends after the
// terminal done or error event.
func (s *Server) handleChat(c echo.Context) error {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query must not be empty")
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.Header().Set("X-Accel-Buffering", "no")
	resp.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	events := make(chan models.QueryEvent, 64)
	go s.query.Answer(ctx, req.Query, req.TopK, events)

	for event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("failed to encode event", "error", err)
			continue
		}
		if _, err := fmt.Fprintf(resp, "data: %s\n\n", data); err != nil {
			// Client went away; Answer notices via ctx and stops.
			return nil
		}
		resp.Flush()
	}
	return nil
}

// handleSearch returns raw ranked chunks without synthesis
func (s *Server) handleSearch(c echo.Context) error {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query must not be empty")
	}

	start := time.Now()
	results, err := s.query.Search(c.Request().Context(), req.Query, req.TopK)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"query":                   req.Query,
		"results":                 results,
		"processing_time_seconds": time.Since(start).Seconds(),
	})
}
