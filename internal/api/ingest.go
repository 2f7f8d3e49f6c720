// ABOUTME: Ingestion endpoints: file upload and URL submission
// ABOUTME: All validation happens before a document row is created
package api

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/secondbrain-labs/cerebro/internal/models"
)

// extensionKinds maps accepted upload extensions to their content kind
var extensionKinds = map[string]models.ContentKind{
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

type urlIngestRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type ingestResponse struct {
	Document *models.Document `json:"document"`
	JobID    string           `json:"job_id"`
}

// handleUpload accepts a multipart file, infers the content kind from
// the extension, and enqueues background processing. Validation failures
// are rejected before any document row exists.
func (s *Server) handleUpload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file field")
	}

	kind, ok := extensionKinds[strings.ToLower(filepath.Ext(fileHeader.Filename))]
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("unsupported file type %q", filepath.Ext(fileHeader.Filename)))
	}
	if fileHeader.Size > s.maxUploadBytes {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("file too large: %d bytes exceeds limit of %d", fileHeader.Size, s.maxUploadBytes))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read upload")
	}
	defer func() { _ = src.Close() }()
	payload, err := io.ReadAll(io.LimitReader(src, s.maxUploadBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read upload")
	}
	if int64(len(payload)) > s.maxUploadBytes {
		return echo.NewHTTPError(http.StatusBadRequest, "file too large")
	}

	title := c.FormValue("title")
	if title == "" {
		title = fileHeader.Filename
	}

	doc := &models.Document{
		Title:       title,
		ContentKind: kind,
		FilePath:    filepath.Base(fileHeader.Filename),
		FileSize:    int64(len(payload)),
	}
	if err := s.docs.Create(c.Request().Context(), doc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	jobID, err := s.queue.Enqueue(doc.DocumentID, payload)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}

	return c.JSON(http.StatusAccepted, ingestResponse{Document: doc, JobID: jobID})
}

// handleIngestURL registers a web page for scraping and indexing
func (s *Server) handleIngestURL(c echo.Context) error {
	var req urlIngestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	parsed, err := url.Parse(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url must be a valid http or https URL")
	}

	title := req.Title
	if title == "" {
		title = req.URL
	}

	doc := &models.Document{
		Title:       title,
		ContentKind: models.ContentKindWeb,
		SourceURL:   req.URL,
	}
	if err := s.docs.Create(c.Request().Context(), doc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	jobID, err := s.queue.Enqueue(doc.DocumentID, nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}

	return c.JSON(http.StatusAccepted, ingestResponse{Document: doc, JobID: jobID})
}
