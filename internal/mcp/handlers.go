// ABOUTME: MCP tool handler implementations for the Cerebro server
// ABOUTME: Tool errors are returned as results, not protocol failures
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/secondbrain-labs/cerebro/internal/ingest"
	"github.com/secondbrain-labs/cerebro/internal/models"
	"github.com/secondbrain-labs/cerebro/internal/query"
	"github.com/secondbrain-labs/cerebro/internal/storage/sqlite"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	docs   *sqlite.DocumentStore
	queue  *ingest.Queue
	query  *query.Service
	logger *slog.Logger
}

// SearchKnowledgeBase handles the search_knowledge_base tool
func (h *Handlers) SearchKnowledgeBase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	queryText, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	topK := request.GetInt("top_k", 0)
	results, err := h.query.Search(ctx, queryText, topK)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	response := map[string]interface{}{
		"query":   queryText,
		"results": results,
		"count":   len(results),
	}
	return jsonResult(response)
}

// AskKnowledgeBase handles the ask_knowledge_base tool. The streamed
// answer is assembled into a single response since MCP tool calls are
// request/response.
func (h *Handlers) AskKnowledgeBase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question argument is required and must be a string"), nil
	}

	topK := request.GetInt("top_k", 0)
	events := make(chan models.QueryEvent, 64)
	go h.query.Answer(ctx, question, topK, events)

	var answer strings.Builder
	var sources []models.ChunkMetadata
	var failure string
	for event := range events {
		switch event.Type {
		case models.EventToken:
			answer.WriteString(event.Content)
		case models.EventChunks:
			sources = event.Chunks
		case models.EventError:
			failure = event.Message
		}
	}
	if failure != "" {
		return mcp.NewToolResultError(failure), nil
	}

	response := map[string]interface{}{
		"answer":  answer.String(),
		"sources": sources,
	}
	return jsonResult(response)
}

// IngestURL handles the ingest_url tool
func (h *Handlers) IngestURL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url argument is required and must be a string"), nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return mcp.NewToolResultError("url must be a valid http or https URL"), nil
	}

	title := request.GetString("title", "")
	if title == "" {
		title = rawURL
	}

	doc := &models.Document{Title: title, ContentKind: models.ContentKindWeb, SourceURL: rawURL}
	if err := h.docs.Create(ctx, doc); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create document: %v", err)), nil
	}

	jobID, err := h.queue.Enqueue(doc.DocumentID, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to enqueue: %v", err)), nil
	}

	response := map[string]interface{}{
		"document_id": doc.DocumentID,
		"job_id":      jobID,
		"status":      string(doc.Status),
	}
	return jsonResult(response)
}

// ListDocuments handles the list_documents tool
func (h *Handlers) ListDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := h.docs.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list documents: %v", err)), nil
	}

	response := map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
	}
	return jsonResult(response)
}

// GetDocumentStatus handles the get_document_status tool
func (h *Handlers) GetDocumentStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("document_id")
	if err != nil {
		return mcp.NewToolResultError("document_id argument is required and must be a number"), nil
	}

	doc, err := h.docs.Get(ctx, int64(id))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load document: %v", err)), nil
	}
	if doc == nil {
		return mcp.NewToolResultError(fmt.Sprintf("document %d not found", id)), nil
	}
	return jsonResult(doc)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
