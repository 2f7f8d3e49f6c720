// ABOUTME: MCP tool definitions and registration for the Cerebro server
// ABOUTME: Exposes search, ask, URL ingestion, and document status as agent tools
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/secondbrain-labs/cerebro/internal/ingest"
	"github.com/secondbrain-labs/cerebro/internal/query"
	"github.com/secondbrain-labs/cerebro/internal/storage/sqlite"
)

// RegisterTools registers all Cerebro MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, docs *sqlite.DocumentStore, queue *ingest.Queue, querySvc *query.Service, logger *slog.Logger) *Handlers {
	handlers := &Handlers{
		docs:   docs,
		queue:  queue,
		query:  querySvc,
		logger: logger,
	}

	server.AddTool(mcp.Tool{
		Name:        "search_knowledge_base",
		Description: "Search the personal knowledge base and return ranked text chunks. Combines semantic and keyword matching; temporal phrases like 'last month' narrow the date range.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language search query",
				},
				"top_k": map[string]interface{}{
					"type":        "number",
					"description": "Optional maximum number of results (defaults to the server setting)",
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchKnowledgeBase)

	server.AddTool(mcp.Tool{
		Name:        "ask_knowledge_base",
		Description: "Ask a question and get an answer grounded exclusively in ingested content, with sources cited by number.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "Natural language question to answer",
				},
				"top_k": map[string]interface{}{
					"type":        "number",
					"description": "Optional maximum number of source chunks to retrieve (defaults to the server setting)",
				},
			},
			Required: []string{"question"},
		},
	}, handlers.AskKnowledgeBase)

	server.AddTool(mcp.Tool{
		Name:        "ingest_url",
		Description: "Scrape a web page and index it into the knowledge base. Processing runs in the background; check status with get_document_status.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"url": map[string]interface{}{
					"type":        "string",
					"description": "HTTP or HTTPS URL to scrape",
				},
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Optional document title (defaults to the URL)",
				},
			},
			Required: []string{"url"},
		},
	}, handlers.IngestURL)

	server.AddTool(mcp.Tool{
		Name:        "list_documents",
		Description: "List all documents in the knowledge base with their processing status.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ListDocuments)

	server.AddTool(mcp.Tool{
		Name:        "get_document_status",
		Description: "Get the processing status of a document by ID, including the error message if processing failed.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"document_id": map[string]interface{}{
					"type":        "number",
					"description": "Document ID returned by ingestion",
				},
			},
			Required: []string{"document_id"},
		},
	}, handlers.GetDocumentStatus)

	return handlers
}
