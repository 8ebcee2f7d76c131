package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docuchat/docuchat/internal/ingest"
	"github.com/docuchat/docuchat/internal/query"
	"github.com/docuchat/docuchat/internal/storage"
)

// Server wraps the MCP server with dependencies.
type Server struct {
	server *mcp.Server
	store  *storage.Store
}

// Config holds server dependencies.
type Config struct {
	Store  *storage.Store
	Ingest *ingest.Pipeline
	Query  *query.Pipeline
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "docuchat-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "upload_document",
		Description: "Upload a document (pdf, docx, txt, md or image) for ingestion. The text is extracted, chunked, embedded and stored for retrieval during chat.",
	}, makeUploadHandler(cfg.Ingest))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "chat",
		Description: "Ask a question. Answers are grounded in relevant uploaded documents when any match; an attached image is analyzed with vision.",
	}, makeChatHandler(cfg.Query))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List all uploaded documents, newest first.",
	}, makeListHandler(cfg.Store))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_document",
		Description: "Retrieve a document by id, including its full extracted text.",
	}, makeGetHandler(cfg.Store))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_document",
		Description: "Delete a document and all of its chunks by id.",
	}, makeDeleteHandler(cfg.Store))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_status",
		Description: "Get document and chunk counts plus the database location.",
	}, makeStatusHandler(cfg.Store))

	return &Server{
		server: server,
		store:  cfg.Store,
	}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
