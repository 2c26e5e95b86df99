// Package api provides the HTTP API server: question answering, index
// rebuilds, the supplemental store and the MCP tool surface.
package api

import (
	"context"

	"github.com/jskoiz/llama3-chatbot-with-rag/api/mcp"
	"github.com/jskoiz/llama3-chatbot-with-rag/api/search"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/pipeline"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/stats"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage"
)

// Rebuilder runs a full rebuild of the index.
type Rebuilder interface {
	Rebuild(ctx context.Context) pipeline.RebuildResult
}

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":5001")
	ListenAddr string

	Answerer  mcp.Answerer
	Rebuilder Rebuilder
	Store     storage.Driver

	// Searcher enables GET /search when set.
	Searcher search.Searcher

	// Stats enables GET /stats when set.
	Stats *stats.Tracker

	// MCPServer is mounted at /mcp when set.
	MCPServer *mcp.Server
}
