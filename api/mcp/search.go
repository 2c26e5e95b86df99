package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jskoiz/llama3-chatbot-with-rag/api/search"
)

var (
	searchToolName    = "search"
	searchDescription = "Search the indexed help-center articles and supplemental Q&A. Returns the most similar documents with their scores."
)

// SearchInput represents the input arguments for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query text"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of results to return (default: 5)"`
}

// handleSearch processes a search request.
func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, search.SearchOutput, error) {
	output, err := search.Search(ctx, input.Query, input.TopK, s.config.Searcher, s.config.Logger)
	if err != nil {
		s.config.Logger.Error("MCP search failed", "error", err)
		return errorResult(fmt.Sprintf("Search failed: %v", err)), search.SearchOutput{}, nil
	}

	// Structured output is also serialized into a text block for clients
	// that only read content.
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to serialize results: %v", err)), search.SearchOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, *output, nil
}
