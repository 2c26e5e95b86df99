// Package search provides shared search types and logic for similarity search
// over the active index. It is used by both the REST API endpoint and the MCP
// server tool.
package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/utils"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector"
)

const (
	// DefaultTopK is used when the caller asks for zero or fewer results.
	DefaultTopK = 5

	previewLen = 280
)

// Searcher runs a similarity search. *pipeline.Holder implements it against
// the active generation.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]vector.QueryResult, error)
}

// SearchInput represents the input arguments for a search request.
type SearchInput struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// SearchResult represents a single retrieved document.
type SearchResult struct {
	ID      string  `json:"id"`
	Score   float32 `json:"score"`
	Title   string  `json:"title"`
	Preview string  `json:"preview"`
}

// SearchOutput represents the output of a search operation.
type SearchOutput struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

// Search embeds query and returns the topK closest documents of the active
// index.
func Search(
	ctx context.Context,
	query string,
	topK int,
	searcher Searcher,
	logger *slog.Logger,
) (*SearchOutput, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	logger.Debug("search request", "query", query, "top_k", topK)

	results, err := searcher.Search(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	searchResults := make([]SearchResult, 0, len(results))
	for _, result := range results {
		searchResults = append(searchResults, BuildSearchResult(result))
	}

	return &SearchOutput{
		Query:   query,
		Results: searchResults,
		Count:   len(searchResults),
	}, nil
}

// BuildSearchResult converts a vector query result into a SearchResult.
func BuildSearchResult(result vector.QueryResult) SearchResult {
	title, _ := result.Metadata["title"].(string)
	return SearchResult{
		ID:      vector.SourceID(result.Document),
		Score:   result.Score,
		Title:   title,
		Preview: utils.Truncate(result.Content, previewLen),
	}
}
