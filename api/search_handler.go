package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	apisearch "github.com/jskoiz/llama3-chatbot-with-rag/api/search"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/pipeline"
)

// handleSearchEndpoint handles GET /search requests.
// Query parameters:
//   - query (required): the search query text
//   - top_k (optional, default 5): number of results to return
func (s *Server) handleSearchEndpoint(c *fiber.Ctx) error {
	if s.config.Searcher == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error: "search is not configured",
		})
	}

	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "query parameter is required",
		})
	}

	topK := apisearch.DefaultTopK
	if topKStr := c.Query("top_k"); topKStr != "" {
		parsed, err := strconv.Atoi(topKStr)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: "top_k must be a positive integer",
			})
		}
		topK = parsed
	}

	output, err := apisearch.Search(c.UserContext(), query, topK, s.config.Searcher, s.logger)
	if errors.Is(err, pipeline.ErrNoActiveIndex) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error: err.Error(),
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: err.Error(),
		})
	}

	return c.JSON(output)
}
