package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/pipeline"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse acknowledges an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// QueryRequest is the body of POST /intercom.
type QueryRequest struct {
	Body string `json:"body"`
}

// QueryResponse is the answer to POST /intercom.
type QueryResponse struct {
	Response  string  `json:"response"`
	TimeTaken float64 `json:"time_taken"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleQuery answers the question in the request body.
func (s *Server) handleQuery(c *fiber.Ctx) error {
	var req QueryRequest
	if err := c.BodyParser(&req); err != nil || req.Body == "" {
		s.logger.Error("No query provided in the request")
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "No query provided"})
	}

	resp := s.config.Answerer.Answer(c.UserContext(), req.Body)
	return c.JSON(QueryResponse{
		Response:  resp.Text,
		TimeTaken: resp.Latency,
	})
}

// handleRebuild runs a rebuild and answers once it has finished.
func (s *Server) handleRebuild(c *fiber.Ctx) error {
	result := s.config.Rebuilder.Rebuild(c.UserContext())

	switch {
	case errors.Is(result.Err, pipeline.ErrRebuildInProgress):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: result.Err.Error()})
	case !result.OK():
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: result.Err.Error()})
	}

	return c.JSON(MessageResponse{Message: "Vector store rebuilt"})
}

// handleStats returns the process counters.
func (s *Server) handleStats(c *fiber.Ctx) error {
	if s.config.Stats == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "stats are not enabled"})
	}
	return c.JSON(s.config.Stats.Snapshot())
}
