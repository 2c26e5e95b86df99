package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	askToolName    = "ask"
	askDescription = "Answer a question using the help-center articles and supplemental Q&A indexed by ragbot. Returns the answer and the time taken in seconds."
)

// AskInput represents the input arguments for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer"`
}

// AskOutput mirrors the response of POST /intercom.
type AskOutput struct {
	Response  string  `json:"response"`
	TimeTaken float64 `json:"time_taken"`
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return errorResult("question is required"), AskOutput{}, nil
	}

	s.config.Logger.Debug("MCP ask request", "question", input.Question)

	resp := s.config.Answerer.Answer(ctx, input.Question)
	output := AskOutput{
		Response:  resp.Text,
		TimeTaken: resp.Latency,
	}

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to serialize answer: %v", err)), AskOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
