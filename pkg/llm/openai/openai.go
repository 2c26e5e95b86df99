// Package openai generates completions with the OpenAI chat completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/llm"
)

const (
	DefaultBaseURL = "https://api.openai.com"
	DefaultModel   = "gpt-4o-mini"
)

// Config configures the OpenAI generator.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generator calls /v1/chat/completions with the prompt as a single user turn.
type Generator struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai generator requires an API key")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}

	return &Generator{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	data, err := json.Marshal(chatRequest{
		Model:    g.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: openai request: %v", llm.ErrGeneration, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: openai API error (status %d): %s", llm.ErrGeneration, resp.StatusCode, string(body))
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("%w: openai error: %s", llm.ErrGeneration, result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", llm.ErrGeneration)
	}

	return result.Choices[0].Message.Content, nil
}

var _ llm.Generator = (*Generator)(nil)
