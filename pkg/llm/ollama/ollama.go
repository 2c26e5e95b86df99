// Package ollama generates completions with a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/llm"
)

const (
	// DefaultBaseURL is the default Ollama server URL.
	DefaultBaseURL = "http://localhost:11434"

	// DefaultModel is the fine-tuned help-center model the bot was deployed with.
	DefaultModel = "trojan-chat-bot"
)

// Config configures the Ollama generator.
type Config struct {
	BaseURL string
	Model   string

	// Options are passed through as Ollama model options (temperature, num_predict, ...).
	Options map[string]any

	Timeout time.Duration
}

// Generator streams completions from /api/generate and concatenates them.
type Generator struct {
	client  *api.Client
	model   string
	options map[string]any
}

// NewGenerator creates a generator bound to a single model.
func NewGenerator(cfg Config) (*Generator, error) {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing ollama url %q: %w", base, err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}

	return &Generator{
		client:  api.NewClient(u, &http.Client{Timeout: timeout}),
		model:   model,
		options: cfg.Options,
	}, nil
}

// Generate sends prompt to the model and returns the full response text.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	req := &api.GenerateRequest{
		Model:   g.model,
		Prompt:  prompt,
		Options: g.options,
	}

	var sb strings.Builder
	err := g.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		_, err := sb.WriteString(resp.Response)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%w: ollama: %v", llm.ErrGeneration, err)
	}

	return sb.String(), nil
}

var _ llm.Generator = (*Generator)(nil)
