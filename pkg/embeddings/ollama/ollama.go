// Package ollama embeds text through a local Ollama server's /api/embed.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/embeddings"
)

const (
	// DefaultEmbeddingModel produces the 384-dimension vectors the index is
	// sized for by default.
	DefaultEmbeddingModel = "all-minilm"

	DefaultBaseURL = "http://localhost:11434"
)

// Embedder sends texts to Ollama in a single request per call.
type Embedder struct {
	client *api.Client
	model  string
}

type EmbedderConfig struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// Model defaults to DefaultEmbeddingModel.
	Model string

	// Timeout bounds a single embed request. Defaults to two minutes, which
	// covers a cold model load.
	Timeout time.Duration
}

func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing ollama url %q: %w", base, err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}

	return &Embedder{
		client: api.NewClient(u, &http.Client{Timeout: timeout}),
		model:  model,
	}, nil
}

// Embed returns the vector for one text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.embed(ctx, text, 1)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns one vector per text, in order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	return e.embed(ctx, texts, len(texts))
}

func (e *Embedder) embed(ctx context.Context, input any, want int) ([][]float32, error) {
	resp, err := e.client.Embed(ctx, &api.EmbedRequest{
		Model: e.model,
		Input: input,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: ollama %s: %w", embeddings.ErrEmbedding, e.model, err)
	}

	if got := len(resp.Embeddings); got != want {
		return nil, fmt.Errorf("%w: ollama %s returned %d vectors for %d inputs", embeddings.ErrEmbedding, e.model, got, want)
	}

	return resp.Embeddings, nil
}

// Close is a no-op; the underlying client holds no connections of its own.
func (e *Embedder) Close() error {
	return nil
}

var _ embeddings.BatchEmbedder = (*Embedder)(nil)
