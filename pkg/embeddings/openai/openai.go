// Package openai implements an Embedder for OpenAI-compatible /embeddings
// endpoints.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/embeddings"
)

const (
	// DefaultBaseURL is the public OpenAI API.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is used when Config.Model is empty.
	DefaultModel = "text-embedding-3-small"
)

// Config configures the embeddings client.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string

	// Dimensions requests shortened vectors from models that support it.
	Dimensions uint

	Timeout    time.Duration
	MaxRetries int
}

// Embedder is an OpenAI-compatible embeddings client.
type Embedder struct {
	baseURL    string
	apiKey     string
	model      string
	dimensions uint
	client     *http.Client
	maxRetries int
}

type embedRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions uint     `json:"dimensions,omitempty"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// NewEmbedder creates a new embeddings client.
func NewEmbedder(cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai embedder requires an API key")
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
		timeout = 30 * time.Second
	}
	retries := cfg.MaxRetries
	if retries == 0 {
		retries = 5
	}

	return &Embedder{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		model:      model,
		dimensions: cfg.Dimensions,
		client:     &http.Client{Timeout: timeout},
		maxRetries: retries,
	}, nil
}

// Embed returns an embedding vector for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch embeds texts in one request. 429 and 5xx responses are retried
// with exponential backoff, honouring Retry-After when present.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	body, err := json.Marshal(embedRequest{Input: texts, Model: e.model, Dimensions: e.dimensions})
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", embeddings.ErrEmbedding, err)
	}

	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		out, wait, err := e.do(ctx, body, len(texts))
		if err == nil {
			return out, nil
		}
		lastErr = err
		if wait < 0 || attempt == e.maxRetries {
			break
		}
		if wait == 0 {
			wait = retryDelay(attempt)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", embeddings.ErrEmbedding, ctx.Err())
		case <-time.After(wait):
		}
	}

	return nil, lastErr
}

// do performs one request. A negative wait means the error is not retryable.
func (e *Embedder) do(ctx context.Context, body []byte, want int) ([][]float32, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, -1, fmt.Errorf("%w: creating request: %v", embeddings.ErrEmbedding, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, -1, fmt.Errorf("%w: %v", embeddings.ErrEmbedding, ctx.Err())
		}
		return nil, 0, fmt.Errorf("%w: sending request: %v", embeddings.ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		var wait time.Duration
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			wait = time.Duration(secs) * time.Second
		}
		return nil, wait, fmt.Errorf("%w: openai returned %s", embeddings.ErrEmbedding, resp.Status)
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, -1, fmt.Errorf("%w: openai returned %s: %s", embeddings.ErrEmbedding, resp.Status, strings.TrimSpace(string(msg)))
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, 0, fmt.Errorf("%w: decoding response: %v", embeddings.ErrEmbedding, err)
	}
	if len(out.Data) != want {
		return nil, -1, fmt.Errorf("%w: expected %d embeddings, got %d", embeddings.ErrEmbedding, want, len(out.Data))
	}

	vecs := make([][]float32, want)
	for i, d := range out.Data {
		idx := d.Index
		if idx < 0 || idx >= want || vecs[idx] != nil {
			idx = i
		}
		vecs[idx] = d.Embedding
	}
	return vecs, 0, nil
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	return nil
}

func retryDelay(attempt int) time.Duration {
	d := 200 * time.Millisecond << attempt
	return min(d, 5*time.Second)
}

var _ embeddings.BatchEmbedder = (*Embedder)(nil)
