// Package embeddings defines the text embedding contract shared by indexing
// and querying.
package embeddings

import (
	"context"
	"errors"
)

// ErrEmbedding is returned when embedding generation fails.
var ErrEmbedding = errors.New("embedding failed")

// Embedder provides text embedding capabilities.
type Embedder interface {
	// Embed converts text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}

// BatchEmbedder is implemented by embedders that can embed several inputs in
// one round trip. Output order matches input order.
type BatchEmbedder interface {
	Embedder
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
