// Package vectorutils builds vector store openers from configuration.
package vectorutils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector/chroma"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector/memory"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector/pgvector"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector/qdrant"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector/sqlitevec"
)

type NewVectorOpenerOpts struct {
	ProviderType string
	Target       string
	Dimensions   uint
	Logger       *slog.Logger
}

// NewVectorOpener returns an opener for the configured provider and a
// function that releases any shared connection it holds.
func NewVectorOpener(ctx context.Context, o *NewVectorOpenerOpts) (vector.Opener, func() error, error) {
	noop := func() error { return nil }

	switch o.ProviderType {
	case "", "memory":
		return memory.NewOpener(o.Logger), noop, nil
	case "chroma":
		if o.Target == "" {
			return nil, nil, fmt.Errorf("chroma requires a vector store target URL")
		}
		return chroma.NewOpener(chroma.Config{URL: o.Target}, o.Logger), noop, nil
	case "sqlite", "sqlitevec":
		if o.Target == "" {
			return nil, nil, fmt.Errorf("sqlite-vec requires a database path as target")
		}
		return sqlitevec.NewOpener(sqlitevec.Config{
			DBPath:     o.Target,
			Dimensions: o.Dimensions,
		}, o.Logger), noop, nil
	case "qdrant":
		return qdrant.NewOpener(qdrant.Config{
			Target:     o.Target,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "pgvector", "postgres":
		return pgvector.NewOpener(ctx, pgvector.Config{
			ConnString: o.Target,
			Dimensions: o.Dimensions,
		}, o.Logger)
	default:
		return nil, nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
