// Package index builds index generations: it embeds normalized documents,
// writes the embedding audit log, loads a fresh vector collection and binds
// a QA chain to it.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/embeddings"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/llm"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/normalizer"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/qa"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/worker"
)

// DefaultCollection is the base name for generation collections.
const DefaultCollection = "ragbot"

// Config wires a Builder.
type Config struct {
	// Embedder is shared with the QA chain so queries and documents live in
	// the same embedding space.
	Embedder embeddings.Embedder

	// Opener creates the vector collection for each generation.
	Opener vector.Opener

	Generator llm.Generator
	Prompt    *qa.Prompt
	TopK      int

	// Collection is the base name; each generation appends its build time.
	Collection string

	// EmbeddingLogPath is overwritten on every build. Empty disables the log.
	EmbeddingLogPath string

	// Workers bounds concurrent embedding requests.
	Workers uint

	Logger *slog.Logger

	// Now is the clock used for collection names. Defaults to time.Now.
	Now func() time.Time
}

// Builder turns normalized documents into an index generation.
type Builder struct {
	config Config
	pool   *worker.Pool
	logger *slog.Logger
}

// NewBuilder validates c and starts the embedding worker pool. Call Close to
// stop it.
func NewBuilder(c Config) (*Builder, error) {
	if c.Embedder == nil {
		return nil, errors.New("index builder requires an embedder")
	}
	if c.Opener == nil {
		return nil, errors.New("index builder requires a vector opener")
	}
	if c.Generator == nil {
		return nil, errors.New("index builder requires a generator")
	}
	if c.Prompt == nil {
		return nil, errors.New("index builder requires a prompt")
	}
	if c.Collection == "" {
		c.Collection = DefaultCollection
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if err := vector.ValidateCollection(c.Collection); err != nil {
		return nil, err
	}

	pool, err := worker.NewPool(&worker.Config{
		Embedder:   c.Embedder,
		NumWorkers: c.Workers,
		Logger:     c.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedding pool: %w", err)
	}

	return &Builder{
		config: c,
		pool:   pool,
		logger: c.Logger,
	}, nil
}

// Build embeds each document once, writes the embedding log, loads the
// documents into a new collection and binds a chain to it. On failure it
// returns a *BuildFailure and drops whatever it had created.
func (b *Builder) Build(ctx context.Context, docs []normalizer.Document) (*Generation, error) {
	if len(docs) == 0 {
		b.logger.Warn("No valid documents with non-empty body found.")
		return nil, &BuildFailure{Kind: NoValidDocuments, Err: ErrNoValidDocuments}
	}

	contents := make([]string, len(docs))
	for i, d := range docs {
		contents[i] = d.Content
	}

	vectors, err := b.pool.Embed(ctx, contents)
	if err != nil {
		return nil, buildError("generating embeddings", err)
	}
	b.logger.Info(fmt.Sprintf("Total embeddings generated: %d", len(vectors)))

	if b.config.EmbeddingLogPath != "" {
		if err := WriteEmbeddingLog(b.config.EmbeddingLogPath, docs, vectors); err != nil {
			return nil, buildError("writing embedding log", err)
		}
	}

	builtAt := b.config.Now()
	collection := vector.GenerationCollection(b.config.Collection, builtAt)

	driver, err := b.config.Opener(ctx, collection)
	if err != nil {
		return nil, buildError("opening vector collection", err)
	}

	vdocs := make([]vector.Document, len(docs))
	for i, d := range docs {
		vdocs[i] = vector.Document{
			ID:        vector.RowKey(d.ID, i),
			Content:   d.Content,
			Metadata:  d.Metadata,
			Embedding: vectors[i],
		}
	}

	if err := driver.Add(ctx, vdocs); err != nil {
		b.discard(driver, collection)
		return nil, buildError("loading vector collection", err)
	}
	b.logger.Info("Vector store successfully rebuilt.")

	chain, err := qa.NewChain(qa.ChainConfig{
		Embedder:  b.config.Embedder,
		Driver:    driver,
		Generator: b.config.Generator,
		Prompt:    b.config.Prompt,
		TopK:      b.config.TopK,
	})
	if err != nil {
		b.discard(driver, collection)
		return nil, buildError("initializing QA chain", err)
	}
	b.logger.Info("QA chain initialized successfully.")

	return &Generation{
		Collection: collection,
		Documents:  len(docs),
		BuiltAt:    builtAt,
		Driver:     driver,
		Chain:      chain,
	}, nil
}

// Close stops the embedding workers.
func (b *Builder) Close() error {
	b.pool.Close()
	return nil
}

func (b *Builder) discard(driver vector.Driver, collection string) {
	// Dropped with a fresh context: the build context may be what failed.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := driver.Drop(ctx); err != nil {
		b.logger.Warn("failed to drop partial collection", "collection", collection, "error", err)
	}
	if err := driver.Close(); err != nil {
		b.logger.Warn("failed to close partial collection", "collection", collection, "error", err)
	}
}
