// Package pipelineutils assembles the rebuild pipeline and the query answerer
// from configuration.
package pipelineutils

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/config"
	embeddingutils "github.com/jskoiz/llama3-chatbot-with-rag/pkg/embeddings/utils"
	eventstreamutils "github.com/jskoiz/llama3-chatbot-with-rag/pkg/eventstream/utils"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/fetcher"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/index"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/intercom"
	llmutils "github.com/jskoiz/llama3-chatbot-with-rag/pkg/llm/utils"
	lockutils "github.com/jskoiz/llama3-chatbot-with-rag/pkg/lock/utils"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/normalizer"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/pipeline"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/qa"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/stats"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage"
	storageutils "github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage/utils"
	vectorutils "github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector/utils"
)

// Stack is a fully wired pipeline. Close releases everything it opened, in
// reverse order.
type Stack struct {
	Store       storage.Driver
	Intercom    *intercom.Client
	Fetcher     *fetcher.Fetcher
	Holder      *pipeline.Holder
	Coordinator *pipeline.Coordinator
	Answerer    *qa.Answerer
	Stats       *stats.Tracker

	closers []func() error
}

// NewStack builds every provider named in cfg.
func NewStack(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stack, error) {
	s := &Stack{
		Holder: pipeline.NewHolder(),
		Stats:  stats.NewTracker(),
	}

	if err := s.build(ctx, cfg, logger); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Stack) build(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := storageutils.NewDriver(&storageutils.NewDriverOpts{
		ProviderType:     cfg.Storage.Provider,
		SnapshotPath:     cfg.Storage.SnapshotPath,
		SupplementalPath: cfg.Storage.SupplementalPath,
	})
	if err != nil {
		return fmt.Errorf("creating storage driver: %w", err)
	}
	s.Store = store
	s.closers = append(s.closers, store.Close)

	s.Intercom, err = intercom.NewClient(intercom.Config{
		BaseURL:   cfg.Intercom.BaseURL,
		Token:     cfg.Intercom.Token,
		RateLimit: cfg.Intercom.RateLimit,
	}, logger)
	if err != nil {
		return fmt.Errorf("creating intercom client: %w", err)
	}
	s.Fetcher = fetcher.New(s.Intercom, store, logger)

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
		APIKey:       cfg.Embedding.APIKey,
		Dimensions:   cfg.Embedding.Dimensions,
	})
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	s.closers = append(s.closers, embedder.Close)

	opener, closeVector, err := vectorutils.NewVectorOpener(ctx, &vectorutils.NewVectorOpenerOpts{
		ProviderType: cfg.VectorStore.Provider,
		Target:       cfg.VectorStore.Target,
		Dimensions:   cfg.Embedding.Dimensions,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("creating vector store: %w", err)
	}
	s.closers = append(s.closers, closeVector)

	generator, err := llmutils.NewGenerator(&llmutils.NewGeneratorOpts{
		ProviderType: cfg.LLM.Provider,
		TargetURL:    cfg.LLM.Target,
		Model:        cfg.LLM.Model,
		APIKey:       cfg.LLM.APIKey,
	})
	if err != nil {
		return fmt.Errorf("creating generator: %w", err)
	}

	prompt, err := qa.NewPrompt(cfg.QA.PromptTemplate)
	if err != nil {
		return err
	}

	builder, err := index.NewBuilder(index.Config{
		Embedder:         embedder,
		Opener:           opener,
		Generator:        generator,
		Prompt:           prompt,
		TopK:             int(cfg.QA.TopK),
		Collection:       cfg.VectorStore.Collection,
		EmbeddingLogPath: cfg.Storage.EmbeddingLogPath,
		Workers:          cfg.Embedding.Workers,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("creating index builder: %w", err)
	}
	s.closers = append(s.closers, builder.Close)

	locker, closeLock, err := lockutils.NewLocker(ctx, &lockutils.NewLockerOpts{
		ProviderType: cfg.Lock.Provider,
		RedisAddr:    cfg.Lock.RedisAddr,
		TTL:          cfg.Lock.TTL,
	})
	if err != nil {
		return fmt.Errorf("creating rebuild lock: %w", err)
	}
	s.closers = append(s.closers, closeLock)

	publisher, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		ProviderType: cfg.EventStream.Provider,
		Brokers:      cfg.EventStream.Brokers,
		Topic:        cfg.EventStream.Topic,
	})
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}
	s.closers = append(s.closers, publisher.Close)

	s.Coordinator, err = pipeline.NewCoordinator(pipeline.Config{
		Fetcher:    s.Fetcher,
		Store:      store,
		Normalizer: normalizer.New(logger),
		Builder:    builder,
		Holder:     s.Holder,
		Locker:     locker,
		Publisher:  publisher,
		Stats:      s.Stats,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	s.closers = append(s.closers, s.Coordinator.Close)

	s.Answerer = qa.NewAnswerer(s.Holder, logger, qa.WithQueryRecorder(s.Stats))
	return nil
}

// RetryPolicy converts the rebuild section of cfg into a startup policy.
func RetryPolicy(cfg *config.Config) pipeline.RetryPolicy {
	policy := pipeline.DefaultRetryPolicy()
	if cfg.Rebuild.StartupAttempts > 0 {
		policy.Attempts = cfg.Rebuild.StartupAttempts
	}
	if cfg.Rebuild.StartupBackoff > 0 {
		policy.InitialBackoff = cfg.Rebuild.StartupBackoff
	}
	return policy
}

// Close releases resources in reverse order of creation.
func (s *Stack) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
