// Package pipeline runs fetch, normalize and build as one rebuild and swaps
// the result in for the query answerer.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/eventstream"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/fetcher"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/index"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/lock"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/normalizer"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/stats"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage"
)

// ErrRebuildInProgress is returned when a rebuild is requested while another
// one holds the rebuild lock.
var ErrRebuildInProgress = errors.New("rebuild already in progress")

// Fetcher pulls remote articles and writes the snapshot.
type Fetcher interface {
	Fetch(ctx context.Context) (*fetcher.Result, error)
}

// Builder turns documents into a generation or a *index.BuildFailure.
type Builder interface {
	Build(ctx context.Context, docs []normalizer.Document) (*index.Generation, error)
}

// Config wires a Coordinator. Publisher and Stats are optional.
type Config struct {
	Fetcher    Fetcher
	Store      storage.Driver
	Normalizer *normalizer.Normalizer
	Builder    Builder
	Holder     *Holder
	Locker     lock.Locker
	Publisher  eventstream.Publisher
	Stats      *stats.Tracker
	Logger     *slog.Logger
}

// Coordinator serializes rebuilds and owns every generation it swaps in.
type Coordinator struct {
	config Config
	logger *slog.Logger

	mu sync.Mutex
}

// NewCoordinator validates c and returns a Coordinator.
func NewCoordinator(c Config) (*Coordinator, error) {
	switch {
	case c.Fetcher == nil:
		return nil, errors.New("coordinator requires a fetcher")
	case c.Store == nil:
		return nil, errors.New("coordinator requires a storage driver")
	case c.Normalizer == nil:
		return nil, errors.New("coordinator requires a normalizer")
	case c.Builder == nil:
		return nil, errors.New("coordinator requires a builder")
	case c.Holder == nil:
		return nil, errors.New("coordinator requires a holder")
	case c.Locker == nil:
		return nil, errors.New("coordinator requires a locker")
	}

	return &Coordinator{
		config: c,
		logger: c.Logger,
	}, nil
}

// Rebuild runs a full fetch, normalize and build, then swaps the new
// generation in. A concurrent call is rejected with ErrRebuildInProgress.
// On any failure the active generation is left untouched.
func (c *Coordinator) Rebuild(ctx context.Context) RebuildResult {
	start := time.Now()

	acquired, err := c.config.Locker.TryLock(ctx)
	if err != nil {
		return RebuildResult{Err: fmt.Errorf("acquiring rebuild lock: %w", err)}
	}
	if !acquired {
		c.logger.Warn("rebuild rejected, another rebuild is running")
		return RebuildResult{Err: ErrRebuildInProgress}
	}
	defer func() {
		if err := c.config.Locker.Unlock(context.WithoutCancel(ctx)); err != nil {
			c.logger.Warn("failed to release rebuild lock", "error", err)
		}
	}()

	c.logger.Info("rebuild started")
	result := c.rebuild(ctx)
	result.Duration = time.Since(start)

	if result.OK() {
		c.logger.Info("rebuild finished",
			"collection", result.Generation.Collection,
			"documents", result.Valid,
			"duration", result.Duration,
		)
	} else {
		c.logger.Error("rebuild failed, previous index remains active", "error", result.Err)
	}

	c.record(ctx, start, result)
	return result
}

func (c *Coordinator) rebuild(ctx context.Context) RebuildResult {
	var result RebuildResult

	fetched, err := c.config.Fetcher.Fetch(ctx)
	if err != nil {
		result.Err = fmt.Errorf("fetching articles: %w", err)
		return result
	}
	result.Fetched = len(fetched.Records)
	if c.config.Stats != nil {
		c.config.Stats.RecordFetch(result.Fetched)
	}

	articles, err := c.config.Store.LoadSnapshot(ctx)
	if err != nil {
		result.Err = fmt.Errorf("loading snapshot: %w", err)
		return result
	}

	supplemental, err := c.config.Store.LoadSupplemental(ctx)
	if err != nil {
		result.Err = fmt.Errorf("loading supplemental records: %w", err)
		return result
	}

	normalized := c.config.Normalizer.Normalize(articles, supplemental)
	result.Valid = len(normalized.Valid)
	result.Invalid = len(normalized.Invalid)

	gen, err := c.config.Builder.Build(ctx, normalized.Valid)
	if err != nil {
		result.Err = err
		return result
	}

	// The caller went away while building: discard rather than swap.
	if err := ctx.Err(); err != nil {
		c.drop(gen)
		result.Err = fmt.Errorf("rebuild cancelled: %w", err)
		return result
	}

	c.swap(gen)
	result.Generation = gen
	return result
}

// swap installs gen and retires the generation it replaces. The replaced
// generation is dropped once the last query holding it finishes.
func (c *Coordinator) swap(gen *index.Generation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.retire(c.config.Holder.Swap(gen))
}

func (c *Coordinator) retire(g *index.Generation) {
	if g == nil {
		return
	}
	if n := g.Readers(); n > 0 {
		c.logger.Debug("generation retired, waiting for queries", "collection", g.Collection, "readers", n)
	}
	g.Retire(func() { c.drop(g) })
}

func (c *Coordinator) drop(g *index.Generation) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := g.Drop(ctx); err != nil {
		c.logger.Warn("failed to drop generation", "collection", g.Collection, "error", err)
		return
	}
	c.logger.Debug("dropped generation", "collection", g.Collection)
}

func (c *Coordinator) record(ctx context.Context, start time.Time, result RebuildResult) {
	if c.config.Stats != nil {
		c.config.Stats.RecordRebuild(time.Now(), result.OK())
	}

	if c.config.Publisher == nil {
		return
	}

	meta := eventstream.RebuildMeta{
		Fetched:     result.Fetched,
		Valid:       result.Valid,
		Invalid:     result.Invalid,
		StartedAt:   start.UTC(),
		CompletedAt: start.Add(result.Duration).UTC(),
		DurationMs:  result.Duration.Milliseconds(),
	}
	if result.Generation != nil {
		meta.Collection = result.Generation.Collection
	}
	if result.Err != nil {
		meta.Error = result.Err.Error()
		var failure *index.BuildFailure
		if errors.As(result.Err, &failure) {
			meta.FailureKind = failure.Kind.String()
		}
	}

	if err := c.config.Publisher.PublishRebuild(context.WithoutCancel(ctx), eventstream.NewRebuildEvent(meta)); err != nil {
		c.logger.Warn("failed to publish rebuild event", "error", err)
	}
}

// Close retires the active generation. Retired generations still held by a
// query are dropped when that query finishes.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.retire(c.config.Holder.Swap(nil))
	return nil
}
