// Package worker provides a bounded worker pool for generating embeddings
// with the provided embeddings.Embedder.
//
// The pool caps how many embedding requests are in flight at once so a
// rebuild over thousands of articles does not flood the embedding backend.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/embeddings"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
	defaultBatchSize    uint = 16
)

// ErrPoolClosed is returned by Embed after Close.
var ErrPoolClosed = errors.New("worker pool closed")

// Job is a unit of work for the worker pool to execute against: a
// contiguous slice of the texts submitted by one Embed call.
type Job struct {
	ctx    context.Context
	offset int
	texts  []string
	reply  chan<- result
}

type result struct {
	offset  int
	vectors [][]float32
	err     error
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Embedder generates the embeddings. When it also implements
	// embeddings.BatchEmbedder, each job is embedded in one call.
	Embedder embeddings.Embedder

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// BatchSize is the number of texts per job for batch embedders
	// (defaults to 16). Plain embedders always get one text per job.
	BatchSize uint

	Logger *slog.Logger
}

// Pool processes embedding jobs on a fixed set of workers.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Embedder == nil {
		return nil, errors.New("worker pool requires an embedder")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.BatchSize == 0 {
		c.BatchSize = defaultBatchSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Embed embeds every text exactly once and returns the vectors in input
// order. The first failure cancels the jobs that have not started yet.
func (p *Pool) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	size := 1
	if _, ok := p.config.Embedder.(embeddings.BatchEmbedder); ok {
		size = int(p.config.BatchSize) //nolint:gosec // bounded by config
	}

	numJobs := (len(texts) + size - 1) / size
	replies := make(chan result, numJobs)

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return nil, ErrPoolClosed
	}
	enqueued := 0
	for offset := 0; offset < len(texts); offset += size {
		end := min(offset+size, len(texts))
		job := Job{ctx: ctx, offset: offset, texts: texts[offset:end], reply: replies}
		select {
		case p.queue <- job:
			enqueued++
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	p.mu.RUnlock()

	p.logger.Debug("embedding jobs queued", "jobs", enqueued, "texts", len(texts))

	out := make([][]float32, len(texts))
	var firstErr error
	for range enqueued {
		r := <-replies
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
				cancel()
			}
			continue
		}
		copy(out[r.offset:], r.vectors)
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close signals workers to stop and waits for in-flight jobs to drain.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		job.reply <- p.processJob(job)
	}

	p.logger.Debug("embedding worker stopped", "worker_id", id)
}

func (p *Pool) processJob(job Job) result {
	if err := job.ctx.Err(); err != nil {
		return result{offset: job.offset, err: err}
	}

	if batch, ok := p.config.Embedder.(embeddings.BatchEmbedder); ok {
		vecs, err := batch.EmbedBatch(job.ctx, job.texts)
		if err != nil {
			return result{offset: job.offset, err: fmt.Errorf("embedding batch at %d: %w", job.offset, err)}
		}
		if len(vecs) != len(job.texts) {
			return result{offset: job.offset, err: fmt.Errorf("%w: batch at %d returned %d vectors for %d texts",
				embeddings.ErrEmbedding, job.offset, len(vecs), len(job.texts))}
		}
		return result{offset: job.offset, vectors: vecs}
	}

	vecs := make([][]float32, len(job.texts))
	for i, text := range job.texts {
		vec, err := p.config.Embedder.Embed(job.ctx, text)
		if err != nil {
			return result{offset: job.offset, err: fmt.Errorf("embedding text %d: %w", job.offset+i, err)}
		}
		vecs[i] = vec
	}
	return result{offset: job.offset, vectors: vecs}
}
