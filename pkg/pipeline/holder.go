package pipeline

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/index"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/qa"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector"
)

// ErrNoActiveIndex is returned by Search before the first successful rebuild.
var ErrNoActiveIndex = errors.New("no active index")

// Holder owns the active generation. The coordinator is its only writer;
// readers acquire it once per query and keep that snapshot for the whole call.
type Holder struct {
	current atomic.Pointer[index.Generation]
}

// NewHolder creates an empty holder.
func NewHolder() *Holder {
	return &Holder{}
}

// Load returns the active generation, or nil before the first successful
// rebuild. It does not register a reader; queries use Acquire.
func (h *Holder) Load() *index.Generation {
	return h.current.Load()
}

// Swap makes g active and returns the generation it replaced.
func (h *Holder) Swap(g *index.Generation) *index.Generation {
	return h.current.Swap(g)
}

// Acquire returns the active generation with a reader registered on it and
// the func that ends the read. Both are nil when no generation is active.
func (h *Holder) Acquire() (*index.Generation, func()) {
	for {
		g := h.current.Load()
		if g == nil {
			return nil, nil
		}
		// A failed Acquire means g was retired and released after the load;
		// the holder already points past it.
		if g.Acquire() {
			return g, g.Release
		}
	}
}

// ActiveRunner implements qa.ChainSource.
func (h *Holder) ActiveRunner() (qa.Runner, func()) {
	g, release := h.Acquire()
	if g == nil {
		return nil, nil
	}
	if g.Chain == nil {
		release()
		return nil, nil
	}
	return g.Chain, release
}

// Search runs a similarity search against the active generation.
func (h *Holder) Search(ctx context.Context, query string, k int) ([]vector.QueryResult, error) {
	g, release := h.Acquire()
	if g == nil {
		return nil, ErrNoActiveIndex
	}
	defer release()

	if g.Chain == nil {
		return nil, ErrNoActiveIndex
	}
	return g.Chain.Search(ctx, query, k)
}
