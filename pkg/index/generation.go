package index

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/qa"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector"
)

// Generation is one complete, immutable build: the documents' collection and
// the chain that answers against it.
//
// Queries register as readers with Acquire. A retired generation is released
// by its last reader, not by the swap that retired it.
type Generation struct {
	Collection string
	Documents  int
	BuiltAt    time.Time

	Driver vector.Driver
	Chain  *qa.Chain

	mu       sync.Mutex
	readers  int
	released bool
	onIdle   func()
}

// Acquire registers a reader. It returns false once the generation has been
// retired and released, in which case the caller must load the active
// generation again.
func (g *Generation) Acquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.released {
		return false
	}
	g.readers++
	return true
}

// Release ends a read started by Acquire. The last reader of a retired
// generation runs its release func.
func (g *Generation) Release() {
	g.mu.Lock()
	g.readers--
	fn := g.idle()
	g.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Retire marks the generation as replaced. release runs once no reader holds
// it, immediately if none does now.
func (g *Generation) Retire(release func()) {
	g.mu.Lock()
	g.onIdle = release
	fn := g.idle()
	g.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Readers reports how many queries currently hold the generation.
func (g *Generation) Readers() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.readers
}

// idle returns the release func when it is due. g.mu must be held.
func (g *Generation) idle() func() {
	if g.onIdle == nil || g.readers > 0 || g.released {
		return nil
	}
	g.released = true
	fn := g.onIdle
	g.onIdle = nil
	return fn
}

// Drop removes the generation's collection and releases its driver.
func (g *Generation) Drop(ctx context.Context) error {
	return errors.Join(g.Driver.Drop(ctx), g.Driver.Close())
}
