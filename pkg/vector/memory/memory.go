// Package memory is an in-process vector driver using brute-force cosine
// similarity. Each driver is one collection.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"sync"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector"
)

// Driver implements vector.Driver in memory.
type Driver struct {
	mu        sync.RWMutex
	name      string
	dimension int
	order     []string
	docs      map[string]vector.Document
	logger    *slog.Logger
}

// NewDriver creates an empty collection. The dimension is fixed by the
// first document added.
func NewDriver(name string, logger *slog.Logger) *Driver {
	return &Driver{
		name:   name,
		docs:   map[string]vector.Document{},
		logger: logger,
	}
}

// NewOpener returns a vector.Opener that creates independent in-memory
// collections.
func NewOpener(logger *slog.Logger) vector.Opener {
	return func(_ context.Context, collection string) (vector.Driver, error) {
		return NewDriver(collection, logger), nil
	}
}

// Add stores documents with their embeddings.
func (d *Driver) Add(_ context.Context, docs []vector.Document) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, doc := range docs {
		if len(doc.Embedding) == 0 {
			return fmt.Errorf("%w: document %s has no embedding", vector.ErrDimensionMismatch, doc.ID)
		}
		if d.dimension == 0 {
			d.dimension = len(doc.Embedding)
		}
		if len(doc.Embedding) != d.dimension {
			return fmt.Errorf("%w: document %s has %d, collection has %d",
				vector.ErrDimensionMismatch, doc.ID, len(doc.Embedding), d.dimension)
		}
	}

	for _, doc := range docs {
		if _, ok := d.docs[doc.ID]; !ok {
			d.order = append(d.order, doc.ID)
		}
		d.docs[doc.ID] = clone(doc)
	}

	d.logger.Debug("added documents to memory collection",
		"collection", d.name,
		"count", len(docs),
	)

	return nil
}

// Query finds the topK most similar documents to the given embedding.
// Ties keep insertion order.
func (d *Driver) Query(_ context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.dimension != 0 && len(embedding) != d.dimension {
		return nil, fmt.Errorf("%w: query has %d, collection has %d",
			vector.ErrDimensionMismatch, len(embedding), d.dimension)
	}

	results := make([]vector.QueryResult, 0, len(d.order))
	for _, id := range d.order {
		doc := d.docs[id]
		results = append(results, vector.QueryResult{
			Document: clone(doc),
			Score:    cosine(doc.Embedding, embedding),
		})
	}

	slices.SortStableFunc(results, func(a, b vector.QueryResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Get retrieves documents by their IDs. Unknown ids are skipped.
func (d *Driver) Get(_ context.Context, ids []string) ([]vector.Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	docs := make([]vector.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := d.docs[id]; ok {
			docs = append(docs, clone(doc))
		}
	}
	return docs, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(_ context.Context, ids []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, id := range ids {
		delete(d.docs, id)
	}
	d.order = slices.DeleteFunc(d.order, func(id string) bool {
		_, ok := d.docs[id]
		return !ok
	})
	return nil
}

// Drop empties the collection.
func (d *Driver) Drop(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.docs = map[string]vector.Document{}
	d.order = nil
	d.dimension = 0
	return nil
}

// Len returns the number of stored documents.
func (d *Driver) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.docs)
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	return nil
}

func clone(doc vector.Document) vector.Document {
	doc.Embedding = slices.Clone(doc.Embedding)
	doc.Metadata = maps.Clone(doc.Metadata)
	return doc
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		if i >= len(b) {
			break
		}
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

var _ vector.Driver = (*Driver)(nil)
