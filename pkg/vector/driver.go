// Package vector provides the similarity-search storage used by an index
// generation, with one driver per backing store.
package vector

import "context"

// Document represents a stored item with its embedding and metadata.
type Document struct {
	// ID is the document identifier (the article or supplemental id).
	ID string

	// Content is the indexed text handed to the prompt on retrieval.
	Content string

	// Metadata holds flat primitive values (string, int64, float64, bool).
	Metadata map[string]any

	// Embedding is the vector representation of Content.
	Embedding []float32
}

// QueryResult represents a search result with similarity score.
type QueryResult struct {
	Document

	// Score represents the similarity score (higher = more similar).
	Score float32
}

// Driver handles storage and retrieval of vector embeddings for a single
// collection.
type Driver interface {
	// Add stores documents with their embeddings.
	// If a document with the same ID already exists, implementers should update
	// the document.
	Add(ctx context.Context, docs []Document) error

	// Query finds the topK most similar documents to the given embedding.
	Query(ctx context.Context, embedding []float32, topK int) ([]QueryResult, error)

	// Get retrieves documents by their IDs.
	Get(ctx context.Context, ids []string) ([]Document, error)

	// Delete removes documents by their IDs.
	Delete(ctx context.Context, ids []string) error

	// Drop removes the whole collection from the backing store.
	Drop(ctx context.Context) error

	// Close releases any resources held by the driver.
	Close() error
}

// Opener creates a driver bound to a fresh, named collection. Every index
// generation opens its own collection so a rebuild never writes into the one
// being served.
type Opener func(ctx context.Context, collection string) (Driver, error)
