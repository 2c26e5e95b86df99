package vector

import "errors"

var (
	// ErrNotFound is returned when a document is not found in the vector store.
	ErrNotFound = errors.New("document not found")

	// ErrDimensionMismatch is returned when an embedding has the wrong length
	// for the collection.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrConnection is returned when the vector store connection fails.
	ErrConnection = errors.New("vector store connection failed")

	// ErrInvalidCollection is returned for collection names that are not
	// plain identifiers.
	ErrInvalidCollection = errors.New("invalid collection name")
)
