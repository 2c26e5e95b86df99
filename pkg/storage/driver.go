// Package storage persists the pipeline's file-backed inputs: the ingestion
// snapshot of raw articles and the append-only supplemental Q&A store.
package storage

import (
	"context"
)

// Driver defines the interface for persisting and retrieving pipeline inputs.
type Driver interface {
	// SaveSnapshot replaces the ingestion snapshot with records.
	SaveSnapshot(ctx context.Context, records []Record) error

	// LoadSnapshot returns the current ingestion snapshot. A missing snapshot
	// is reported as ErrNoSnapshot.
	LoadSnapshot(ctx context.Context) ([]Record, error)

	// AppendSupplemental adds one record to the supplemental store.
	AppendSupplemental(ctx context.Context, rec SupplementalRecord) error

	// LoadSupplemental returns every supplemental record in insertion order.
	// A missing store is an empty store.
	LoadSupplemental(ctx context.Context) ([]SupplementalRecord, error)

	// Close releases any resources held by the driver.
	Close() error
}
