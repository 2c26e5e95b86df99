// Package inmemory implements storage.Driver in process memory.
package inmemory

import (
	"context"
	"sync"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage"
)

// Driver implements storage.Driver using slices guarded by a RWMutex.
type Driver struct {
	mu           sync.RWMutex
	snapshot     []storage.Record
	hasSnapshot  bool
	supplemental []storage.SupplementalRecord
}

// NewDriver creates an empty in-memory driver.
func NewDriver() *Driver {
	return &Driver{}
}

// SaveSnapshot replaces the snapshot.
func (d *Driver) SaveSnapshot(_ context.Context, records []storage.Record) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.snapshot = append([]storage.Record(nil), records...)
	d.hasSnapshot = true
	return nil
}

// LoadSnapshot returns a copy of the snapshot.
func (d *Driver) LoadSnapshot(_ context.Context) ([]storage.Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.hasSnapshot {
		return nil, storage.ErrNoSnapshot
	}
	return append([]storage.Record{}, d.snapshot...), nil
}

// AppendSupplemental adds rec to the store.
func (d *Driver) AppendSupplemental(_ context.Context, rec storage.SupplementalRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.supplemental = append(d.supplemental, rec)
	return nil
}

// LoadSupplemental returns a copy of the supplemental records.
func (d *Driver) LoadSupplemental(_ context.Context) ([]storage.SupplementalRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return append([]storage.SupplementalRecord{}, d.supplemental...), nil
}

// Close is a no-op.
func (d *Driver) Close() error {
	return nil
}

var _ storage.Driver = (*Driver)(nil)
