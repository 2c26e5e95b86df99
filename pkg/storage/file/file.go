// Package file implements storage.Driver on plain JSON files, the layout the
// chat bot has always used on disk (info.json and supplemental_info.json).
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage"
)

// Config holds the file locations used by the driver.
type Config struct {
	// SnapshotPath is the JSON array of raw articles, overwritten per fetch.
	SnapshotPath string

	// SupplementalPath is the JSON array of {question, answer} objects.
	SupplementalPath string
}

// Driver implements storage.Driver backed by two JSON files.
type Driver struct {
	config Config

	// mu serializes writers so concurrent appends cannot lose records.
	mu sync.Mutex
}

// NewDriver creates a file driver. Parent directories are created lazily on
// first write.
func NewDriver(c Config) (*Driver, error) {
	if c.SnapshotPath == "" {
		return nil, errors.New("snapshot path is required")
	}
	if c.SupplementalPath == "" {
		return nil, errors.New("supplemental path is required")
	}
	return &Driver{config: c}, nil
}

// SnapshotPath returns the location of the snapshot file.
func (d *Driver) SnapshotPath() string {
	return d.config.SnapshotPath
}

// SaveSnapshot overwrites the snapshot file with records.
func (d *Driver) SaveSnapshot(_ context.Context, records []storage.Record) error {
	if records == nil {
		records = []storage.Record{}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return writeJSON(d.config.SnapshotPath, records)
}

// LoadSnapshot reads the snapshot file.
func (d *Driver) LoadSnapshot(_ context.Context) ([]storage.Record, error) {
	var records []storage.Record
	if err := readJSON(d.config.SnapshotPath, &records); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, storage.ErrNoSnapshot
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return records, nil
}

// AppendSupplemental adds rec to the end of the supplemental file.
func (d *Driver) AppendSupplemental(_ context.Context, rec storage.SupplementalRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var existing []storage.SupplementalRecord
	if err := readJSON(d.config.SupplementalPath, &existing); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading supplemental store: %w", err)
	}

	return writeJSON(d.config.SupplementalPath, append(existing, rec))
}

// LoadSupplemental reads the supplemental file. A missing file is empty.
func (d *Driver) LoadSupplemental(_ context.Context) ([]storage.SupplementalRecord, error) {
	var records []storage.SupplementalRecord
	if err := readJSON(d.config.SupplementalPath, &records); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []storage.SupplementalRecord{}, nil
		}
		return nil, fmt.Errorf("reading supplemental store: %w", err)
	}
	return records, nil
}

// Close is a no-op.
func (d *Driver) Close() error {
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// writeJSON replaces path atomically via a sibling temp file.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

var _ storage.Driver = (*Driver)(nil)
