// Package storageutils builds a storage driver from configuration.
package storageutils

import (
	"fmt"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage/file"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage/inmemory"
)

type NewDriverOpts struct {
	ProviderType     string
	SnapshotPath     string
	SupplementalPath string
}

// NewDriver returns the storage driver for the configured provider.
func NewDriver(o *NewDriverOpts) (storage.Driver, error) {
	switch o.ProviderType {
	case "", "file":
		return file.NewDriver(file.Config{
			SnapshotPath:     o.SnapshotPath,
			SupplementalPath: o.SupplementalPath,
		})
	case "memory", "inmemory":
		return inmemory.NewDriver(), nil
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", o.ProviderType)
	}
}
