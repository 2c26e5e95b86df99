package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector"
)

// MockVectorDriver is a test vector driver
type MockVectorDriver struct {
	// Results is returned by Query, truncated to topK.
	Results []vector.QueryResult

	// FailAdd and FailQuery make the matching calls return an error.
	FailAdd   bool
	FailQuery bool

	mu        sync.Mutex
	documents []vector.Document
	dropped   bool
}

func NewMockVectorDriver() *MockVectorDriver {
	return &MockVectorDriver{
		documents: make([]vector.Document, 0),
		Results:   make([]vector.QueryResult, 0),
	}
}

// NewMockOpener returns an Opener that hands out d for every collection.
func NewMockOpener(d *MockVectorDriver) vector.Opener {
	return func(_ context.Context, _ string) (vector.Driver, error) {
		return d, nil
	}
}

func (m *MockVectorDriver) Add(_ context.Context, docs []vector.Document) error {
	if m.FailAdd {
		return errors.New("mock add failure")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents = append(m.documents, docs...)
	return nil
}

func (m *MockVectorDriver) Query(_ context.Context, _ []float32, topK int) ([]vector.QueryResult, error) {
	if m.FailQuery {
		return nil, errors.New("mock query failure")
	}
	if len(m.Results) < topK {
		return m.Results, nil
	}
	return m.Results[:topK], nil
}

func (m *MockVectorDriver) Get(_ context.Context, _ []string) ([]vector.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.documents, nil
}

func (m *MockVectorDriver) Delete(_ context.Context, _ []string) error {
	return nil
}

func (m *MockVectorDriver) Drop(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped = true
	m.documents = nil
	return nil
}

// Documents returns everything added so far.
func (m *MockVectorDriver) Documents() []vector.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]vector.Document(nil), m.documents...)
}

// Dropped reports whether Drop was called.
func (m *MockVectorDriver) Dropped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

func (m *MockVectorDriver) Close() error {
	return nil
}
