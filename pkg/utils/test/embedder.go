package testutils

import (
	"context"
	"fmt"
	"sync"
)

// MockEmbedder is a test embedder that returns predictable embeddings
type MockEmbedder struct {
	Embeddings map[string][]float32

	// FailOn causes Embed to return an error when the input text matches
	FailOn string

	// Block, when set, is waited on before every Embed returns.
	Block <-chan struct{}

	mu    sync.Mutex
	calls map[string]int
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
		calls:      make(map[string]int),
	}
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls[text]++
	m.mu.Unlock()

	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.FailOn != "" && text == m.FailOn {
		return nil, fmt.Errorf("mock embedding failure for: %s", text)
	}

	if emb, ok := m.Embeddings[text]; ok {
		return emb, nil
	}

	// Return a default embedding for any text
	return []float32{0.1, 0.2, 0.3}, nil
}

// Calls reports how many times text was embedded.
func (m *MockEmbedder) Calls(text string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[text]
}

// TotalCalls reports how many Embed calls were made.
func (m *MockEmbedder) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

func (m *MockEmbedder) Close() error {
	return nil
}
