package testutils

import (
	"context"
	"sync"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/eventstream"
)

// MockPublisher collects published rebuild events.
type MockPublisher struct {
	mu     sync.Mutex
	events []*eventstream.RebuildEvent
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishRebuild(_ context.Context, event *eventstream.RebuildEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Events returns everything published so far.
func (m *MockPublisher) Events() []*eventstream.RebuildEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*eventstream.RebuildEvent(nil), m.events...)
}

func (m *MockPublisher) Close() error {
	return nil
}
