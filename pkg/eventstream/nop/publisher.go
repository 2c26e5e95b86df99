package nop

import (
	"context"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishRebuild validates input and otherwise does nothing.
func (p *Publisher) PublishRebuild(_ context.Context, event *eventstream.RebuildEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
