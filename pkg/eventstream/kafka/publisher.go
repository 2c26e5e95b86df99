// Package kafka publishes rebuild events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/eventstream"
)

// Config configures the Kafka publisher.
type Config struct {
	Brokers []string
	Topic   string

	// WriteTimeout bounds a single publish. Defaults to 10s.
	WriteTimeout time.Duration
}

// MessageWriter is the subset of *kafka.Writer used by the publisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes JSON encoded events keyed by event type.
type Publisher struct {
	writer  MessageWriter
	timeout time.Duration
}

// NewPublisher creates a publisher backed by a *kafka.Writer.
func NewPublisher(c Config) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, errors.New("kafka publisher requires at least one broker")
	}
	if c.Topic == "" {
		return nil, errors.New("kafka publisher requires a topic")
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(c.Brokers...),
		Topic:                  c.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return NewPublisherWithWriter(w, c.WriteTimeout), nil
}

// NewPublisherWithWriter wraps an existing writer.
func NewPublisherWithWriter(w MessageWriter, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Publisher{writer: w, timeout: timeout}
}

// PublishRebuild writes event as a single message.
func (p *Publisher) PublishRebuild(ctx context.Context, event *eventstream.RebuildEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal rebuild event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.EventType),
		Value: payload,
		Time:  event.EmittedAt,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "schema_version", Value: fmt.Appendf(nil, "%d", event.SchemaVersion)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish rebuild event: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ eventstream.Publisher = (*Publisher)(nil)
