// Package eventstreamutils builds the configured rebuild event publisher.
package eventstreamutils

import (
	"fmt"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/eventstream"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/eventstream/kafka"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/eventstream/nop"
)

type NewPublisherOpts struct {
	ProviderType string
	Brokers      []string
	Topic        string
}

func NewPublisher(o *NewPublisherOpts) (eventstream.Publisher, error) {
	switch o.ProviderType {
	case "nop", "":
		return nop.NewPublisher(), nil
	case "kafka":
		return kafka.NewPublisher(kafka.Config{
			Brokers: o.Brokers,
			Topic:   o.Topic,
		})
	default:
		return nil, fmt.Errorf("unsupported eventstream provider: %s", o.ProviderType)
	}
}
