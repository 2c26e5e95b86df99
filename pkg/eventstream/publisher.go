// Package eventstream publishes rebuild outcomes to an event stream backend.
package eventstream

import "context"

// Publisher publishes rebuild events to an event stream backend.
type Publisher interface {
	PublishRebuild(ctx context.Context, event *RebuildEvent) error
	Close() error
}
