package eventstream

import (
	"os"
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeRebuildCompleted is emitted after a new generation is swapped in.
	EventTypeRebuildCompleted = "ragbot.rebuild.completed"

	// EventTypeRebuildFailed is emitted when a rebuild leaves the previous
	// generation in place.
	EventTypeRebuildFailed = "ragbot.rebuild.failed"
)

// RebuildEvent is a transport-neutral event payload for a finished rebuild.
type RebuildEvent struct {
	SchemaVersion int         `json:"schema_version"`
	EventType     string      `json:"event_type"`
	EventID       string      `json:"event_id"`
	EmittedAt     time.Time   `json:"emitted_at"`
	Source        EventSource `json:"source"`
	Rebuild       RebuildMeta `json:"rebuild"`
}

// EventSource identifies the replica that ran the rebuild.
type EventSource struct {
	Service string `json:"service"`
	Host    string `json:"host,omitempty"`
}

// RebuildMeta captures the outcome of the rebuild.
type RebuildMeta struct {
	Collection  string    `json:"collection,omitempty"`
	Fetched     int       `json:"fetched"`
	Valid       int       `json:"valid"`
	Invalid     int       `json:"invalid"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
	FailureKind string    `json:"failure_kind,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// NewRebuildEvent stamps meta with an id, a type and the emitting host.
func NewRebuildEvent(meta RebuildMeta) *RebuildEvent {
	eventType := EventTypeRebuildCompleted
	if meta.Error != "" {
		eventType = EventTypeRebuildFailed
	}

	host, _ := os.Hostname()

	return &RebuildEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source: EventSource{
			Service: "ragbot",
			Host:    host,
		},
		Rebuild: meta,
	}
}
