package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Queue event types
const (
	// EventFetchStarted is emitted when a queue begins fetching a batch.
	EventFetchStarted = "fetch_started"

	// EventFetchSucceeded is emitted after a fetched batch has been merged.
	EventFetchSucceeded = "fetch_succeeded"

	// EventFetchFailed is emitted when the source returns an error or the
	// fetch could not be started.
	EventFetchFailed = "fetch_failed"

	// EventQueueCleared is emitted when a queue is reset.
	EventQueueCleared = "queue_cleared"

	// EventQueueExhausted is emitted the first time a source reports that no
	// further questions are available.
	EventQueueExhausted = "queue_exhausted"
)

// QueueEvent describes one lifecycle step of a prefetch queue.
type QueueEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Event* constants
	Type string `json:"type"`

	// QueueID identifies the emitting queue (the owning user for server queues)
	QueueID string `json:"queue_id"`

	// Attrs carries event-specific details such as requested or merged counts
	Attrs map[string]any `json:"attrs,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewQueueEvent creates a new QueueEvent with the specified type and attributes.
func NewQueueEvent(eventType, queueID string, attrs map[string]any) *QueueEvent {
	return &QueueEvent{
		ID:        uuid.New(),
		Type:      eventType,
		QueueID:   queueID,
		Attrs:     attrs,
		CreatedAt: time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *QueueEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows queues to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *QueueEvent) error
}

// EventHandlerFunc adapts a function to the EventHandler interface.
type EventHandlerFunc func(ctx context.Context, event *QueueEvent) error

// HandleEvent implements EventHandler.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *QueueEvent) error {
	return f(ctx, event)
}
