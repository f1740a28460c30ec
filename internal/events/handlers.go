package events

import (
	"context"
	"log/slog"
	"sync"
)

// LoggingHandler writes every queue event to a structured logger at debug level.
type LoggingHandler struct {
	logger *slog.Logger
}

// NewLoggingHandler creates a LoggingHandler. If logger is nil the default logger is used.
func NewLoggingHandler(logger *slog.Logger) *LoggingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingHandler{logger: logger.With("component", "queue_events")}
}

// HandleEvent implements EventHandler.
func (h *LoggingHandler) HandleEvent(ctx context.Context, event *QueueEvent) error {
	attrs := make([]any, 0, 6+2*len(event.Attrs))
	attrs = append(attrs,
		"event_id", event.ID,
		"event_type", event.Type,
		"queue_id", event.QueueID)
	for k, v := range event.Attrs {
		attrs = append(attrs, k, v)
	}

	level := slog.LevelDebug
	if event.Type == EventFetchFailed {
		level = slog.LevelWarn
	}
	h.logger.Log(ctx, level, "queue event", attrs...)
	return nil
}

// RecordingHandler keeps every event it receives. It is safe for concurrent
// use and is mainly intended for tests.
type RecordingHandler struct {
	mu     sync.Mutex
	events []*QueueEvent
}

// HandleEvent implements EventHandler.
func (h *RecordingHandler) HandleEvent(_ context.Context, event *QueueEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

// Events returns a copy of the recorded events in arrival order.
func (h *RecordingHandler) Events() []*QueueEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*QueueEvent, len(h.events))
	copy(out, h.events)
	return out
}

// Types returns the recorded event types in arrival order.
func (h *RecordingHandler) Types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.events))
	for i, e := range h.events {
		out[i] = e.Type
	}
	return out
}
