package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryEventEmitter(t *testing.T) {
	// Create a minimal logger that discards output
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)

		err := emitter.EmitEvent(context.Background(), NewQueueEvent(EventFetchStarted, "q", nil))
		assert.NoError(t, err)
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)

		handler1 := &RecordingHandler{}
		handler2 := &RecordingHandler{}
		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2)

		event := NewQueueEvent(EventFetchSucceeded, "q", map[string]any{"merged": 3})
		err := emitter.EmitEvent(context.Background(), event)
		assert.NoError(t, err)

		assert.Equal(t, []*QueueEvent{event}, handler1.Events())
		assert.Equal(t, []*QueueEvent{event}, handler2.Events())
	})

	t.Run("emit event with failing handler", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)

		successHandler := &RecordingHandler{}
		failingHandler := EventHandlerFunc(func(ctx context.Context, event *QueueEvent) error {
			return errors.New("handler error")
		})
		emitter.RegisterHandler(failingHandler)
		emitter.RegisterHandler(successHandler)

		err := emitter.EmitEvent(context.Background(), NewQueueEvent(EventQueueCleared, "q", nil))
		assert.EqualError(t, err, "handler error")

		// Later handlers still receive the event
		assert.Len(t, successHandler.Events(), 1)
	})
}
