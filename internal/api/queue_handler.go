package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/tianzhicdev/dogetionary-sub002/internal/api/shared"
	"github.com/tianzhicdev/dogetionary-sub002/internal/platform/logger"
	"github.com/tianzhicdev/dogetionary-sub002/internal/prefetch"
)

// QueueHandler exposes each user's server-side prefetch queue.
type QueueHandler struct {
	registry *prefetch.Registry
	logger   *slog.Logger
}

// NewQueueHandler creates a new QueueHandler.
func NewQueueHandler(registry *prefetch.Registry, logger *slog.Logger) *QueueHandler {
	if registry == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("registry cannot be nil for QueueHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for QueueHandler")
	}
	return &QueueHandler{
		registry: registry,
		logger:   logger.With(slog.String("component", "queue_handler")),
	}
}

// queueFor resolves the caller's queue. Fetches it starts outlive the
// request, so they run on a context that is not cancelled with it.
func (h *QueueHandler) queueFor(w http.ResponseWriter, r *http.Request) (*prefetch.Queue, context.Context, bool) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return nil, nil, false
	}
	ctx := context.WithoutCancel(r.Context())
	return h.registry.Get(ctx, userID), ctx, true
}

// Pop handles POST /queue/pop.
func (h *QueueHandler) Pop(w http.ResponseWriter, r *http.Request) {
	q, ctx, ok := h.queueFor(w, r)
	if !ok {
		return
	}
	record, ok := q.Pop(ctx)
	if !ok {
		shared.RespondNoContent(w)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, record)
}

// Peek handles GET /queue/peek.
func (h *QueueHandler) Peek(w http.ResponseWriter, r *http.Request) {
	q, _, ok := h.queueFor(w, r)
	if !ok {
		return
	}
	record, ok := q.Peek()
	if !ok {
		shared.RespondNoContent(w)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, record)
}

// Preload handles POST /queue/preload.
func (h *QueueHandler) Preload(w http.ResponseWriter, r *http.Request) {
	q, ctx, ok := h.queueFor(w, r)
	if !ok {
		return
	}
	q.Preload(ctx)
	shared.RespondWithJSON(w, r, http.StatusAccepted, q.Status())
}

// Refresh handles POST /queue/refresh.
func (h *QueueHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	q, ctx, ok := h.queueFor(w, r)
	if !ok {
		return
	}
	q.ForceRefresh(ctx)
	shared.RespondWithJSON(w, r, http.StatusAccepted, q.Status())
}

// Status handles GET /queue/status.
func (h *QueueHandler) Status(w http.ResponseWriter, r *http.Request) {
	q, _, ok := h.queueFor(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, q.Status())
}
