package prefetch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// QueueFactory builds the queue for a user.
type QueueFactory func(userID uuid.UUID) *Queue

type registryEntry struct {
	queue *Queue
	// lastUsed is the UnixNano time of the latest Get.
	lastUsed atomic.Int64
}

// Registry holds one Queue per user, created on first use. Queues that go
// unused are dropped by EvictIdle.
type Registry struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*registryEntry
	factory QueueFactory
	logger  *slog.Logger
	now     func() time.Time
}

// NewRegistry creates an empty registry. It panics if factory is nil.
func NewRegistry(factory QueueFactory, logger *slog.Logger) *Registry {
	if factory == nil {
		panic("factory cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		entries: make(map[uuid.UUID]*registryEntry),
		factory: factory,
		logger:  logger.With(slog.String("component", "prefetch_registry")),
		now:     time.Now,
	}
}

// Get returns the user's queue and marks it as used. A queue created by this
// call is cold-started with ForceRefresh before it is returned.
func (r *Registry) Get(ctx context.Context, userID uuid.UUID) *Queue {
	r.mu.RLock()
	e, ok := r.entries[userID]
	r.mu.RUnlock()
	if ok {
		e.lastUsed.Store(r.now().UnixNano())
		return e.queue
	}

	r.mu.Lock()
	if e, ok = r.entries[userID]; ok {
		r.mu.Unlock()
		e.lastUsed.Store(r.now().UnixNano())
		return e.queue
	}
	e = &registryEntry{queue: r.factory(userID)}
	e.lastUsed.Store(r.now().UnixNano())
	r.entries[userID] = e
	r.mu.Unlock()

	r.logger.Debug("created prefetch queue", "user_id", userID)
	e.queue.ForceRefresh(ctx)
	return e.queue
}

// Lookup returns the user's queue without creating one or marking it used.
func (r *Registry) Lookup(userID uuid.UUID) (*Queue, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[userID]
	if !ok {
		return nil, false
	}
	return e.queue, true
}

// Remove drops the user's queue. In-flight fetches of that queue still
// complete but nothing will read their results.
func (r *Registry) Remove(userID uuid.UUID) {
	r.mu.Lock()
	delete(r.entries, userID)
	r.mu.Unlock()
}

// Len returns the number of live queues.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// EvictIdle removes every queue whose last Get is older than maxIdle and
// which has no fetch in flight. It returns the number removed. A
// non-positive maxIdle evicts nothing.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := r.now().Add(-maxIdle).UnixNano()

	r.mu.Lock()
	evicted := 0
	for userID, e := range r.entries {
		if e.lastUsed.Load() >= cutoff || e.queue.IsFetching() {
			continue
		}
		delete(r.entries, userID)
		evicted++
	}
	remaining := len(r.entries)
	r.mu.Unlock()

	if evicted > 0 {
		r.logger.Info("evicted idle prefetch queues",
			"evicted", evicted,
			"remaining", remaining,
			"max_idle", maxIdle.String())
	}
	return evicted
}

// ForceRefreshAll clears and preloads every live queue.
func (r *Registry) ForceRefreshAll(ctx context.Context) int {
	queues := r.snapshot()
	for _, q := range queues {
		q.ForceRefresh(ctx)
	}
	r.logger.Info("refreshed prefetch queues", "count", len(queues))
	return len(queues)
}

// Wait blocks until every live queue has no fetch in flight.
func (r *Registry) Wait() {
	for _, q := range r.snapshot() {
		q.Wait()
	}
}

func (r *Registry) snapshot() []*Queue {
	r.mu.RLock()
	defer r.mu.RUnlock()
	queues := make([]*Queue, 0, len(r.entries))
	for _, e := range r.entries {
		queues = append(queues, e.queue)
	}
	return queues
}
