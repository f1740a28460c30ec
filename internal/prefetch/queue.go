package prefetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gammazero/deque"
	"github.com/tianzhicdev/dogetionary-sub002/internal/domain"
	"github.com/tianzhicdev/dogetionary-sub002/internal/events"
	"github.com/tianzhicdev/dogetionary-sub002/internal/task"
)

const (
	// InitialLoadCount is the size of the first fetch after a reset, kept
	// small so the first question shows up quickly.
	InitialLoadCount = 3

	// TargetQueueSize is the buffer depth refills aim for.
	TargetQueueSize = 10
)

var (
	// ErrNilBatch is recorded when a source returns neither a batch nor an error.
	ErrNilBatch = errors.New("question source returned no batch")

	// ErrSourcePanic is recorded when a source panics during a fetch.
	ErrSourcePanic = errors.New("question source panicked")
)

// Status is a point-in-time snapshot of a queue for diagnostic display.
type Status struct {
	QueueCount     int    `json:"queue_count"`
	IsFetching     bool   `json:"is_fetching"`
	HasMore        bool   `json:"has_more"`
	TotalAvailable int    `json:"total_available"`
	LastError      string `json:"last_error,omitempty"`
}

// Queue is a prefetching FIFO of review questions backed by a QuestionSource.
// All methods are safe for concurrent use. Pop, Peek, Clear and Status never
// block on I/O.
type Queue struct {
	id        string
	source    QuestionSource
	submitter task.Submitter
	emitter   events.EventEmitter
	logger    *slog.Logger

	mu             sync.Mutex
	buffer         deque.Deque[domain.QuestionRecord]
	seen           map[string]struct{}
	isFetching     bool
	hasMore        bool
	totalAvailable int
	lastError      string

	// inflight counts started fetches, including refills chained from a
	// completed preload, so Wait can observe quiescence.
	inflight sync.WaitGroup
}

// Option configures a Queue.
type Option func(*Queue)

// WithID sets the identifier attached to log lines and events.
func WithID(id string) Option {
	return func(q *Queue) { q.id = id }
}

// WithSubmitter sets where fetches are executed. The default runs each fetch
// on its own goroutine.
func WithSubmitter(s task.Submitter) Option {
	return func(q *Queue) { q.submitter = s }
}

// WithEmitter sets the emitter that receives queue lifecycle events.
func WithEmitter(e events.EventEmitter) Option {
	return func(q *Queue) { q.emitter = e }
}

// WithLogger sets the queue's logger.
func WithLogger(l *slog.Logger) Option {
	return func(q *Queue) { q.logger = l }
}

// NewQueue creates an empty queue that fetches from source.
// It panics if source is nil.
func NewQueue(source QuestionSource, opts ...Option) *Queue {
	if source == nil {
		panic("source cannot be nil")
	}

	q := &Queue{
		source:  source,
		seen:    make(map[string]struct{}),
		hasMore: true,
	}
	for _, opt := range opts {
		opt(q)
	}

	if q.logger == nil {
		q.logger = slog.Default()
	}
	q.logger = q.logger.With(slog.String("component", "prefetch_queue"))
	if q.id != "" {
		q.logger = q.logger.With(slog.String("queue_id", q.id))
	}
	if q.submitter == nil {
		q.submitter = task.NewGoSubmitter(q.logger)
	}

	return q
}

// ID returns the identifier given with WithID.
func (q *Queue) ID() string {
	return q.id
}

// Pop removes and returns the oldest buffered question. It returns false
// when the buffer is empty; the caller is then expected to fetch directly.
// A successful Pop schedules a background refill.
func (q *Queue) Pop(ctx context.Context) (domain.QuestionRecord, bool) {
	q.mu.Lock()
	if q.buffer.Len() == 0 {
		q.mu.Unlock()
		return domain.QuestionRecord{}, false
	}
	record := q.buffer.PopFront()
	delete(q.seen, record.Word)
	q.mu.Unlock()

	q.RefillIfNeeded(ctx)
	return record, true
}

// Peek returns the oldest buffered question without removing it.
func (q *Queue) Peek() (domain.QuestionRecord, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.buffer.Len() == 0 {
		return domain.QuestionRecord{}, false
	}
	return q.buffer.Front(), true
}

// Preload fetches InitialLoadCount questions when the buffer is empty and,
// once they arrive, tops the buffer up toward TargetQueueSize. It does
// nothing when the buffer already holds questions.
func (q *Queue) Preload(ctx context.Context) {
	q.mu.Lock()
	if q.buffer.Len() > 0 {
		q.mu.Unlock()
		return
	}
	exclude, ok := q.beginFetchLocked()
	q.mu.Unlock()

	if ok {
		q.startFetch(ctx, InitialLoadCount, exclude, true)
	}
}

// RefillIfNeeded fetches enough questions to bring the buffer back to
// TargetQueueSize. It does nothing while a fetch is in flight, after the
// source reported exhaustion, or when the buffer is already full.
func (q *Queue) RefillIfNeeded(ctx context.Context) {
	q.mu.Lock()
	if q.isFetching || !q.hasMore || q.buffer.Len() >= TargetQueueSize {
		q.mu.Unlock()
		return
	}
	count := TargetQueueSize - q.buffer.Len()
	exclude, ok := q.beginFetchLocked()
	q.mu.Unlock()

	if ok {
		q.startFetch(ctx, count, exclude, false)
	}
}

// Clear empties the buffer and resets pagination state. A fetch already in
// flight is not cancelled; its results are merged when it completes.
func (q *Queue) Clear() {
	q.mu.Lock()
	dropped := q.buffer.Len()
	q.buffer.Clear()
	q.seen = make(map[string]struct{})
	q.hasMore = true
	q.totalAvailable = 0
	q.lastError = ""
	fetching := q.isFetching
	q.mu.Unlock()

	q.logger.Debug("queue cleared", "dropped", dropped, "fetch_in_flight", fetching)
	q.emit(context.Background(), events.EventQueueCleared, map[string]any{
		"dropped":         dropped,
		"fetch_in_flight": fetching,
	})
}

// ForceRefresh clears the queue and preloads it again. Used on cold start and
// whenever the consumer resumes, so stale content never lingers.
func (q *Queue) ForceRefresh(ctx context.Context) {
	q.Clear()
	q.Preload(ctx)
}

// Wait blocks until every fetch started so far, and any refill chained from
// them, has completed.
func (q *Queue) Wait() {
	q.inflight.Wait()
}

// Len returns the number of buffered questions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.buffer.Len()
}

// IsFetching reports whether a fetch is in flight.
func (q *Queue) IsFetching() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.isFetching
}

// HasMore reports whether the source may still have questions to deliver.
func (q *Queue) HasMore() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.hasMore
}

// TotalAvailable returns the last fetchable count reported by the source.
func (q *Queue) TotalAvailable() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.totalAvailable
}

// LastError returns the message of the most recent failed fetch, or "".
func (q *Queue) LastError() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastError
}

// Status returns a consistent snapshot of the observable queue state.
func (q *Queue) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Status{
		QueueCount:     q.buffer.Len(),
		IsFetching:     q.isFetching,
		HasMore:        q.hasMore,
		TotalAvailable: q.totalAvailable,
		LastError:      q.lastError,
	}
}

// beginFetchLocked claims the single fetch slot and snapshots the exclusion
// list. It reports false if another fetch already holds the slot.
// q.mu must be held.
func (q *Queue) beginFetchLocked() ([]string, bool) {
	if q.isFetching {
		return nil, false
	}
	q.isFetching = true
	q.lastError = ""

	exclude := make([]string, 0, len(q.seen))
	for word := range q.seen {
		exclude = append(exclude, word)
	}
	q.inflight.Add(1)
	return exclude, true
}

// startFetch hands the fetch to the submitter. The caller must have claimed
// the fetch slot with beginFetchLocked.
func (q *Queue) startFetch(ctx context.Context, count int, exclude []string, refillAfter bool) {
	if ctx == nil {
		ctx = context.Background()
	}

	q.logger.Debug("starting fetch", "requested", count, "excluded", len(exclude))
	q.emit(ctx, events.EventFetchStarted, map[string]any{
		"requested": count,
		"excluded":  len(exclude),
	})

	fetch := task.NewFuncTask(task.TaskTypeQuestionFetch, func(taskCtx context.Context) error {
		defer q.inflight.Done()
		return q.runFetch(taskCtx, count, exclude, refillAfter)
	})

	if err := q.submitter.Submit(ctx, fetch); err != nil {
		q.failFetch(ctx, fmt.Errorf("failed to start fetch: %w", err))
		q.inflight.Done()
	}
}

func (q *Queue) runFetch(ctx context.Context, count int, exclude []string, refillAfter bool) error {
	resp, err := q.fetchBatch(ctx, count, exclude)
	if err == nil && resp == nil {
		err = ErrNilBatch
	}
	if err != nil {
		// Recorded in lastError; the next trigger retries.
		q.failFetch(ctx, err)
		return nil
	}

	merged, skipped := 0, 0
	q.mu.Lock()
	for _, record := range resp.Questions {
		if _, dup := q.seen[record.Word]; dup || record.Validate() != nil {
			skipped++
			continue
		}
		q.buffer.PushBack(record)
		q.seen[record.Word] = struct{}{}
		merged++
	}
	exhausted := q.hasMore && !resp.HasMore
	q.hasMore = resp.HasMore
	q.totalAvailable = resp.TotalAvailable
	q.isFetching = false
	queueCount := q.buffer.Len()
	q.mu.Unlock()

	q.logger.Debug("fetch completed",
		"requested", count,
		"received", len(resp.Questions),
		"merged", merged,
		"skipped", skipped,
		"queue_count", queueCount,
		"has_more", resp.HasMore)
	q.emit(ctx, events.EventFetchSucceeded, map[string]any{
		"requested":   count,
		"merged":      merged,
		"skipped":     skipped,
		"queue_count": queueCount,
		"has_more":    resp.HasMore,
	})
	if exhausted {
		q.emit(ctx, events.EventQueueExhausted, map[string]any{"queue_count": queueCount})
	}

	if refillAfter {
		q.RefillIfNeeded(ctx)
	}
	return nil
}

// fetchBatch calls the source, turning a panic into an error so the fetch
// slot is always released.
func (q *Queue) fetchBatch(ctx context.Context, count int, exclude []string) (resp *domain.BatchResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, fmt.Errorf("%w: %v", ErrSourcePanic, r)
		}
	}()
	return q.source.FetchBatch(ctx, count, exclude)
}

func (q *Queue) failFetch(ctx context.Context, err error) {
	q.mu.Lock()
	q.lastError = err.Error()
	q.isFetching = false
	q.mu.Unlock()

	q.logger.Warn("fetch failed", "error", err)
	q.emit(ctx, events.EventFetchFailed, map[string]any{"error": err.Error()})
}

func (q *Queue) emit(ctx context.Context, eventType string, attrs map[string]any) {
	if q.emitter == nil {
		return
	}
	if err := q.emitter.EmitEvent(ctx, events.NewQueueEvent(eventType, q.id, attrs)); err != nil {
		q.logger.Debug("failed to emit queue event", "event_type", eventType, "error", err)
	}
}
