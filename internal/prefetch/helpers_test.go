package prefetch

import (
	"context"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tianzhicdev/dogetionary-sub002/internal/domain"
	"github.com/tianzhicdev/dogetionary-sub002/internal/events"
)

const callTimeout = 2 * time.Second

// fetchCall is one FetchBatch invocation held open until the test replies.
type fetchCall struct {
	count   int
	exclude []string
	reply   chan fetchReply
}

type fetchReply struct {
	resp *domain.BatchResponse
	err  error
}

func (c fetchCall) respond(resp *domain.BatchResponse) {
	c.reply <- fetchReply{resp: resp}
}

func (c fetchCall) fail(err error) {
	c.reply <- fetchReply{err: err}
}

// scriptedSource hands every FetchBatch call to the test through calls and
// blocks until the test answers it.
type scriptedSource struct {
	calls       chan fetchCall
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func newScriptedSource() *scriptedSource {
	return &scriptedSource{calls: make(chan fetchCall, 16)}
}

func (s *scriptedSource) FetchBatch(ctx context.Context, count int, exclude []string) (*domain.BatchResponse, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		cur := s.maxInFlight.Load()
		if n <= cur || s.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	call := fetchCall{count: count, exclude: exclude, reply: make(chan fetchReply, 1)}
	s.calls <- call

	select {
	case r := <-call.reply:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *scriptedSource) next(t *testing.T) fetchCall {
	t.Helper()
	select {
	case call := <-s.calls:
		return call
	case <-time.After(callTimeout):
		t.Fatal("timed out waiting for a fetch")
		return fetchCall{}
	}
}

func (s *scriptedSource) assertNoCall(t *testing.T) {
	t.Helper()
	select {
	case call := <-s.calls:
		t.Fatalf("unexpected fetch for %d questions", call.count)
	case <-time.After(50 * time.Millisecond):
	}
}

func record(word string) domain.QuestionRecord {
	return domain.QuestionRecord{Word: word, Source: domain.SourceNew}
}

func batch(hasMore bool, total int, words ...string) *domain.BatchResponse {
	resp := &domain.BatchResponse{
		Questions:      make([]domain.QuestionRecord, 0, len(words)),
		HasMore:        hasMore,
		TotalAvailable: total,
	}
	for _, w := range words {
		resp.Questions = append(resp.Questions, record(w))
	}
	return resp
}

func newTestQueue(t *testing.T, source QuestionSource) (*Queue, *events.RecordingHandler) {
	t.Helper()
	recorder := &events.RecordingHandler{}
	emitter := events.NewInMemoryEventEmitter(nil)
	emitter.RegisterHandler(recorder)
	q := NewQueue(source, WithID("test"), WithEmitter(emitter))
	return q, recorder
}

// bufferedWords returns the buffer contents in order and checks that the
// dedup set mirrors them exactly.
func bufferedWords(t *testing.T, q *Queue) []string {
	t.Helper()
	q.mu.Lock()
	defer q.mu.Unlock()

	words := make([]string, 0, q.buffer.Len())
	for i := 0; i < q.buffer.Len(); i++ {
		words = append(words, q.buffer.At(i).Word)
	}

	seen := make([]string, 0, len(q.seen))
	for w := range q.seen {
		seen = append(seen, w)
	}
	sorted := make([]string, 0, len(words))
	sorted = append(sorted, words...)
	sort.Strings(sorted)
	sort.Strings(seen)
	require.Equal(t, sorted, seen, "seen set must mirror the buffer")

	return words
}
