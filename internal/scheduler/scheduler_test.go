package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tianzhicdev/dogetionary-sub002/internal/platform/logger"
)

type countingRefresher struct {
	calls   atomic.Int32
	queues  int
	evicted int

	mu      sync.Mutex
	steps   []string
	maxIdle time.Duration
}

func (r *countingRefresher) EvictIdle(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, "evict")
	r.maxIdle = maxIdle
	return r.evicted
}

func (r *countingRefresher) ForceRefreshAll(context.Context) int {
	r.calls.Add(1)
	r.mu.Lock()
	r.steps = append(r.steps, "refresh")
	r.mu.Unlock()
	return r.queues - r.evicted
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		expr        string
		wantErr     bool
		wantEnabled bool
	}{
		{name: "daily at midnight", expr: "0 0 * * *", wantEnabled: true},
		{name: "every five minutes", expr: "*/5 * * * *", wantEnabled: true},
		{name: "disabled", expr: ""},
		{name: "garbage", expr: "not a cron", wantErr: true},
		{name: "out of range minute", expr: "61 * * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(&countingRefresher{}, tt.expr, 0, nil)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCron)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantEnabled, s.Enabled())
		})
	}
}

func TestNewPanicsWithoutRefresher(t *testing.T) {
	assert.Panics(t, func() { _, _ = New(nil, "", 0, nil) })
}

func TestStartStop(t *testing.T) {
	log, buf := logger.GetTestLogger(t)
	refresher := &countingRefresher{}

	s, err := New(refresher, "0 0 * * *", 0, log)
	require.NoError(t, err)

	s.Start()
	s.Stop()

	logger.AssertLogContains(t, buf, "scheduled queue refresh started")
	assert.Equal(t, int32(0), refresher.calls.Load())
}

func TestDisabledStartStopAreNoops(t *testing.T) {
	log, buf := logger.GetTestLogger(t)
	s, err := New(&countingRefresher{}, "", 0, log)
	require.NoError(t, err)

	s.Start()
	s.Stop()

	logger.AssertLogContains(t, buf, "scheduled queue refresh disabled")
}

func TestRunNow(t *testing.T) {
	refresher := &countingRefresher{queues: 3}
	s, err := New(refresher, "", 0, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, s.RunNow(context.Background()))
	assert.Equal(t, int32(1), refresher.calls.Load())
}

func TestRunNowEvictsIdleQueuesFirst(t *testing.T) {
	log, buf := logger.GetTestLogger(t)
	refresher := &countingRefresher{queues: 5, evicted: 2}
	s, err := New(refresher, "", 6*time.Hour, log)
	require.NoError(t, err)

	assert.Equal(t, 3, s.RunNow(context.Background()))
	assert.Equal(t, []string{"evict", "refresh"}, refresher.steps)
	assert.Equal(t, 6*time.Hour, refresher.maxIdle)
	logger.AssertLogField(t, buf, "evicted", float64(2))
}

func TestScheduledRunFires(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the scheduler clock")
	}
	refresher := &countingRefresher{}
	s, err := New(refresher, "", 0, nil)
	require.NoError(t, err)

	// Drive the underlying scheduler with a seconds-level interval.
	_, err = s.scheduler.Every(1).Second().Do(s.refreshAll)
	require.NoError(t, err)
	s.enabled = true

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return refresher.calls.Load() > 0 }, 3*time.Second, 20*time.Millisecond)
}
