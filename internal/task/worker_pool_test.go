package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkerPool(t *testing.T) {
	logger := setupTestLogger()

	pool := NewWorkerPool(WorkerPoolConfig{WorkerCount: 5, QueueSize: 7}, logger)

	assert.NotNil(t, pool)
	assert.Equal(t, 5, pool.workerCount)
	assert.Equal(t, 7, cap(pool.queue.tasks))
	assert.NotNil(t, pool.ctx)
	assert.NotNil(t, pool.cancel)
	assert.Nil(t, pool.errorHandler)

	// Test with invalid worker count (should default to 1)
	pool = NewWorkerPool(WorkerPoolConfig{WorkerCount: 0}, logger)
	assert.Equal(t, 1, pool.workerCount)
	assert.Equal(t, DefaultWorkerPoolConfig().QueueSize, cap(pool.queue.tasks))

	// Test with negative worker count (should default to 1)
	pool = NewWorkerPool(WorkerPoolConfig{WorkerCount: -5}, logger)
	assert.Equal(t, 1, pool.workerCount)
}

func TestWorkerPool_ProcessTask_Success(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())
	pool.Start()
	defer pool.Stop()

	completed := make(chan struct{})
	task := newMockTask()
	task.execFn = func(ctx context.Context) error {
		close(completed)
		return nil
	}

	require.NoError(t, pool.Submit(context.Background(), task))

	select {
	case <-completed:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Timed out waiting for task to complete")
	}
}

func TestWorkerPool_ProcessTask_Error(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())

	errorHandled := make(chan error, 1)
	pool.SetErrorHandler(func(task Task, err error) {
		errorHandled <- err
	})
	pool.Start()
	defer pool.Stop()

	expectedErr := errors.New("test error")
	task := newMockTask()
	task.execFn = func(ctx context.Context) error {
		return expectedErr
	}
	require.NoError(t, pool.Submit(context.Background(), task))

	select {
	case err := <-errorHandled:
		assert.Equal(t, expectedErr, err)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Timed out waiting for error handler")
	}
}

func TestWorkerPool_ProcessTask_PanicDoesNotKillWorker(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())
	pool.Start()
	defer pool.Stop()

	panicking := newMockTask()
	panicking.execFn = func(ctx context.Context) error {
		panic("test panic")
	}
	require.NoError(t, pool.Submit(context.Background(), panicking))

	completed := make(chan struct{})
	next := newMockTask()
	next.execFn = func(ctx context.Context) error {
		close(completed)
		return nil
	}
	require.NoError(t, pool.Submit(context.Background(), next))

	select {
	case <-completed:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Worker did not survive a panicking task")
	}
}

func TestWorkerPool_StopCancelsRunningTask(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())
	pool.Start()

	taskStarted := make(chan struct{})
	task := newMockTask()
	task.execFn = func(ctx context.Context) error {
		close(taskStarted)
		<-ctx.Done()
		return ctx.Err()
	}
	require.NoError(t, pool.Submit(context.Background(), task))

	select {
	case <-taskStarted:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Timed out waiting for task to start")
	}

	stopDone := make(chan struct{})
	go func() {
		pool.Stop()
		close(stopDone)
	}()

	select {
	case <-stopDone:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Timed out waiting for worker pool to stop")
	}
}

func TestWorkerPool_StopDrainsAcceptedTasks(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{WorkerCount: 1, QueueSize: 10}, setupTestLogger())

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		task := newMockTask()
		task.execFn = func(ctx context.Context) error {
			ran.Add(1)
			return nil
		}
		require.NoError(t, pool.Submit(context.Background(), task))
	}

	pool.Start()
	pool.Stop()

	assert.Equal(t, int32(5), ran.Load())
	assert.ErrorIs(t, pool.Submit(context.Background(), newMockTask()), ErrQueueClosed)
}

func TestGoSubmitter_DetachesCancellation(t *testing.T) {
	submitter := NewGoSubmitter(setupTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	task := newMockTask()
	task.execFn = func(ctx context.Context) error {
		done <- ctx.Err()
		return nil
	}

	require.NoError(t, submitter.Submit(ctx, task))

	select {
	case err := <-done:
		assert.NoError(t, err, "task context should not inherit caller cancellation")
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Timed out waiting for task to run")
	}
}
