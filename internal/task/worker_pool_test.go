package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTaskQueue implements TaskQueueReader for testing
type mockTaskQueue struct {
	ch chan Task
}

func newMockTaskQueue() *mockTaskQueue {
	return &mockTaskQueue{
		ch: make(chan Task, 10),
	}
}

func (m *mockTaskQueue) GetChannel() <-chan Task {
	return m.ch
}

func TestNewWorkerPool(t *testing.T) {
	logger := setupTestLogger()
	taskQueue := newMockTaskQueue()

	pool := NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 5}, logger)
	assert.Equal(t, 5, pool.workerCount)
	assert.Equal(t, taskQueue, pool.taskQueue)
	assert.NotNil(t, pool.ctx)
	assert.Nil(t, pool.errorHandler)

	pool = NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 0}, logger)
	assert.Equal(t, 1, pool.workerCount)

	pool = NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: -5}, logger)
	assert.Equal(t, 1, pool.workerCount)
}

func TestWorkerPool_ProcessesAndDrains(t *testing.T) {
	taskQueue := newMockTaskQueue()
	pool := NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 3}, setupTestLogger())

	var executed atomic.Int32
	for range 8 {
		taskQueue.ch <- newMockTask(func(context.Context) error {
			executed.Add(1)
			return nil
		})
	}

	pool.Start()
	close(taskQueue.ch)
	require.NoError(t, pool.Stop(context.Background()))
	assert.Equal(t, int32(8), executed.Load())
}

func TestWorkerPool_ErrorHandler(t *testing.T) {
	taskQueue := newMockTaskQueue()
	pool := NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())

	var (
		mu     sync.Mutex
		failed []error
	)
	pool.SetErrorHandler(func(_ Task, err error) {
		mu.Lock()
		failed = append(failed, err)
		mu.Unlock()
	})

	boom := errors.New("boom")
	taskQueue.ch <- newMockTask(func(context.Context) error { return boom })
	taskQueue.ch <- newMockTask(func(context.Context) error { panic("kaboom") })
	taskQueue.ch <- newMockTask(nil)

	pool.Start()
	close(taskQueue.ch)
	require.NoError(t, pool.Stop(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, failed, 2)
	assert.True(t, errors.Is(failed[0], boom))
	assert.Contains(t, failed[1].Error(), "kaboom")
}

func TestWorkerPool_TaskContextIsNotTheCallers(t *testing.T) {
	taskQueue := newMockTaskQueue()
	pool := NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 1, TaskTimeout: time.Second}, setupTestLogger())

	seen := make(chan error, 1)
	taskQueue.ch <- newMockTask(func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		if !hasDeadline {
			seen <- errors.New("expected the task timeout to apply")
			return nil
		}
		seen <- ctx.Err()
		return nil
	})

	pool.Start()
	close(taskQueue.ch)
	require.NoError(t, pool.Stop(context.Background()))
	assert.NoError(t, <-seen)
}

func TestWorkerPool_StopTimeoutCancelsRunningTasks(t *testing.T) {
	taskQueue := newMockTaskQueue()
	pool := NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())

	started := make(chan struct{})
	var cancelled atomic.Bool
	taskQueue.ch <- newMockTask(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	})

	pool.Start()
	<-started
	close(taskQueue.ch)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := pool.Stop(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.True(t, cancelled.Load())
}
