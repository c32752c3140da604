package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/deckmind/internal/config"
	"github.com/phrazzld/deckmind/internal/redact"
)

// ErrRunnerStarted is returned when Start is called twice.
var ErrRunnerStarted = errors.New("task runner already started")

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// TaskTimeout bounds a single task execution. Zero, the default,
	// disables the bound.
	TaskTimeout time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// RunnerConfigFrom converts the application's task settings.
func RunnerConfigFrom(cfg config.TaskConfig) TaskRunnerConfig {
	rc := DefaultTaskRunnerConfig()
	rc.WorkerCount = cfg.WorkerCount
	rc.QueueSize = cfg.QueueSize
	return rc
}

// TaskRunner manages background task processing: a bounded queue feeding a
// worker pool.
type TaskRunner struct {
	queue   *TaskQueue
	pool    *WorkerPool
	logger  *slog.Logger
	mu      sync.Mutex
	started bool
}

// NewTaskRunner creates a new TaskRunner. The default error handler logs
// the failure; every outcome is also counted in metrics.
func NewTaskRunner(config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "task_runner"))

	queue := NewTaskQueue(config.QueueSize, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{
		WorkerCount: config.WorkerCount,
		TaskTimeout: config.TaskTimeout,
	}, logger)

	r := &TaskRunner{
		queue:  queue,
		pool:   pool,
		logger: logger,
	}
	pool.SetErrorHandler(func(task Task, err error) {
		r.logger.Error("background task failed",
			slog.String("task_id", task.ID().String()),
			slog.String("task_type", task.Type()),
			slog.String("error", redact.Error(err)))
	})
	return r
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.pool.SetErrorHandler(handler)
}

// Submit adds a new task to the queue without blocking. It fails with
// ErrQueueFull when the buffer is full and ErrQueueClosed after Stop.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.queue.Enqueue(task); err != nil {
		r.logger.Warn("task rejected",
			slog.String("task_id", task.ID().String()),
			slog.String("task_type", task.Type()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to submit task: %w", err)
	}
	return nil
}

// Start begins processing queued tasks.
func (r *TaskRunner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return ErrRunnerStarted
	}
	r.started = true
	r.pool.Start()
	return nil
}

// Stop stops accepting tasks and waits for queued and running tasks to
// finish. When ctx ends first, running tasks are cancelled and the
// remaining queued tasks are dropped.
func (r *TaskRunner) Stop(ctx context.Context) error {
	r.queue.Close()

	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if !started {
		return nil
	}
	return r.pool.Stop(ctx)
}

// QueueLen returns the number of tasks waiting for a worker.
func (r *TaskRunner) QueueLen() int {
	return r.queue.Len()
}
