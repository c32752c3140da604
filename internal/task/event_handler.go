package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/deckmind/internal/events"
)

// ErrInvalidPayload is returned by factories when an event payload cannot
// be turned into a task.
var ErrInvalidPayload = errors.New("invalid task payload")

// TaskFactory builds a task from an event.
type TaskFactory interface {
	CreateTask(event *events.TaskRequestEvent) (Task, error)
}

// TaskSubmitter accepts tasks for detached execution. *TaskRunner implements it.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler implements the events.EventHandler interface
// to handle task creation events and delegate them to the task factory
// registered for the event type.
type TaskFactoryEventHandler struct {
	mu        sync.RWMutex
	factories map[string]TaskFactory
	runner    TaskSubmitter
	logger    *slog.Logger
}

// Ensure TaskFactoryEventHandler implements events.EventHandler
var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)

// NewTaskFactoryEventHandler creates a new event handler that submits the
// tasks it builds to runner.
func NewTaskFactoryEventHandler(runner TaskSubmitter, logger *slog.Logger) *TaskFactoryEventHandler {
	if runner == nil {
		panic("runner cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskFactoryEventHandler{
		factories: make(map[string]TaskFactory),
		runner:    runner,
		logger:    logger.With(slog.String("component", "task_factory_event_handler")),
	}
}

// Register routes events of eventType to factory, replacing any previous
// registration.
func (h *TaskFactoryEventHandler) Register(eventType string, factory TaskFactory) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.factories[eventType] = factory
}

// HandleEvent processes events by creating and submitting tasks. Events
// without a registered factory are ignored. Submission errors, including a
// full queue, are returned to the emitter.
func (h *TaskFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	log := h.logger.With(
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type))

	h.mu.RLock()
	factory, ok := h.factories[event.Type]
	h.mu.RUnlock()
	if !ok {
		log.Debug("ignoring event with unsupported type")
		return nil
	}

	task, err := factory.CreateTask(event)
	if err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.runner.Submit(ctx, task); err != nil {
		log.Error("failed to submit task",
			slog.String("task_id", task.ID().String()),
			slog.String("error", err.Error()))
		return err
	}

	log.Info("task created and submitted successfully",
		slog.String("task_id", task.ID().String()),
		slog.String("task_type", task.Type()))
	return nil
}
