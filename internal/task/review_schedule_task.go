package task

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/deckmind/internal/events"
)

// ReviewScheduler is the part of the scheduling service the task needs.
type ReviewScheduler interface {
	Schedule(ctx context.Context, userID, deckID string) error
}

// ReviewScheduleTask computes and stores one deck's next review date.
type ReviewScheduleTask struct {
	id        uuid.UUID
	payload   events.ReviewSchedulePayload
	scheduler ReviewScheduler
	logger    *slog.Logger
}

var _ Task = (*ReviewScheduleTask)(nil)

// ID implements Task.
func (t *ReviewScheduleTask) ID() uuid.UUID { return t.id }

// Type implements Task.
func (t *ReviewScheduleTask) Type() string { return TaskTypeReviewSchedule }

// Execute implements Task.
func (t *ReviewScheduleTask) Execute(ctx context.Context) error {
	t.logger.Debug("scheduling deck review",
		slog.String("deck_id", t.payload.DeckID),
		slog.String("user_id", t.payload.UserID))
	return t.scheduler.Schedule(ctx, t.payload.UserID, t.payload.DeckID)
}

// ReviewScheduleTaskFactory builds ReviewScheduleTasks from
// events.TypeReviewScheduleRequested events.
type ReviewScheduleTaskFactory struct {
	scheduler ReviewScheduler
	logger    *slog.Logger
}

var _ TaskFactory = (*ReviewScheduleTaskFactory)(nil)

// NewReviewScheduleTaskFactory creates a factory bound to scheduler.
func NewReviewScheduleTaskFactory(scheduler ReviewScheduler, logger *slog.Logger) *ReviewScheduleTaskFactory {
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewScheduleTaskFactory{
		scheduler: scheduler,
		logger:    logger.With(slog.String("component", "review_schedule_task")),
	}
}

// CreateTask implements TaskFactory.
func (f *ReviewScheduleTaskFactory) CreateTask(event *events.TaskRequestEvent) (Task, error) {
	var payload events.ReviewSchedulePayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if strings.TrimSpace(payload.UserID) == "" || strings.TrimSpace(payload.DeckID) == "" {
		return nil, fmt.Errorf("%w: user_id and deck_id are required", ErrInvalidPayload)
	}
	return &ReviewScheduleTask{
		id:        uuid.New(),
		payload:   payload,
		scheduler: f.scheduler,
		logger:    f.logger,
	}, nil
}
