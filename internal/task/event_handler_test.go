package task

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/phrazzld/deckmind/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSubmitter implements TaskSubmitter for testing
type recordingSubmitter struct {
	err       error
	submitted []Task
}

func (s *recordingSubmitter) Submit(_ context.Context, task Task) error {
	if s.err != nil {
		return s.err
	}
	s.submitted = append(s.submitted, task)
	return nil
}

// fakeScheduler implements ReviewScheduler for testing
type fakeScheduler struct {
	userID, deckID string
	err            error
}

func (f *fakeScheduler) Schedule(_ context.Context, userID, deckID string) error {
	f.userID, f.deckID = userID, deckID
	return f.err
}

// fakeResponder implements ChatResponder for testing
type fakeResponder struct {
	userID string
	msg    *domain.ChatMessage
	err    error
}

func (f *fakeResponder) Respond(_ context.Context, userID string, msg *domain.ChatMessage) (*domain.ChatMessage, error) {
	f.userID, f.msg = userID, msg
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ChatMessage{ID: "00000000000000000002", Sender: domain.SenderLLM, Text: "reply"}, nil
}

func mustEvent(t *testing.T, eventType string, payload any) *events.TaskRequestEvent {
	t.Helper()
	event, err := events.NewTaskRequestEvent(eventType, payload)
	require.NoError(t, err)
	return event
}

func TestTaskFactoryEventHandler_HandleEvent(t *testing.T) {
	logger := setupTestLogger()

	t.Run("review schedule event", func(t *testing.T) {
		submitter := &recordingSubmitter{}
		scheduler := &fakeScheduler{}
		handler := NewTaskFactoryEventHandler(submitter, logger)
		handler.Register(events.TypeReviewScheduleRequested, NewReviewScheduleTaskFactory(scheduler, logger))

		event := mustEvent(t, events.TypeReviewScheduleRequested, events.ReviewSchedulePayload{UserID: "u1", DeckID: "d1"})
		require.NoError(t, handler.HandleEvent(context.Background(), event))

		require.Len(t, submitter.submitted, 1)
		submitted := submitter.submitted[0]
		assert.Equal(t, TaskTypeReviewSchedule, submitted.Type())

		require.NoError(t, submitted.Execute(context.Background()))
		assert.Equal(t, "u1", scheduler.userID)
		assert.Equal(t, "d1", scheduler.deckID)
	})

	t.Run("chat reply event", func(t *testing.T) {
		submitter := &recordingSubmitter{}
		responder := &fakeResponder{}
		handler := NewTaskFactoryEventHandler(submitter, logger)
		handler.Register(events.TypeChatReplyRequested, NewChatReplyTaskFactory(responder, logger))

		event := mustEvent(t, events.TypeChatReplyRequested, events.ChatReplyPayload{UserID: "u1", Text: "hi", SentAt: 1700000000000})
		require.NoError(t, handler.HandleEvent(context.Background(), event))
		require.Len(t, submitter.submitted, 1)

		require.NoError(t, submitter.submitted[0].Execute(context.Background()))
		assert.Equal(t, "u1", responder.userID)
		assert.Equal(t, domain.SenderUser, responder.msg.Sender)
		assert.Equal(t, "hi", responder.msg.Text)
		assert.Equal(t, int64(1700000000000), responder.msg.Timestamp)
	})

	t.Run("unregistered event type is ignored", func(t *testing.T) {
		submitter := &recordingSubmitter{}
		handler := NewTaskFactoryEventHandler(submitter, logger)

		event := mustEvent(t, "something_else", map[string]string{})
		require.NoError(t, handler.HandleEvent(context.Background(), event))
		assert.Empty(t, submitter.submitted)
	})

	t.Run("invalid payload", func(t *testing.T) {
		submitter := &recordingSubmitter{}
		handler := NewTaskFactoryEventHandler(submitter, logger)
		handler.Register(events.TypeReviewScheduleRequested, NewReviewScheduleTaskFactory(&fakeScheduler{}, logger))

		event := mustEvent(t, events.TypeReviewScheduleRequested, events.ReviewSchedulePayload{UserID: "u1"})
		err := handler.HandleEvent(context.Background(), event)
		assert.True(t, errors.Is(err, ErrInvalidPayload))
		assert.Empty(t, submitter.submitted)
	})

	t.Run("queue full is returned to the emitter", func(t *testing.T) {
		submitter := &recordingSubmitter{err: ErrQueueFull}
		handler := NewTaskFactoryEventHandler(submitter, logger)
		handler.Register(events.TypeReviewScheduleRequested, NewReviewScheduleTaskFactory(&fakeScheduler{}, logger))

		event := mustEvent(t, events.TypeReviewScheduleRequested, events.ReviewSchedulePayload{UserID: "u1", DeckID: "d1"})
		err := handler.HandleEvent(context.Background(), event)
		assert.True(t, errors.Is(err, ErrQueueFull))
	})
}

func TestChatReplyTaskFactory_RejectsEmptyText(t *testing.T) {
	factory := NewChatReplyTaskFactory(&fakeResponder{}, setupTestLogger())

	event := mustEvent(t, events.TypeChatReplyRequested, events.ChatReplyPayload{UserID: "u1", Text: " "})
	_, err := factory.CreateTask(event)
	assert.True(t, errors.Is(err, ErrInvalidPayload))
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestTasks_PropagateFailures(t *testing.T) {
	boom := errors.New("boom")
	logger := setupTestLogger()

	schedule, err := NewReviewScheduleTaskFactory(&fakeScheduler{err: boom}, logger).CreateTask(
		mustEvent(t, events.TypeReviewScheduleRequested, events.ReviewSchedulePayload{UserID: "u1", DeckID: "d1"}))
	require.NoError(t, err)
	assert.True(t, errors.Is(schedule.Execute(context.Background()), boom))

	chat, err := NewChatReplyTaskFactory(&fakeResponder{err: boom}, logger).CreateTask(
		mustEvent(t, events.TypeChatReplyRequested, events.ChatReplyPayload{UserID: "u1", Text: "hi"}))
	require.NoError(t, err)
	assert.True(t, errors.Is(chat.Execute(context.Background()), boom))
}

func TestDetachedFlow_EmitterToRunner(t *testing.T) {
	logger := setupTestLogger()
	runner := NewTaskRunner(TaskRunnerConfig{WorkerCount: 1, QueueSize: 4}, logger)
	scheduler := &fakeScheduler{}

	handler := NewTaskFactoryEventHandler(runner, logger)
	handler.Register(events.TypeReviewScheduleRequested, NewReviewScheduleTaskFactory(scheduler, logger))
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(handler)

	require.NoError(t, runner.Start())
	event := mustEvent(t, events.TypeReviewScheduleRequested, events.ReviewSchedulePayload{UserID: "u1", DeckID: "d1"})
	require.NoError(t, emitter.EmitEvent(context.Background(), event))
	require.NoError(t, runner.Stop(context.Background()))

	assert.Equal(t, "d1", scheduler.deckID)
}
