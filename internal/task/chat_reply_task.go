package task

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/phrazzld/deckmind/internal/events"
)

// ChatResponder is the part of the chat service the task needs.
type ChatResponder interface {
	Respond(ctx context.Context, userID string, msg *domain.ChatMessage) (*domain.ChatMessage, error)
}

// ChatReplyTask stores a user message and the assistant's reply to it.
type ChatReplyTask struct {
	id        uuid.UUID
	userID    string
	message   *domain.ChatMessage
	responder ChatResponder
	logger    *slog.Logger
}

var _ Task = (*ChatReplyTask)(nil)

// ID implements Task.
func (t *ChatReplyTask) ID() uuid.UUID { return t.id }

// Type implements Task.
func (t *ChatReplyTask) Type() string { return TaskTypeChatReply }

// Execute implements Task.
func (t *ChatReplyTask) Execute(ctx context.Context) error {
	reply, err := t.responder.Respond(ctx, t.userID, t.message)
	if err != nil {
		return err
	}
	t.logger.Debug("chat reply stored",
		slog.String("user_id", t.userID),
		slog.String("message_id", reply.ID))
	return nil
}

// ChatReplyTaskFactory builds ChatReplyTasks from
// events.TypeChatReplyRequested events.
type ChatReplyTaskFactory struct {
	responder ChatResponder
	logger    *slog.Logger
}

var _ TaskFactory = (*ChatReplyTaskFactory)(nil)

// NewChatReplyTaskFactory creates a factory bound to responder.
func NewChatReplyTaskFactory(responder ChatResponder, logger *slog.Logger) *ChatReplyTaskFactory {
	if responder == nil {
		panic("responder cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatReplyTaskFactory{
		responder: responder,
		logger:    logger.With(slog.String("component", "chat_reply_task")),
	}
}

// CreateTask implements TaskFactory. The user message keeps the timestamp
// at which it was submitted.
func (f *ChatReplyTaskFactory) CreateTask(event *events.TaskRequestEvent) (Task, error) {
	var payload events.ChatReplyPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if strings.TrimSpace(payload.UserID) == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidPayload)
	}

	msg := &domain.ChatMessage{
		Sender:    domain.SenderUser,
		Text:      payload.Text,
		Timestamp: payload.SentAt,
	}
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	return &ChatReplyTask{
		id:        uuid.New(),
		userID:    payload.UserID,
		message:   msg,
		responder: f.responder,
		logger:    f.logger,
	}, nil
}
