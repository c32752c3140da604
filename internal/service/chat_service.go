package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/phrazzld/deckmind/internal/events"
	"github.com/phrazzld/deckmind/internal/generation"
	"github.com/phrazzld/deckmind/internal/platform/logger"
	"github.com/phrazzld/deckmind/internal/store"
)

// Chat history bounds.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200

	// DefaultContextMessages is how many recent messages are quoted to the
	// chat gateway when no other value is configured.
	DefaultContextMessages = 10
)

// ChatService manages each user's conversation with the assistant.
type ChatService interface {
	// Submit validates text and queues a detached reply. Nothing is stored
	// until the reply runs.
	Submit(ctx context.Context, userID, text string) error

	// Respond stores msg, asks the chat gateway for a reply to the recent
	// conversation and stores the reply.
	Respond(ctx context.Context, userID string, msg *domain.ChatMessage) (*domain.ChatMessage, error)

	// History returns the newest limit messages, oldest first.
	History(ctx context.Context, userID string, limit int) ([]*domain.ChatMessage, error)
}

type chatServiceImpl struct {
	chats           store.ChatStore
	gateway         generation.Gateway
	emitter         events.EventEmitter
	contextMessages int
	logger          *slog.Logger
}

var _ ChatService = (*chatServiceImpl)(nil)

// NewChatService creates a ChatService. contextMessages bounds the history
// quoted in each prompt; a non-positive value selects DefaultContextMessages.
// It returns an error if any of the required dependencies are nil.
func NewChatService(
	chats store.ChatStore,
	gateway generation.Gateway,
	emitter events.EventEmitter,
	contextMessages int,
	logger *slog.Logger,
) (ChatService, error) {
	if chats == nil {
		return nil, domain.NewValidationError("chats", "cannot be nil", domain.ErrValidation)
	}
	if gateway == nil {
		return nil, domain.NewValidationError("gateway", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		return nil, domain.NewValidationError("emitter", "cannot be nil", domain.ErrValidation)
	}
	if contextMessages <= 0 {
		contextMessages = DefaultContextMessages
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &chatServiceImpl{
		chats:           chats,
		gateway:         gateway,
		emitter:         emitter,
		contextMessages: contextMessages,
		logger:          logger.With(slog.String("component", "chat_service")),
	}, nil
}

// Submit implements ChatService.Submit.
func (s *chatServiceImpl) Submit(ctx context.Context, userID, text string) error {
	const op = "submit_chat_message"

	msg, err := domain.NewChatMessage(domain.SenderUser, strings.TrimSpace(text))
	if err != nil {
		return NewServiceError(op, "invalid chat message", err)
	}

	event, err := events.NewTaskRequestEvent(events.TypeChatReplyRequested, events.ChatReplyPayload{
		UserID: userID,
		Text:   msg.Text,
		SentAt: msg.Timestamp,
	})
	if err != nil {
		return NewServiceError(op, "failed to create event", err)
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		return NewServiceError(op, "failed to queue chat reply", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("chat reply queued",
		slog.String("user_id", userID),
		slog.String("event_id", event.ID.String()))
	return nil
}

// Respond implements ChatService.Respond.
func (s *chatServiceImpl) Respond(
	ctx context.Context,
	userID string,
	msg *domain.ChatMessage,
) (*domain.ChatMessage, error) {
	const op = "respond_chat_message"
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID))

	if msg == nil {
		return nil, NewServiceError(op, "invalid chat message",
			domain.NewValidationError("message", "cannot be nil", domain.ErrValidation))
	}
	if err := msg.Validate(); err != nil {
		return nil, NewServiceError(op, "invalid chat message", err)
	}

	if _, err := s.chats.AddMessage(ctx, userID, msg); err != nil {
		return nil, NewServiceError(op, "failed to save user message", err)
	}

	history, err := s.chats.GetLatestMessages(ctx, userID, s.contextMessages)
	if err != nil {
		return nil, NewServiceError(op, "failed to load chat history", err)
	}

	prompt, err := generation.ChatPrompt(history)
	if err != nil {
		return nil, NewServiceError(op, "failed to build prompt", err)
	}

	text, err := s.gateway.Send(ctx, prompt)
	if err != nil {
		return nil, NewServiceError(op, "chat gateway call failed", err)
	}

	reply, err := domain.NewChatMessage(domain.SenderLLM, strings.TrimSpace(text))
	if err != nil {
		return nil, NewServiceError(op, "chat reply is empty", generation.ErrEmptyResponse)
	}
	saved, err := s.chats.AddMessage(ctx, userID, reply)
	if err != nil {
		return nil, NewServiceError(op, "failed to save chat reply", err)
	}

	log.Info("chat reply saved",
		slog.String("message_id", saved.ID),
		slog.Int("context_messages", len(history)))
	return saved, nil
}

// History implements ChatService.History.
func (s *chatServiceImpl) History(ctx context.Context, userID string, limit int) ([]*domain.ChatMessage, error) {
	if limit < 1 || limit > MaxHistoryLimit {
		return nil, NewServiceError("chat_history", "invalid limit",
			domain.NewValidationError("limit", "must be between 1 and 200", domain.ErrValidation))
	}
	messages, err := s.chats.GetLatestMessages(ctx, userID, limit)
	if err != nil {
		return nil, NewServiceError("chat_history", "failed to load chat history", err)
	}
	return messages, nil
}
