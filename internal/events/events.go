package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	// TypeReviewScheduleRequested asks for a deck's next review date to be
	// computed. Payload: ReviewSchedulePayload.
	TypeReviewScheduleRequested = "review_schedule_requested"

	// TypeChatReplyRequested asks for a reply to a user chat message.
	// Payload: ChatReplyPayload.
	TypeChatReplyRequested = "chat_reply_requested"
)

// ReviewSchedulePayload identifies the deck to schedule.
type ReviewSchedulePayload struct {
	UserID string `json:"user_id"`
	DeckID string `json:"deck_id"`
}

// ChatReplyPayload carries the user message to answer. SentAt is the epoch
// millisecond timestamp of submission.
type ChatReplyPayload struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
	SentAt int64  `json:"sent_at"`
}

// TaskRequestEvent represents a request to create a background task.
type TaskRequestEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates the task type that should be created
	Type string `json:"type"`

	// Payload contains the task-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *TaskRequestEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTaskRequestEvent creates an event with the given type and payload.
func NewTaskRequestEvent(eventType string, payload any) (*TaskRequestEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &TaskRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// EventHandler processes events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventEmitter publishes events to handlers it does not know about.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}
