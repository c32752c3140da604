package domain

import (
	"strings"
	"time"
)

// Sender identifies who wrote a chat message.
type Sender string

// Chat senders.
const (
	SenderUser Sender = "USER"
	SenderLLM  Sender = "LLM"
)

// MaxChatMessageLength bounds the text a user may submit in one message.
const MaxChatMessageLength = 4000

// ChatMessage is one entry of a user's append-only conversation. ID is the
// insertion-ordered key assigned by the store.
type ChatMessage struct {
	ID        string `json:"id"`
	Sender    Sender `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// NewChatMessage creates an unsaved message stamped with the current time.
func NewChatMessage(sender Sender, text string) (*ChatMessage, error) {
	msg := &ChatMessage{
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return msg, nil
}

// Validate checks the sender and text.
func (m *ChatMessage) Validate() error {
	if m.Sender != SenderUser && m.Sender != SenderLLM {
		return NewValidationError("sender", "must be USER or LLM", ErrValidation)
	}
	if strings.TrimSpace(m.Text) == "" {
		return NewValidationError("text", "cannot be empty", ErrEmptyContent)
	}
	if m.Sender == SenderUser && len(m.Text) > MaxChatMessageLength {
		return NewValidationError("text", "is too long", ErrValidation)
	}
	return nil
}
