package store

import (
	"context"

	"github.com/phrazzld/deckmind/internal/domain"
)

// ChatStore persists each user's append-only conversation.
// Messages are keyed by owner id, then a monotonically increasing insertion key.
type ChatStore interface {
	// AddMessage appends msg to userID's conversation and returns it with the
	// assigned key in ID.
	AddMessage(ctx context.Context, userID string, msg *domain.ChatMessage) (*domain.ChatMessage, error)

	// GetLatestMessages returns at most limit of the newest messages in
	// chronological order (oldest first).
	GetLatestMessages(ctx context.Context, userID string, limit int) ([]*domain.ChatMessage, error)
}
