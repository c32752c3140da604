package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/phrazzld/deckmind/internal/platform/logger"
	"github.com/phrazzld/deckmind/internal/store"
)

// PostgresChatStore implements the store.ChatStore interface.
// The BIGSERIAL seq column provides the insertion-ordered key.
type PostgresChatStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresChatStore creates a new PostgreSQL implementation of the ChatStore interface.
func NewPostgresChatStore(db store.DBTX, logger *slog.Logger) *PostgresChatStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresChatStore{
		db:     db,
		logger: logger.With(slog.String("component", "chat_store")),
	}
}

// Ensure PostgresChatStore implements store.ChatStore interface
var _ store.ChatStore = (*PostgresChatStore)(nil)

// formatSeq renders a sequence number as a fixed-width key so that string
// order matches insertion order.
func formatSeq(seq int64) string {
	return fmt.Sprintf("%020d", seq)
}

// AddMessage implements store.ChatStore.AddMessage.
func (s *PostgresChatStore) AddMessage(
	ctx context.Context,
	userID string,
	msg *domain.ChatMessage,
) (*domain.ChatMessage, error) {
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	var seq int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO chat_messages (user_id, sender, text, sent_at) VALUES ($1, $2, $3, $4) RETURNING seq`,
		userID,
		string(msg.Sender),
		msg.Text,
		msg.Timestamp,
	).Scan(&seq)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to insert chat message",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	saved := *msg
	saved.ID = formatSeq(seq)
	return &saved, nil
}

// GetLatestMessages implements store.ChatStore.GetLatestMessages.
func (s *PostgresChatStore) GetLatestMessages(
	ctx context.Context,
	userID string,
	limit int,
) ([]*domain.ChatMessage, error) {
	messages := make([]*domain.ChatMessage, 0)
	if limit <= 0 {
		return messages, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, sender, text, sent_at FROM chat_messages WHERE user_id = $1 ORDER BY seq DESC LIMIT $2`,
		userID,
		limit,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query chat messages",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			seq    int64
			sender string
			msg    domain.ChatMessage
		)
		if err := rows.Scan(&seq, &sender, &msg.Text, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan chat message row: %w", err)
		}
		msg.ID = formatSeq(seq)
		msg.Sender = domain.Sender(sender)
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat message rows: %w", err)
	}

	slices.Reverse(messages)
	return messages, nil
}
