package badgerdb

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/phrazzld/deckmind/internal/platform/logger"
	"github.com/phrazzld/deckmind/internal/store"
)

// BadgerChatStore implements store.ChatStore on Badger. Message keys come
// from a shared Badger sequence, so they increase across all users.
type BadgerChatStore struct {
	db     *badger.DB
	seq    *badger.Sequence
	logger *slog.Logger
}

// NewBadgerChatStore creates a chat store and leases its key sequence.
// Call Close to release unused leased keys.
func NewBadgerChatStore(db *badger.DB, logger *slog.Logger) (*BadgerChatStore, error) {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	seq, err := db.GetSequence([]byte(chatSequenceKey), 100)
	if err != nil {
		return nil, fmt.Errorf("failed to lease chat sequence: %w", err)
	}
	return &BadgerChatStore{
		db:     db,
		seq:    seq,
		logger: logger.With(slog.String("component", "chat_store")),
	}, nil
}

var _ store.ChatStore = (*BadgerChatStore)(nil)

// Close releases the leased sequence range.
func (s *BadgerChatStore) Close() error {
	return s.seq.Release()
}

// AddMessage implements store.ChatStore.AddMessage.
func (s *BadgerChatStore) AddMessage(
	ctx context.Context,
	userID string,
	msg *domain.ChatMessage,
) (*domain.ChatMessage, error) {
	if !validKeyPart(userID) {
		return nil, fmt.Errorf("%w: invalid user id", store.ErrInvalidEntity)
	}
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	n, err := s.seq.Next()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate chat key: %w", err)
	}

	saved := *msg
	saved.ID = formatSeq(n)
	raw, err := json.Marshal(&saved)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat message: %w", err)
	}

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(chatKey(userID, n), raw)
	}); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to save chat message",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return nil, err
	}
	return &saved, nil
}

// GetLatestMessages implements store.ChatStore.GetLatestMessages by iterating
// the user's keys in reverse and flipping the result.
func (s *BadgerChatStore) GetLatestMessages(
	ctx context.Context,
	userID string,
	limit int,
) ([]*domain.ChatMessage, error) {
	messages := make([]*domain.ChatMessage, 0)
	if limit <= 0 || !validKeyPart(userID) {
		return messages, nil
	}

	prefix := chatOwnerPrefix(userID)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append(slices.Clone(prefix), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix) && len(messages) < limit; it.Next() {
			raw, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var msg domain.ChatMessage
			if err := json.Unmarshal(raw, &msg); err != nil {
				return fmt.Errorf("%w: key %s: %v", domain.ErrSerialization, it.Item().Key(), err)
			}
			messages = append(messages, &msg)
		}
		return nil
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to read chat history",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return nil, err
	}

	slices.Reverse(messages)
	return messages, nil
}
