package badgerdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/phrazzld/deckmind/internal/platform/logger"
	"github.com/phrazzld/deckmind/internal/store"
)

// BadgerDeckStore implements store.DeckStore on Badger.
type BadgerDeckStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// NewBadgerDeckStore creates a deck store. It panics if db is nil.
func NewBadgerDeckStore(db *badger.DB, logger *slog.Logger) *BadgerDeckStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BadgerDeckStore{
		db:     db,
		logger: logger.With(slog.String("component", "deck_store")),
	}
}

var _ store.DeckStore = (*BadgerDeckStore)(nil)

func getDeck(txn *badger.Txn, userID, deckID string) (*domain.Deck, error) {
	if !validKeyPart(userID) || !validKeyPart(deckID) {
		return nil, store.ErrDeckNotFound
	}
	item, err := txn.Get(deckKey(userID, deckID))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, store.ErrDeckNotFound
		}
		return nil, fmt.Errorf("failed to read deck: %w", err)
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read deck value: %w", err)
	}
	var deck domain.Deck
	if err := json.Unmarshal(raw, &deck); err != nil {
		return nil, fmt.Errorf("%w: deck %s: %v", domain.ErrSerialization, deckID, err)
	}
	return &deck, nil
}

func putDeck(txn *badger.Txn, deck *domain.Deck) error {
	raw, err := json.Marshal(deck)
	if err != nil {
		return fmt.Errorf("failed to encode deck: %w", err)
	}
	return txn.Set(deckKey(deck.UserID, deck.ID), raw)
}

// FindByOwner implements store.DeckStore.FindByOwner.
func (s *BadgerDeckStore) FindByOwner(ctx context.Context, userID string) ([]*domain.Deck, error) {
	decks := make([]*domain.Deck, 0)
	if !validKeyPart(userID) {
		return decks, nil
	}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = deckOwnerPrefix(userID)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			raw, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var deck domain.Deck
			if err := json.Unmarshal(raw, &deck); err != nil {
				return fmt.Errorf("%w: key %s: %v", domain.ErrSerialization, it.Item().Key(), err)
			}
			decks = append(decks, &deck)
		}
		return nil
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list decks",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return nil, err
	}
	return decks, nil
}

// Create implements store.DeckStore.Create.
func (s *BadgerDeckStore) Create(ctx context.Context, deck *domain.Deck, ownerID string) (*domain.Deck, error) {
	if !validKeyPart(ownerID) {
		return nil, fmt.Errorf("%w: invalid owner id", store.ErrInvalidEntity)
	}
	if err := deck.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	created := *deck
	created.ID = uuid.NewString()
	created.UserID = ownerID
	if deck.NextReviewAt != nil {
		ts := *deck.NextReviewAt
		created.NextReviewAt = &ts
	}

	if err := s.db.Update(func(txn *badger.Txn) error {
		return putDeck(txn, &created)
	}); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create deck",
			slog.String("user_id", ownerID),
			slog.String("error", err.Error()))
		return nil, err
	}
	return &created, nil
}

// Find implements store.DeckStore.Find.
func (s *BadgerDeckStore) Find(ctx context.Context, deckID, ownerID string) (*domain.Deck, error) {
	var deck *domain.Deck
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		deck, err = getDeck(txn, ownerID, deckID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return deck, nil
}

// UpdateFields implements store.DeckStore.UpdateFields as a read-merge-write
// inside one Badger transaction.
func (s *BadgerDeckStore) UpdateFields(ctx context.Context, deckID, ownerID string, patch store.DeckPatch) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		deck, err := getDeck(txn, ownerID, deckID)
		if err != nil {
			return err
		}
		patch.Apply(deck)
		return putDeck(txn, deck)
	})
	if err != nil && !errors.Is(err, store.ErrDeckNotFound) {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update deck",
			slog.String("deck_id", deckID),
			slog.String("error", err.Error()))
	}
	return err
}
