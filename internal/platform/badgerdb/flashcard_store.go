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

// BadgerFlashcardStore implements store.FlashcardStore on Badger.
type BadgerFlashcardStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// NewBadgerFlashcardStore creates a flashcard store. It panics if db is nil.
func NewBadgerFlashcardStore(db *badger.DB, logger *slog.Logger) *BadgerFlashcardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BadgerFlashcardStore{
		db:     db,
		logger: logger.With(slog.String("component", "flashcard_store")),
	}
}

var _ store.FlashcardStore = (*BadgerFlashcardStore)(nil)

func decodeFlashcard(raw []byte) (*domain.Flashcard, error) {
	var card domain.Flashcard
	if err := json.Unmarshal(raw, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// Find implements store.FlashcardStore.Find.
func (s *BadgerFlashcardStore) Find(ctx context.Context, deckID, flashcardID string) (*domain.Flashcard, error) {
	if !validKeyPart(deckID) || !validKeyPart(flashcardID) {
		return nil, store.ErrFlashcardNotFound
	}

	var card *domain.Flashcard
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(flashcardKey(deckID, flashcardID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return store.ErrFlashcardNotFound
			}
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		card, err = decodeFlashcard(raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// FindAllInDeck implements store.FlashcardStore.FindAllInDeck. Ownership is
// checked in the same read transaction as the listing.
func (s *BadgerFlashcardStore) FindAllInDeck(ctx context.Context, deckID, ownerID string) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	cards := make([]*domain.Flashcard, 0)

	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := getDeck(txn, ownerID, deckID); err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = flashcardDeckPrefix(deckID)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			raw, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			card, err := decodeFlashcard(raw)
			if err != nil {
				return fmt.Errorf("key %s: %w", it.Item().Key(), err)
			}
			cards = append(cards, card)
		}
		return nil
	})
	if errors.Is(err, store.ErrDeckNotFound) {
		log.Warn("flashcard listing denied: deck absent or not owned",
			slog.String("deck_id", deckID),
			slog.String("user_id", ownerID))
		return []*domain.Flashcard{}, nil
	}
	if err != nil {
		log.Error("failed to list flashcards",
			slog.String("deck_id", deckID),
			slog.String("error", err.Error()))
		return nil, err
	}
	return cards, nil
}

// Create implements store.FlashcardStore.Create. The card write and the
// deck's cardCount increment commit together.
func (s *BadgerFlashcardStore) Create(
	ctx context.Context,
	deckID, ownerID string,
	card *domain.Flashcard,
) (*domain.Flashcard, error) {
	created := card.Clone()
	created.ID = uuid.NewString()
	created.DeckID = deckID
	created.UserID = ownerID
	created.ReviewState = domain.DefaultReviewState()
	if err := created.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	raw, err := json.Marshal(created)
	if err != nil {
		return nil, fmt.Errorf("failed to encode flashcard: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		deck, err := getDeck(txn, ownerID, deckID)
		if err != nil {
			return err
		}
		deck.CardCount++
		if err := putDeck(txn, deck); err != nil {
			return err
		}
		return txn.Set(flashcardKey(deckID, created.ID), raw)
	})
	if err != nil {
		if !errors.Is(err, store.ErrDeckNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to create flashcard",
				slog.String("deck_id", deckID),
				slog.String("error", err.Error()))
		}
		return nil, err
	}
	return created, nil
}

// SaveAll implements store.FlashcardStore.SaveAll in one Badger transaction.
func (s *BadgerFlashcardStore) SaveAll(ctx context.Context, cards []*domain.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}

	values := make([][]byte, len(cards))
	for i, card := range cards {
		if !validKeyPart(card.ID) || !validKeyPart(card.DeckID) {
			return fmt.Errorf("%w: flashcard at index %d has an invalid key", store.ErrInvalidEntity, i)
		}
		if err := card.Validate(); err != nil {
			return fmt.Errorf("%w: flashcard %s: %w", store.ErrInvalidEntity, card.ID, err)
		}
		raw, err := json.Marshal(card)
		if err != nil {
			return fmt.Errorf("failed to encode flashcard %s: %w", card.ID, err)
		}
		values[i] = raw
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		for i, card := range cards {
			if err := txn.Set(flashcardKey(card.DeckID, card.ID), values[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to save flashcards",
			slog.Int("count", len(cards)),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}
