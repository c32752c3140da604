package service_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/phrazzld/deckmind/internal/mocks"
	"github.com/phrazzld/deckmind/internal/platform/logger"
	"github.com/phrazzld/deckmind/internal/store"
)

func quietLogger() *slog.Logger {
	return logger.New(io.Discard, "error")
}

// ownedDecks returns a deck store that resolves exactly the given decks for
// their owners and reports everything else as not found.
func ownedDecks(decks ...*domain.Deck) *mocks.MockDeckStore {
	return &mocks.MockDeckStore{
		FindFn: func(_ context.Context, deckID, ownerID string) (*domain.Deck, error) {
			for _, d := range decks {
				if d.ID == deckID && d.UserID == ownerID {
					cp := *d
					return &cp, nil
				}
			}
			return nil, store.ErrDeckNotFound
		},
	}
}

func cardsInDeck(cards ...*domain.Flashcard) *mocks.MockFlashcardStore {
	return &mocks.MockFlashcardStore{
		FindFn: func(_ context.Context, deckID, flashcardID string) (*domain.Flashcard, error) {
			for _, c := range cards {
				if c.DeckID == deckID && c.ID == flashcardID {
					return c.Clone(), nil
				}
			}
			return nil, store.ErrFlashcardNotFound
		},
		FindAllInDeckFn: func(_ context.Context, deckID, ownerID string) ([]*domain.Flashcard, error) {
			out := []*domain.Flashcard{}
			for _, c := range cards {
				if c.DeckID == deckID && c.UserID == ownerID {
					out = append(out, c.Clone())
				}
			}
			return out, nil
		},
	}
}

func frontBackCard(id, deckID, userID, front string) *domain.Flashcard {
	return &domain.Flashcard{
		ID:          id,
		DeckID:      deckID,
		UserID:      userID,
		ReviewState: domain.DefaultReviewState(),
		Content:     &domain.FrontBack{Front: front, Back: "answer to " + front},
	}
}
