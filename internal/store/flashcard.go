package store

import (
	"context"

	"github.com/phrazzld/deckmind/internal/domain"
)

// FlashcardStore defines the interface for flashcard persistence.
// Flashcards are keyed by deck id, then flashcard id. The store does not
// enforce that a card's deckId/userId match its deck; callers stamp them.
type FlashcardStore interface {
	// Find returns ErrFlashcardNotFound if no card with flashcardID exists in deckID.
	Find(ctx context.Context, deckID, flashcardID string) (*domain.Flashcard, error)

	// FindAllInDeck verifies that ownerID owns deckID before reading any card.
	// When the deck is absent or owned by someone else it logs the denial and
	// returns an empty slice and a nil error.
	FindAllInDeck(ctx context.Context, deckID, ownerID string) ([]*domain.Flashcard, error)

	// Create assigns a fresh identity, stamps deckID and ownerID, resets the
	// bookkeeping to its defaults, saves the card and increments the deck's
	// cardCount in the same write.
	// Returns ErrDeckNotFound if ownerID does not own deckID.
	Create(ctx context.Context, deckID, ownerID string, card *domain.Flashcard) (*domain.Flashcard, error)

	// SaveAll upserts every card in one batched write. Either all cards are
	// saved or none are. An empty slice is a no-op.
	SaveAll(ctx context.Context, cards []*domain.Flashcard) error
}
