package store

import (
	"context"

	"github.com/phrazzld/deckmind/internal/domain"
)

// DeckPatch names the deck fields to merge. Nil fields are left untouched.
type DeckPatch struct {
	Name         *string
	Description  *string
	NextReviewAt *int64
}

// IsEmpty reports whether the patch sets no field.
func (p DeckPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.NextReviewAt == nil
}

// Apply merges the set fields into d.
func (p DeckPatch) Apply(d *domain.Deck) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.NextReviewAt != nil {
		ts := *p.NextReviewAt
		d.NextReviewAt = &ts
	}
}

// DeckStore defines the interface for deck persistence.
// Decks are keyed by owner id, then deck id.
type DeckStore interface {
	// FindByOwner returns every deck owned by userID. An owner with no decks
	// yields an empty slice.
	FindByOwner(ctx context.Context, userID string) ([]*domain.Deck, error)

	// Create assigns a fresh identity, stamps ownerID as the owner and saves
	// the deck. The returned deck carries the new id.
	Create(ctx context.Context, deck *domain.Deck, ownerID string) (*domain.Deck, error)

	// Find returns ErrDeckNotFound if the deck is absent or not owned by ownerID.
	Find(ctx context.Context, deckID, ownerID string) (*domain.Deck, error)

	// UpdateFields merges only the fields set in patch.
	// Returns ErrDeckNotFound if the deck is absent or not owned by ownerID.
	UpdateFields(ctx context.Context, deckID, ownerID string, patch DeckPatch) error
}
