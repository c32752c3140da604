package domain

import (
	"strings"
	"time"
)

// Deck is a named, owned collection of flashcards.
// UserID is set by the store on creation and never changes afterwards.
type Deck struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	UserID       string `json:"userId"`
	CardCount    int    `json:"cardCount"`
	NextReviewAt *int64 `json:"nextReviewAt,omitempty"`
}

// Validate checks the fields a client may set.
func (d *Deck) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return NewValidationError("name", "cannot be empty", ErrValidation)
	}
	if d.CardCount < 0 {
		return NewValidationError("cardCount", "cannot be negative", ErrValidation)
	}
	return nil
}

// IsOwnedBy reports whether userID owns the deck.
func (d *Deck) IsOwnedBy(userID string) bool {
	return userID != "" && d.UserID == userID
}

// NextReview returns the scheduled review time, or the zero time if the deck
// has never been scheduled.
func (d *Deck) NextReview() time.Time {
	if d.NextReviewAt == nil {
		return time.Time{}
	}
	return time.UnixMilli(*d.NextReviewAt)
}

// CloneFor copies the deck for another owner. The store assigns the id on
// create, scheduling state is cleared and cardCount is set to the number of
// cards that will be copied with it.
func (d *Deck) CloneFor(userID string, cardCount int) *Deck {
	return &Deck{
		Name:        d.Name,
		Description: d.Description,
		UserID:      userID,
		CardCount:   cardCount,
	}
}
