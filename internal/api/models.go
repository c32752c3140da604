package api

import "github.com/phrazzld/deckmind/internal/domain"

// CreateDeckRequest defines the payload for POST /api/decks.
type CreateDeckRequest struct {
	Name        string `json:"name"        validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateDeckRequest defines the payload for PATCH /api/decks/{deckID}.
// Omitted fields are left unchanged.
type UpdateDeckRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitnil,max=200"`
	Description *string `json:"description,omitempty" validate:"omitnil,max=2000"`
}

// DeckResponse is the public view of a deck.
type DeckResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	UserID       string `json:"userId"`
	CardCount    int    `json:"cardCount"`
	NextReviewAt *int64 `json:"nextReviewAt,omitempty"` // epoch millis
}

// GenerateFlashcardRequest defines the payload for
// POST /api/decks/{deckID}/flashcards/generate.
type GenerateFlashcardRequest struct {
	Type        string `json:"type"        validate:"required"`
	UserComment string `json:"userComment" validate:"max=2000"`

	// Persist stores the candidate in the deck instead of only returning it.
	Persist bool `json:"persist"`
}

// ValidateAnswerRequest defines the payload for POST /api/flashcards/validate.
type ValidateAnswerRequest struct {
	DeckID      string `json:"deckId"      validate:"required"`
	FlashcardID string `json:"flashcardId" validate:"required"`
	UserAnswer  string `json:"userAnswer"  validate:"required,max=2000"`
}

// ChatRequest defines the payload for POST /api/chat/respond.
type ChatRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

// AcceptedResponse is returned when work has been queued.
type AcceptedResponse struct {
	Status string `json:"status"`
}

func deckToResponse(deck *domain.Deck) DeckResponse {
	resp := DeckResponse{
		ID:          deck.ID,
		Name:        deck.Name,
		Description: deck.Description,
		UserID:      deck.UserID,
		CardCount:   deck.CardCount,
	}
	if deck.NextReviewAt != nil {
		next := *deck.NextReviewAt
		resp.NextReviewAt = &next
	}
	return resp
}

func decksToResponse(decks []*domain.Deck) []DeckResponse {
	resp := make([]DeckResponse, 0, len(decks))
	for _, d := range decks {
		resp = append(resp, deckToResponse(d))
	}
	return resp
}
