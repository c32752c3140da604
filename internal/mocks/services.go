package mocks

import (
	"context"

	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/phrazzld/deckmind/internal/service"
)

// MockDeckService implements service.DeckService.
type MockDeckService struct {
	ListDecksFn  func(ctx context.Context, userID string) ([]*domain.Deck, error)
	CreateDeckFn func(ctx context.Context, userID, name, description string) (*domain.Deck, error)
	GetDeckFn    func(ctx context.Context, userID, deckID string) (*domain.Deck, error)
	UpdateDeckFn func(ctx context.Context, userID, deckID string, update service.DeckUpdate) (*domain.Deck, error)
	CopyDeckFn   func(ctx context.Context, requesterID, ownerID, deckID string) (*domain.Deck, error)
}

var _ service.DeckService = (*MockDeckService)(nil)

// ListDecks implements service.DeckService.
func (m *MockDeckService) ListDecks(ctx context.Context, userID string) ([]*domain.Deck, error) {
	if m.ListDecksFn != nil {
		return m.ListDecksFn(ctx, userID)
	}
	return []*domain.Deck{}, nil
}

// CreateDeck implements service.DeckService.
func (m *MockDeckService) CreateDeck(ctx context.Context, userID, name, description string) (*domain.Deck, error) {
	if m.CreateDeckFn != nil {
		return m.CreateDeckFn(ctx, userID, name, description)
	}
	return &domain.Deck{ID: "deck-1", Name: name, Description: description, UserID: userID}, nil
}

// GetDeck implements service.DeckService.
func (m *MockDeckService) GetDeck(ctx context.Context, userID, deckID string) (*domain.Deck, error) {
	if m.GetDeckFn != nil {
		return m.GetDeckFn(ctx, userID, deckID)
	}
	return &domain.Deck{ID: deckID, Name: "deck", UserID: userID}, nil
}

// UpdateDeck implements service.DeckService.
func (m *MockDeckService) UpdateDeck(
	ctx context.Context,
	userID, deckID string,
	update service.DeckUpdate,
) (*domain.Deck, error) {
	if m.UpdateDeckFn != nil {
		return m.UpdateDeckFn(ctx, userID, deckID, update)
	}
	return &domain.Deck{ID: deckID, Name: "deck", UserID: userID}, nil
}

// CopyDeck implements service.DeckService.
func (m *MockDeckService) CopyDeck(ctx context.Context, requesterID, ownerID, deckID string) (*domain.Deck, error) {
	if m.CopyDeckFn != nil {
		return m.CopyDeckFn(ctx, requesterID, ownerID, deckID)
	}
	return &domain.Deck{ID: "copy-1", Name: "deck", UserID: requesterID}, nil
}

// MockFlashcardService implements service.FlashcardService.
type MockFlashcardService struct {
	ListFlashcardsFn  func(ctx context.Context, userID, deckID string) ([]*domain.Flashcard, error)
	GetFlashcardFn    func(ctx context.Context, userID, deckID, flashcardID string) (*domain.Flashcard, error)
	CreateFlashcardFn func(ctx context.Context, userID, deckID string, card *domain.Flashcard) (*domain.Flashcard, error)
	GenerateFn        func(ctx context.Context, userID, deckID, requestedType, userComment string) (*domain.Flashcard, error)
}

var _ service.FlashcardService = (*MockFlashcardService)(nil)

// ListFlashcards implements service.FlashcardService.
func (m *MockFlashcardService) ListFlashcards(ctx context.Context, userID, deckID string) ([]*domain.Flashcard, error) {
	if m.ListFlashcardsFn != nil {
		return m.ListFlashcardsFn(ctx, userID, deckID)
	}
	return []*domain.Flashcard{}, nil
}

// GetFlashcard implements service.FlashcardService.
func (m *MockFlashcardService) GetFlashcard(
	ctx context.Context,
	userID, deckID, flashcardID string,
) (*domain.Flashcard, error) {
	if m.GetFlashcardFn != nil {
		return m.GetFlashcardFn(ctx, userID, deckID, flashcardID)
	}
	return nil, domain.ErrNotFound
}

// CreateFlashcard implements service.FlashcardService.
func (m *MockFlashcardService) CreateFlashcard(
	ctx context.Context,
	userID, deckID string,
	card *domain.Flashcard,
) (*domain.Flashcard, error) {
	if m.CreateFlashcardFn != nil {
		return m.CreateFlashcardFn(ctx, userID, deckID, card)
	}
	return card, nil
}

// GenerateFlashcard implements service.FlashcardService.
func (m *MockFlashcardService) GenerateFlashcard(
	ctx context.Context,
	userID, deckID, requestedType, userComment string,
) (*domain.Flashcard, error) {
	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, userID, deckID, requestedType, userComment)
	}
	return nil, domain.ErrExternalService
}

// MockAnswerValidationService implements service.AnswerValidationService.
type MockAnswerValidationService struct {
	ValidateAnswerFn func(ctx context.Context, userID, deckID, flashcardID, userAnswer string) (*domain.ValidationVerdict, error)
}

var _ service.AnswerValidationService = (*MockAnswerValidationService)(nil)

// ValidateAnswer implements service.AnswerValidationService.
func (m *MockAnswerValidationService) ValidateAnswer(
	ctx context.Context,
	userID, deckID, flashcardID, userAnswer string,
) (*domain.ValidationVerdict, error) {
	if m.ValidateAnswerFn != nil {
		return m.ValidateAnswerFn(ctx, userID, deckID, flashcardID, userAnswer)
	}
	return &domain.ValidationVerdict{IsCorrect: true, Score: 100}, nil
}

// MockReviewScheduler implements service.ReviewScheduler.
type MockReviewScheduler struct {
	RequestScheduleFn func(ctx context.Context, userID, deckID string) error
	ScheduleFn        func(ctx context.Context, userID, deckID string) error
}

var _ service.ReviewScheduler = (*MockReviewScheduler)(nil)

// RequestSchedule implements service.ReviewScheduler.
func (m *MockReviewScheduler) RequestSchedule(ctx context.Context, userID, deckID string) error {
	if m.RequestScheduleFn != nil {
		return m.RequestScheduleFn(ctx, userID, deckID)
	}
	return nil
}

// Schedule implements service.ReviewScheduler.
func (m *MockReviewScheduler) Schedule(ctx context.Context, userID, deckID string) error {
	if m.ScheduleFn != nil {
		return m.ScheduleFn(ctx, userID, deckID)
	}
	return nil
}

// MockChatService implements service.ChatService.
type MockChatService struct {
	SubmitFn  func(ctx context.Context, userID, text string) error
	RespondFn func(ctx context.Context, userID string, msg *domain.ChatMessage) (*domain.ChatMessage, error)
	HistoryFn func(ctx context.Context, userID string, limit int) ([]*domain.ChatMessage, error)
}

var _ service.ChatService = (*MockChatService)(nil)

// Submit implements service.ChatService.
func (m *MockChatService) Submit(ctx context.Context, userID, text string) error {
	if m.SubmitFn != nil {
		return m.SubmitFn(ctx, userID, text)
	}
	return nil
}

// Respond implements service.ChatService.
func (m *MockChatService) Respond(
	ctx context.Context,
	userID string,
	msg *domain.ChatMessage,
) (*domain.ChatMessage, error) {
	if m.RespondFn != nil {
		return m.RespondFn(ctx, userID, msg)
	}
	return &domain.ChatMessage{Sender: domain.SenderLLM, Text: "ok"}, nil
}

// History implements service.ChatService.
func (m *MockChatService) History(ctx context.Context, userID string, limit int) ([]*domain.ChatMessage, error) {
	if m.HistoryFn != nil {
		return m.HistoryFn(ctx, userID, limit)
	}
	return []*domain.ChatMessage{}, nil
}
