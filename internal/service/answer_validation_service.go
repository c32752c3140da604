package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/phrazzld/deckmind/internal/generation"
	"github.com/phrazzld/deckmind/internal/platform/logger"
	"github.com/phrazzld/deckmind/internal/store"
)

// AnswerValidationService grades free-text answers to TypedAnswer cards.
type AnswerValidationService interface {
	// ValidateAnswer grades userAnswer against the card's accepted answers.
	// The verdict is never persisted.
	ValidateAnswer(
		ctx context.Context,
		userID, deckID, flashcardID, userAnswer string,
	) (*domain.ValidationVerdict, error)
}

type answerValidationServiceImpl struct {
	decks   store.DeckStore
	cards   store.FlashcardStore
	gateway generation.Gateway
	logger  *slog.Logger
}

var _ AnswerValidationService = (*answerValidationServiceImpl)(nil)

// NewAnswerValidationService creates an AnswerValidationService.
// It returns an error if any of the required dependencies are nil.
func NewAnswerValidationService(
	decks store.DeckStore,
	cards store.FlashcardStore,
	gateway generation.Gateway,
	logger *slog.Logger,
) (AnswerValidationService, error) {
	if decks == nil {
		return nil, domain.NewValidationError("decks", "cannot be nil", domain.ErrValidation)
	}
	if cards == nil {
		return nil, domain.NewValidationError("cards", "cannot be nil", domain.ErrValidation)
	}
	if gateway == nil {
		return nil, domain.NewValidationError("gateway", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &answerValidationServiceImpl{
		decks:   decks,
		cards:   cards,
		gateway: gateway,
		logger:  logger.With(slog.String("component", "answer_validation_service")),
	}, nil
}

// ValidateAnswer implements AnswerValidationService.ValidateAnswer.
//
// The deck is resolved under userID before the card is read, so a card in
// someone else's deck is reported as not found. Any gateway or decoding
// failure is reported as domain.ErrExternalService wrapping the cause.
func (s *answerValidationServiceImpl) ValidateAnswer(
	ctx context.Context,
	userID, deckID, flashcardID, userAnswer string,
) (*domain.ValidationVerdict, error) {
	const op = "validate_answer"
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("deck_id", deckID),
		slog.String("flashcard_id", flashcardID))

	if strings.TrimSpace(deckID) == "" || strings.TrimSpace(flashcardID) == "" {
		return nil, NewServiceError(op, "missing identifier", ErrMissingIdentifier)
	}
	if strings.TrimSpace(userAnswer) == "" {
		return nil, NewServiceError(op, "invalid answer",
			domain.NewValidationError("userAnswer", "cannot be empty", domain.ErrValidation))
	}

	if _, err := s.decks.Find(ctx, deckID, userID); err != nil {
		return nil, NewServiceError(op, "failed to get deck", err)
	}
	card, err := s.cards.Find(ctx, deckID, flashcardID)
	if err != nil {
		return nil, NewServiceError(op, "failed to get flashcard", err)
	}

	typed, ok := card.Content.(*domain.TypedAnswer)
	if !ok {
		return nil, NewServiceError(op, "flashcard cannot be graded",
			fmt.Errorf("%w: %s", domain.ErrUnsupportedForCardType, card.Type()))
	}

	prompt, err := generation.GradingPrompt(typed.Question, typed.ValidAnswers, userAnswer)
	if err != nil {
		return nil, NewServiceError(op, "failed to build prompt", err)
	}

	raw, err := s.gateway.Send(ctx, prompt)
	if err != nil {
		return nil, NewServiceError(op, "generative service call failed",
			fmt.Errorf("%w: grading: %w", domain.ErrExternalService, err))
	}

	verdict, err := generation.DecodeVerdict(raw)
	if err != nil {
		logMalformed(log, "grading verdict rejected", err)
		return nil, NewServiceError(op, "grading verdict is malformed",
			fmt.Errorf("%w: grading: %w", domain.ErrExternalService, err))
	}

	log.Info("answer graded",
		slog.Bool("is_correct", verdict.IsCorrect),
		slog.Int("score", verdict.Score))
	return verdict, nil
}
