package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/phrazzld/deckmind/internal/generation"
	"github.com/phrazzld/deckmind/internal/platform/logger"
	"github.com/phrazzld/deckmind/internal/redact"
	"github.com/phrazzld/deckmind/internal/store"
)

// maxLoggedPayload bounds how much of a malformed model reply is logged.
const maxLoggedPayload = 2000

// FlashcardService manages flashcards inside a user's decks.
type FlashcardService interface {
	// ListFlashcards returns the cards of an owned deck. A deck that is
	// absent or owned by someone else yields an empty list.
	ListFlashcards(ctx context.Context, userID, deckID string) ([]*domain.Flashcard, error)

	// GetFlashcard returns one card of an owned deck.
	GetFlashcard(ctx context.Context, userID, deckID, flashcardID string) (*domain.Flashcard, error)

	// CreateFlashcard stores card in an owned deck under a fresh id.
	CreateFlashcard(ctx context.Context, userID, deckID string, card *domain.Flashcard) (*domain.Flashcard, error)

	// GenerateFlashcard asks the generative service for one new card of
	// requestedType. The candidate is not persisted.
	GenerateFlashcard(
		ctx context.Context,
		userID, deckID, requestedType, userComment string,
	) (*domain.Flashcard, error)
}

type flashcardServiceImpl struct {
	decks   store.DeckStore
	cards   store.FlashcardStore
	gateway generation.Gateway
	logger  *slog.Logger
}

var _ FlashcardService = (*flashcardServiceImpl)(nil)

// NewFlashcardService creates a FlashcardService.
// It returns an error if any of the required dependencies are nil.
func NewFlashcardService(
	decks store.DeckStore,
	cards store.FlashcardStore,
	gateway generation.Gateway,
	logger *slog.Logger,
) (FlashcardService, error) {
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

	return &flashcardServiceImpl{
		decks:   decks,
		cards:   cards,
		gateway: gateway,
		logger:  logger.With(slog.String("component", "flashcard_service")),
	}, nil
}

// ListFlashcards implements FlashcardService.ListFlashcards.
func (s *flashcardServiceImpl) ListFlashcards(ctx context.Context, userID, deckID string) ([]*domain.Flashcard, error) {
	cards, err := s.cards.FindAllInDeck(ctx, deckID, userID)
	if err != nil {
		return nil, NewServiceError("list_flashcards", "failed to list flashcards", err)
	}
	return cards, nil
}

// GetFlashcard implements FlashcardService.GetFlashcard. Deck ownership is
// checked before the card is read.
func (s *flashcardServiceImpl) GetFlashcard(
	ctx context.Context,
	userID, deckID, flashcardID string,
) (*domain.Flashcard, error) {
	if _, err := s.decks.Find(ctx, deckID, userID); err != nil {
		return nil, NewServiceError("get_flashcard", "failed to get deck", err)
	}
	card, err := s.cards.Find(ctx, deckID, flashcardID)
	if err != nil {
		return nil, NewServiceError("get_flashcard", "failed to get flashcard", err)
	}
	return card, nil
}

// CreateFlashcard implements FlashcardService.CreateFlashcard. The store
// increments the deck's cardCount in the same write.
func (s *flashcardServiceImpl) CreateFlashcard(
	ctx context.Context,
	userID, deckID string,
	card *domain.Flashcard,
) (*domain.Flashcard, error) {
	if card == nil || card.Content == nil {
		return nil, NewServiceError("create_flashcard", "invalid flashcard",
			domain.NewValidationError("type", "is required", domain.ErrValidation))
	}
	if err := card.Content.Validate(); err != nil {
		return nil, NewServiceError("create_flashcard", "invalid flashcard", err)
	}

	candidate := card.Clone()
	candidate.ReviewState = domain.DefaultReviewState()

	created, err := s.cards.Create(ctx, deckID, userID, candidate)
	if err != nil {
		return nil, NewServiceError("create_flashcard", "failed to create flashcard", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("flashcard created",
		slog.String("flashcard_id", created.ID),
		slog.String("deck_id", deckID),
		slog.String("card_type", string(created.Type())))
	return created, nil
}

// GenerateFlashcard implements FlashcardService.GenerateFlashcard.
//
// The requested type is checked before any store or network call. The
// prompt quotes at most five existing cards of the deck. The reply must be a
// complete card of the requested type; anything else fails with
// generation.ErrMalformedPayload and the raw reply is logged.
func (s *flashcardServiceImpl) GenerateFlashcard(
	ctx context.Context,
	userID, deckID, requestedType, userComment string,
) (*domain.Flashcard, error) {
	const op = "generate_flashcard"
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("deck_id", deckID),
		slog.String("user_id", userID))

	cardType, err := domain.ParseCardType(requestedType)
	if err != nil {
		return nil, NewServiceError(op, "unsupported flashcard type", err)
	}

	deck, err := s.decks.Find(ctx, deckID, userID)
	if err != nil {
		return nil, NewServiceError(op, "failed to get deck", err)
	}
	existing, err := s.cards.FindAllInDeck(ctx, deckID, userID)
	if err != nil {
		return nil, NewServiceError(op, "failed to list existing flashcards", err)
	}

	prompt, err := generation.FlashcardPrompt(deck, existing, cardType, userComment)
	if err != nil {
		return nil, NewServiceError(op, "failed to build prompt", err)
	}

	log.Info("requesting flashcard generation",
		slog.String("card_type", string(cardType)),
		slog.Int("existing_cards", len(existing)),
		slog.Bool("has_comment", strings.TrimSpace(userComment) != ""))

	raw, err := s.gateway.Send(ctx, prompt)
	if err != nil {
		return nil, NewServiceError(op, "generative service call failed", err)
	}

	card, err := generation.DecodeFlashcard(raw, cardType)
	if err != nil {
		logMalformed(log, "generated flashcard rejected", err)
		return nil, NewServiceError(op, "generated flashcard is malformed", err)
	}

	card.ID = uuid.NewString()
	card.DeckID = deckID
	card.UserID = userID
	card.ReviewState = domain.DefaultReviewState()

	log.Info("flashcard generated",
		slog.String("flashcard_id", card.ID),
		slog.String("card_type", string(cardType)))
	return card, nil
}

// logMalformed logs a decoding failure together with the offending reply.
func logMalformed(log *slog.Logger, msg string, err error) {
	attrs := []any{slog.String("error", redact.Error(err))}
	var payloadErr *generation.PayloadError
	if errors.As(err, &payloadErr) {
		raw := payloadErr.Raw
		if len(raw) > maxLoggedPayload {
			raw = raw[:maxLoggedPayload]
		}
		attrs = append(attrs, slog.String("raw_payload", redact.String(raw)))
	}
	log.Error(msg, attrs...)
}
