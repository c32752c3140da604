package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/phrazzld/deckmind/internal/platform/logger"
	"github.com/phrazzld/deckmind/internal/store"
)

// DeckUpdate holds the client-editable deck fields. Nil fields are left
// unchanged.
type DeckUpdate struct {
	Name        *string
	Description *string
}

// DeckService manages a user's decks.
type DeckService interface {
	// ListDecks returns every deck owned by userID.
	ListDecks(ctx context.Context, userID string) ([]*domain.Deck, error)

	// CreateDeck creates an empty deck owned by userID.
	CreateDeck(ctx context.Context, userID, name, description string) (*domain.Deck, error)

	// GetDeck returns a deck owned by userID.
	GetDeck(ctx context.Context, userID, deckID string) (*domain.Deck, error)

	// UpdateDeck changes the name or description of an owned deck and returns
	// the updated deck.
	UpdateDeck(ctx context.Context, userID, deckID string, update DeckUpdate) (*domain.Deck, error)

	// CopyDeck copies ownerID's deck and all its flashcards to requesterID.
	CopyDeck(ctx context.Context, requesterID, ownerID, deckID string) (*domain.Deck, error)
}

type deckServiceImpl struct {
	decks  store.DeckStore
	cards  store.FlashcardStore
	logger *slog.Logger
}

var _ DeckService = (*deckServiceImpl)(nil)

// NewDeckService creates a DeckService.
// It returns an error if any of the required dependencies are nil.
func NewDeckService(
	decks store.DeckStore,
	cards store.FlashcardStore,
	logger *slog.Logger,
) (DeckService, error) {
	if decks == nil {
		return nil, domain.NewValidationError("decks", "cannot be nil", domain.ErrValidation)
	}
	if cards == nil {
		return nil, domain.NewValidationError("cards", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &deckServiceImpl{
		decks:  decks,
		cards:  cards,
		logger: logger.With(slog.String("component", "deck_service")),
	}, nil
}

// ListDecks implements DeckService.ListDecks.
func (s *deckServiceImpl) ListDecks(ctx context.Context, userID string) ([]*domain.Deck, error) {
	decks, err := s.decks.FindByOwner(ctx, userID)
	if err != nil {
		return nil, NewServiceError("list_decks", "failed to list decks", err)
	}
	return decks, nil
}

// CreateDeck implements DeckService.CreateDeck. cardCount starts at zero and
// the deck is unscheduled.
func (s *deckServiceImpl) CreateDeck(ctx context.Context, userID, name, description string) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deck := &domain.Deck{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	}
	if err := deck.Validate(); err != nil {
		return nil, NewServiceError("create_deck", "invalid deck", err)
	}

	created, err := s.decks.Create(ctx, deck, userID)
	if err != nil {
		return nil, NewServiceError("create_deck", "failed to create deck", err)
	}

	log.Info("deck created",
		slog.String("deck_id", created.ID),
		slog.String("user_id", userID))
	return created, nil
}

// GetDeck implements DeckService.GetDeck.
func (s *deckServiceImpl) GetDeck(ctx context.Context, userID, deckID string) (*domain.Deck, error) {
	deck, err := s.decks.Find(ctx, deckID, userID)
	if err != nil {
		return nil, NewServiceError("get_deck", "failed to get deck", err)
	}
	return deck, nil
}

// UpdateDeck implements DeckService.UpdateDeck.
func (s *deckServiceImpl) UpdateDeck(
	ctx context.Context,
	userID, deckID string,
	update DeckUpdate,
) (*domain.Deck, error) {
	patch := store.DeckPatch{Description: update.Description}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, NewServiceError("update_deck", "invalid deck",
				domain.NewValidationError("name", "cannot be empty", domain.ErrValidation))
		}
		patch.Name = &name
	}
	if patch.IsEmpty() {
		return nil, NewServiceError("update_deck", "invalid deck",
			domain.NewValidationError("", "no fields to update", domain.ErrValidation))
	}

	if err := s.decks.UpdateFields(ctx, deckID, userID, patch); err != nil {
		return nil, NewServiceError("update_deck", "failed to update deck", err)
	}

	deck, err := s.decks.Find(ctx, deckID, userID)
	if err != nil {
		return nil, NewServiceError("update_deck", "failed to reload deck", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("deck updated",
		slog.String("deck_id", deckID),
		slog.String("user_id", userID))
	return deck, nil
}
