package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/phrazzld/deckmind/internal/platform/logger"
	"golang.org/x/sync/errgroup"
)

// CopyDeck implements DeckService.CopyDeck.
//
// The copy gets a fresh id, is owned by requesterID, carries cardCount = N
// and no review date. Every card is cloned under a fresh id into the new
// deck with default bookkeeping and written in one SaveAll. The source deck
// and cards are never modified. The deck and card writes are separate; when
// SaveAll fails the new deck is left without cards and is logged.
func (s *deckServiceImpl) CopyDeck(
	ctx context.Context,
	requesterID, ownerID, deckID string,
) (*domain.Deck, error) {
	const op = "copy_deck"
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("source_deck_id", deckID),
		slog.String("source_owner_id", ownerID),
		slog.String("requester_id", requesterID))

	if strings.TrimSpace(requesterID) == "" || strings.TrimSpace(ownerID) == "" || strings.TrimSpace(deckID) == "" {
		return nil, NewServiceError(op, "missing identifier", ErrMissingIdentifier)
	}
	if requesterID == ownerID {
		return nil, NewServiceError(op, "requester owns the deck", ErrSelfCopy)
	}

	var (
		source *domain.Deck
		cards  []*domain.Flashcard
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		source, err = s.decks.Find(gctx, deckID, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		cards, err = s.cards.FindAllInDeck(gctx, deckID, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, NewServiceError(op, "failed to load source deck", err)
	}

	created, err := s.decks.Create(ctx, source.CloneFor(requesterID, len(cards)), requesterID)
	if err != nil {
		return nil, NewServiceError(op, "failed to create deck copy", err)
	}

	if len(cards) > 0 {
		clones := make([]*domain.Flashcard, len(cards))
		for i, card := range cards {
			clones[i] = card.CloneInto(created.ID, requesterID)
		}
		if err := s.cards.SaveAll(ctx, clones); err != nil {
			log.Error("deck copy created without its flashcards",
				slog.String("deck_id", created.ID),
				slog.String("error", err.Error()))
			return nil, NewServiceError(op, "failed to copy flashcards", err)
		}
	}

	log.Info("deck copied",
		slog.String("deck_id", created.ID),
		slog.Int("card_count", len(cards)))
	return created, nil
}
