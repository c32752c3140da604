package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/phrazzld/deckmind/internal/platform/logger"
	"github.com/phrazzld/deckmind/internal/store"
)

// PostgresDeckStore implements the store.DeckStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDeckStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDeckStore creates a new PostgreSQL implementation of the DeckStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresDeckStore(db store.DBTX, logger *slog.Logger) *PostgresDeckStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDeckStore{
		db:     db,
		logger: logger.With(slog.String("component", "deck_store")),
	}
}

// Ensure PostgresDeckStore implements store.DeckStore interface
var _ store.DeckStore = (*PostgresDeckStore)(nil)

const deckColumns = `id, name, description, user_id, card_count, next_review_at`

func scanDeck(row interface{ Scan(dest ...any) error }) (*domain.Deck, error) {
	var (
		deck       domain.Deck
		nextReview sql.NullInt64
	)
	if err := row.Scan(
		&deck.ID,
		&deck.Name,
		&deck.Description,
		&deck.UserID,
		&deck.CardCount,
		&nextReview,
	); err != nil {
		return nil, err
	}
	if nextReview.Valid {
		ts := nextReview.Int64
		deck.NextReviewAt = &ts
	}
	return &deck, nil
}

// FindByOwner implements store.DeckStore.FindByOwner.
func (s *PostgresDeckStore) FindByOwner(ctx context.Context, userID string) ([]*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+deckColumns+` FROM decks WHERE user_id = $1 ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		log.Error("failed to query decks",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	decks := make([]*domain.Deck, 0)
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deck row: %w", err)
		}
		decks = append(decks, deck)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deck rows: %w", err)
	}

	log.Debug("decks retrieved",
		slog.String("user_id", userID),
		slog.Int("count", len(decks)))
	return decks, nil
}

// Create implements store.DeckStore.Create.
func (s *PostgresDeckStore) Create(ctx context.Context, deck *domain.Deck, ownerID string) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", store.ErrInvalidEntity)
	}
	if err := deck.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	created := *deck
	created.ID = uuid.NewString()
	created.UserID = ownerID
	if deck.NextReviewAt != nil {
		ts := *deck.NextReviewAt
		created.NextReviewAt = &ts
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO decks (user_id, id, name, description, card_count, next_review_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		created.UserID,
		created.ID,
		created.Name,
		created.Description,
		created.CardCount,
		created.NextReviewAt,
	)
	if err != nil {
		log.Error("failed to insert deck",
			slog.String("user_id", ownerID),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	log.Debug("deck created",
		slog.String("deck_id", created.ID),
		slog.String("user_id", ownerID))
	return &created, nil
}

// Find implements store.DeckStore.Find.
func (s *PostgresDeckStore) Find(ctx context.Context, deckID, ownerID string) (*domain.Deck, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+deckColumns+` FROM decks WHERE user_id = $1 AND id = $2`,
		ownerID,
		deckID,
	)
	deck, err := scanDeck(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDeckNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query deck",
			slog.String("deck_id", deckID),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return deck, nil
}

// UpdateFields implements store.DeckStore.UpdateFields.
// Unset patch fields bind as NULL and COALESCE keeps the stored value.
func (s *PostgresDeckStore) UpdateFields(ctx context.Context, deckID, ownerID string, patch store.DeckPatch) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE decks
		 SET name = COALESCE($3, name),
		     description = COALESCE($4, description),
		     next_review_at = COALESCE($5, next_review_at),
		     updated_at = NOW()
		 WHERE user_id = $1 AND id = $2`,
		ownerID,
		deckID,
		patch.Name,
		patch.Description,
		patch.NextReviewAt,
	)
	if err != nil {
		log.Error("failed to update deck",
			slog.String("deck_id", deckID),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrDeckNotFound); err != nil {
		return err
	}

	log.Debug("deck fields updated", slog.String("deck_id", deckID))
	return nil
}
