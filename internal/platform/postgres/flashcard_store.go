package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/phrazzld/deckmind/internal/platform/logger"
	"github.com/phrazzld/deckmind/internal/store"
)

// PostgresFlashcardStore implements the store.FlashcardStore interface.
// Each card is one row keyed by (deck_id, id) whose document column holds
// the discriminated JSON encoding.
type PostgresFlashcardStore struct {
	db        store.DBTX
	logger    *slog.Logger
	batchSize int
}

const (
	flashcardColumns = 5

	// defaultSaveAllBatchSize keeps one upsert well below the 65535 bind
	// parameters Postgres accepts per statement.
	defaultSaveAllBatchSize = 1000
)

// NewPostgresFlashcardStore creates a new PostgreSQL implementation of the FlashcardStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresFlashcardStore(db store.DBTX, logger *slog.Logger) *PostgresFlashcardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresFlashcardStore{
		db:        db,
		logger:    logger.With(slog.String("component", "flashcard_store")),
		batchSize: defaultSaveAllBatchSize,
	}
}

// Ensure PostgresFlashcardStore implements store.FlashcardStore interface
var _ store.FlashcardStore = (*PostgresFlashcardStore)(nil)

// decodeFlashcard rebuilds a card from its row. Identity columns win over
// whatever the document carries.
func decodeFlashcard(id, deckID, userID string, document []byte) (*domain.Flashcard, error) {
	var card domain.Flashcard
	if err := json.Unmarshal(document, &card); err != nil {
		return nil, fmt.Errorf("failed to decode flashcard %s: %w", id, err)
	}
	card.ID = id
	card.DeckID = deckID
	card.UserID = userID
	return &card, nil
}

// Find implements store.FlashcardStore.Find.
func (s *PostgresFlashcardStore) Find(ctx context.Context, deckID, flashcardID string) (*domain.Flashcard, error) {
	var (
		id, cardDeckID, userID string
		document               []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, deck_id, user_id, document FROM flashcards WHERE deck_id = $1 AND id = $2`,
		deckID,
		flashcardID,
	).Scan(&id, &cardDeckID, &userID, &document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrFlashcardNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query flashcard",
			slog.String("deck_id", deckID),
			slog.String("flashcard_id", flashcardID),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return decodeFlashcard(id, cardDeckID, userID, document)
}

// FindAllInDeck implements store.FlashcardStore.FindAllInDeck.
func (s *PostgresFlashcardStore) FindAllInDeck(ctx context.Context, deckID, ownerID string) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var owned bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM decks WHERE user_id = $1 AND id = $2)`,
		ownerID,
		deckID,
	).Scan(&owned); err != nil {
		log.Error("failed to verify deck ownership",
			slog.String("deck_id", deckID),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	if !owned {
		log.Warn("flashcard listing denied: deck absent or not owned",
			slog.String("deck_id", deckID),
			slog.String("user_id", ownerID))
		return []*domain.Flashcard{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, deck_id, user_id, document FROM flashcards WHERE deck_id = $1 ORDER BY created_at, id`,
		deckID,
	)
	if err != nil {
		log.Error("failed to query flashcards",
			slog.String("deck_id", deckID),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	cards := make([]*domain.Flashcard, 0)
	for rows.Next() {
		var (
			id, cardDeckID, userID string
			document               []byte
		)
		if err := rows.Scan(&id, &cardDeckID, &userID, &document); err != nil {
			return nil, fmt.Errorf("failed to scan flashcard row: %w", err)
		}
		card, err := decodeFlashcard(id, cardDeckID, userID, document)
		if err != nil {
			log.Error("stored flashcard could not be decoded",
				slog.String("deck_id", deckID),
				slog.String("flashcard_id", id),
				slog.String("error", err.Error()))
			return nil, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating flashcard rows: %w", err)
	}
	return cards, nil
}

// Create implements store.FlashcardStore.Create. The deck's card_count is
// incremented in the same transaction as the insert.
func (s *PostgresFlashcardStore) Create(
	ctx context.Context,
	deckID, ownerID string,
	card *domain.Flashcard,
) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	created := card.Clone()
	created.ID = uuid.NewString()
	created.DeckID = deckID
	created.UserID = ownerID
	created.ReviewState = domain.DefaultReviewState()
	if err := created.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	document, err := json.Marshal(created)
	if err != nil {
		return nil, fmt.Errorf("failed to encode flashcard: %w", err)
	}

	err = withTx(ctx, s.db, func(q store.DBTX) error {
		result, err := q.ExecContext(ctx,
			`UPDATE decks SET card_count = card_count + 1, updated_at = NOW() WHERE user_id = $1 AND id = $2`,
			ownerID,
			deckID,
		)
		if err != nil {
			return MapError(err)
		}
		if err := CheckRowsAffected(result, store.ErrDeckNotFound); err != nil {
			return err
		}

		_, err = q.ExecContext(ctx,
			`INSERT INTO flashcards (deck_id, id, user_id, card_type, document) VALUES ($1, $2, $3, $4, $5)`,
			created.DeckID,
			created.ID,
			created.UserID,
			string(created.Type()),
			document,
		)
		return MapError(err)
	})
	if err != nil {
		if !errors.Is(err, store.ErrDeckNotFound) {
			log.Error("failed to create flashcard",
				slog.String("deck_id", deckID),
				slog.String("error", err.Error()))
		}
		return nil, err
	}

	log.Debug("flashcard created",
		slog.String("deck_id", deckID),
		slog.String("flashcard_id", created.ID),
		slog.String("type", string(created.Type())))
	return created, nil
}

// SaveAll implements store.FlashcardStore.SaveAll. Cards are upserted in
// multi-row statements of at most batchSize rows, all inside one transaction.
func (s *PostgresFlashcardStore) SaveAll(ctx context.Context, cards []*domain.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows := make([][]any, len(cards))
	for i, card := range cards {
		if card.ID == "" {
			return fmt.Errorf("%w: flashcard at index %d has no id", store.ErrInvalidEntity, i)
		}
		if err := card.Validate(); err != nil {
			return fmt.Errorf("%w: flashcard %s: %w", store.ErrInvalidEntity, card.ID, err)
		}
		document, err := json.Marshal(card)
		if err != nil {
			return fmt.Errorf("failed to encode flashcard %s: %w", card.ID, err)
		}
		rows[i] = []any{card.DeckID, card.ID, card.UserID, string(card.Type()), document}
	}

	err := withTx(ctx, s.db, func(q store.DBTX) error {
		for start := 0; start < len(rows); start += s.batchSize {
			query, args := upsertFlashcardsQuery(rows[start:min(start+s.batchSize, len(rows))])
			if _, err := q.ExecContext(ctx, query, args...); err != nil {
				return MapError(err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to save flashcards",
			slog.Int("count", len(cards)),
			slog.String("error", err.Error()))
		return err
	}

	log.Debug("flashcards saved", slog.Int("count", len(cards)))
	return nil
}

// upsertFlashcardsQuery builds one multi-row upsert over rows of
// (deck_id, id, user_id, card_type, document).
func upsertFlashcardsQuery(rows [][]any) (string, []any) {
	var (
		sb   strings.Builder
		args = make([]any, 0, len(rows)*flashcardColumns)
	)
	sb.WriteString(`INSERT INTO flashcards (deck_id, id, user_id, card_type, document) VALUES `)
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := len(args)
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5)
		args = append(args, row...)
	}
	sb.WriteString(` ON CONFLICT (deck_id, id) DO UPDATE SET
		user_id = EXCLUDED.user_id,
		card_type = EXCLUDED.card_type,
		document = EXCLUDED.document,
		updated_at = NOW()`)
	return sb.String(), args
}
