package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/phrazzld/deckmind/internal/platform/logger"
	"github.com/phrazzld/deckmind/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cardCols = []string{"id", "deck_id", "user_id", "document"}

func frontBackDoc(t *testing.T, id, front string) []byte {
	t.Helper()
	doc, err := json.Marshal(&domain.Flashcard{
		ID: id, DeckID: "d1", UserID: "u1",
		ReviewState: domain.DefaultReviewState(),
		Content:     &domain.FrontBack{Front: front, Back: "back"},
	})
	require.NoError(t, err)
	return doc
}

func TestPostgresFlashcardStore_Find(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresFlashcardStore(db, quietLogger())

	mock.ExpectQuery(`SELECT id, deck_id, user_id, document FROM flashcards WHERE deck_id = \$1 AND id = \$2`).
		WithArgs("d1", "c1").
		WillReturnRows(sqlmock.NewRows(cardCols).AddRow("c1", "d1", "u1", frontBackDoc(t, "c1", "Q")))

	card, err := s.Find(context.Background(), "d1", "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.CardTypeFrontBack, card.Type())
	assert.Equal(t, "Q", card.Content.(*domain.FrontBack).Front)
	assert.Equal(t, "u1", card.UserID)
}

func TestPostgresFlashcardStore_Find_NotFound(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresFlashcardStore(db, quietLogger())

	mock.ExpectQuery(`FROM flashcards`).WithArgs("d1", "nope").WillReturnRows(sqlmock.NewRows(cardCols))

	_, err := s.Find(context.Background(), "d1", "nope")
	assert.ErrorIs(t, err, store.ErrFlashcardNotFound)
}

func TestPostgresFlashcardStore_Find_CorruptDocument(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresFlashcardStore(db, quietLogger())

	mock.ExpectQuery(`FROM flashcards`).
		WillReturnRows(sqlmock.NewRows(cardCols).AddRow("c1", "d1", "u1", []byte(`{"type":"BOGUS"}`)))

	_, err := s.Find(context.Background(), "d1", "c1")
	assert.ErrorIs(t, err, domain.ErrUnknownCardType)
}

func TestPostgresFlashcardStore_FindAllInDeck(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresFlashcardStore(db, quietLogger())

	mock.ExpectQuery(`SELECT EXISTS`).WithArgs("u1", "d1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`FROM flashcards WHERE deck_id = \$1 ORDER BY`).WithArgs("d1").
		WillReturnRows(sqlmock.NewRows(cardCols).
			AddRow("c1", "d1", "u1", frontBackDoc(t, "c1", "first")).
			AddRow("c2", "d1", "u1", frontBackDoc(t, "c2", "second")))

	cards, err := s.FindAllInDeck(context.Background(), "d1", "u1")
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "c2", cards[1].ID)
}

func TestPostgresFlashcardStore_FindAllInDeck_NotOwnedIsEmpty(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresFlashcardStore(db, quietLogger())
	ctx, logs := logger.NewTestContext(t)

	mock.ExpectQuery(`SELECT EXISTS`).WithArgs("intruder", "d1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	cards, err := s.FindAllInDeck(ctx, "d1", "intruder")
	require.NoError(t, err)
	assert.NotNil(t, cards)
	assert.Empty(t, cards)
	assert.Contains(t, logs.String(), "flashcard listing denied")
}

func TestPostgresFlashcardStore_Create(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresFlashcardStore(db, quietLogger())

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE decks SET card_count = card_count \+ 1`).
		WithArgs("u1", "d1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO flashcards`).
		WithArgs("d1", sqlmock.AnyArg(), "u1", "TYPED_ANSWER", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	input := &domain.Flashcard{
		ID: "ignored", DeckID: "other", UserID: "other",
		ReviewState: domain.DefaultReviewState(),
		Content:     &domain.TypedAnswer{Question: "2+2?", ValidAnswers: []string{"4"}},
	}
	created, err := s.Create(context.Background(), "d1", "u1", input)
	require.NoError(t, err)
	assert.NotEqual(t, "ignored", created.ID)
	assert.Equal(t, "d1", created.DeckID)
	assert.Equal(t, "u1", created.UserID)
	assert.Equal(t, "other", input.DeckID)
}

// defaultBookkeeping matches an encoded flashcard document whose review
// state equals the defaults.
type defaultBookkeeping struct{}

func (defaultBookkeeping) Match(v driver.Value) bool {
	raw, ok := v.([]byte)
	if !ok {
		return false
	}
	var card domain.Flashcard
	if err := json.Unmarshal(raw, &card); err != nil {
		return false
	}
	return card.ReviewState == domain.DefaultReviewState() && card.NextReviewAt == nil
}

func TestPostgresFlashcardStore_Create_ResetsBookkeeping(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresFlashcardStore(db, quietLogger())

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE decks SET card_count = card_count \+ 1`).
		WithArgs("u1", "d1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO flashcards`).
		WithArgs("d1", sqlmock.AnyArg(), "u1", "FRONT_BACK", defaultBookkeeping{}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	next := int64(1767225600000)
	input := &domain.Flashcard{
		ReviewState: domain.ReviewState{EasinessFactor: 1.3, Repetitions: 4, IntervalDays: 12, NextReviewAt: &next},
		Content:     &domain.FrontBack{Front: "f", Back: "b"},
	}
	created, err := s.Create(context.Background(), "d1", "u1", input)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultReviewState(), created.ReviewState)
	assert.Equal(t, 4, input.Repetitions)
}

func TestPostgresFlashcardStore_Create_DeckNotOwned(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresFlashcardStore(db, quietLogger())

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE decks SET card_count`).
		WithArgs("intruder", "d1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	card := &domain.Flashcard{Content: &domain.FrontBack{Front: "f", Back: "b"}}
	_, err := s.Create(context.Background(), "d1", "intruder", card)
	assert.ErrorIs(t, err, store.ErrDeckNotFound)
}

func TestPostgresFlashcardStore_SaveAll(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresFlashcardStore(db, quietLogger())

	cards := []*domain.Flashcard{
		{ID: "c1", DeckID: "d2", UserID: "u2", ReviewState: domain.DefaultReviewState(),
			Content: &domain.FrontBack{Front: "f", Back: "b"}},
		{ID: "c2", DeckID: "d2", UserID: "u2", ReviewState: domain.DefaultReviewState(),
			Content: &domain.Cloze{TextWithGaps: "{{c1}}", GapAnswers: map[string]string{"c1": "x"}}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO flashcards .* VALUES \(\$1, \$2, \$3, \$4, \$5\), \(\$6, \$7, \$8, \$9, \$10\) ON CONFLICT \(deck_id, id\) DO UPDATE`).
		WithArgs("d2", "c1", "u2", "FRONT_BACK", sqlmock.AnyArg(), "d2", "c2", "u2", "CLOZE", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	assert.NoError(t, s.SaveAll(context.Background(), cards))
}

func sequentialCards(n int) []*domain.Flashcard {
	cards := make([]*domain.Flashcard, n)
	for i := range cards {
		cards[i] = &domain.Flashcard{
			ID: fmt.Sprintf("c%d", i+1), DeckID: "d2", UserID: "u2",
			ReviewState: domain.DefaultReviewState(),
			Content:     &domain.FrontBack{Front: fmt.Sprintf("q%d", i+1), Back: "b"},
		}
	}
	return cards
}

func TestPostgresFlashcardStore_SaveAll_Batches(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresFlashcardStore(db, quietLogger())
	s.batchSize = 2

	mock.ExpectBegin()
	mock.ExpectExec(`VALUES \(\$1, \$2, \$3, \$4, \$5\), \(\$6, \$7, \$8, \$9, \$10\) ON CONFLICT`).
		WithArgs("d2", "c1", "u2", "FRONT_BACK", sqlmock.AnyArg(), "d2", "c2", "u2", "FRONT_BACK", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`VALUES \(\$1, \$2, \$3, \$4, \$5\) ON CONFLICT`).
		WithArgs("d2", "c3", "u2", "FRONT_BACK", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, s.SaveAll(context.Background(), sequentialCards(3)))
}

func TestPostgresFlashcardStore_SaveAll_FailedBatchRollsBackAll(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresFlashcardStore(db, quietLogger())
	s.batchSize = 2

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO flashcards`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO flashcards`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	assert.Error(t, s.SaveAll(context.Background(), sequentialCards(4)))
}

func TestPostgresFlashcardStore_SaveAll_DefaultBatchStaysUnderBindLimit(t *testing.T) {
	s := NewPostgresFlashcardStore(&sql.DB{}, quietLogger())

	rows := make([][]any, s.batchSize)
	for i := range rows {
		rows[i] = make([]any, flashcardColumns)
	}
	query, args := upsertFlashcardsQuery(rows)
	assert.LessOrEqual(t, len(args), 65535)
	assert.Contains(t, query, fmt.Sprintf("$%d)", s.batchSize*flashcardColumns))
}

func TestPostgresFlashcardStore_SaveAll_EmptyIsNoop(t *testing.T) {
	db, _ := newMock(t)
	s := NewPostgresFlashcardStore(db, quietLogger())

	assert.NoError(t, s.SaveAll(context.Background(), nil))
	assert.NoError(t, s.SaveAll(context.Background(), []*domain.Flashcard{}))
}

func TestPostgresFlashcardStore_SaveAll_RejectsBeforeWriting(t *testing.T) {
	db, _ := newMock(t)
	s := NewPostgresFlashcardStore(db, quietLogger())

	cards := []*domain.Flashcard{
		{ID: "c1", DeckID: "d2", UserID: "u2", Content: &domain.FrontBack{Front: "f", Back: "b"}},
		{ID: "", DeckID: "d2", UserID: "u2", Content: &domain.FrontBack{Front: "f", Back: "b"}},
	}
	err := s.SaveAll(context.Background(), cards)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestPostgresFlashcardStore_SaveAll_DatabaseError(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresFlashcardStore(db, quietLogger())

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO flashcards`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	cards := []*domain.Flashcard{
		{ID: "c1", DeckID: "d2", UserID: "u2", Content: &domain.FrontBack{Front: "f", Back: "b"}},
	}
	assert.Error(t, s.SaveAll(context.Background(), cards))
}
