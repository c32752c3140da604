package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/phrazzld/deckmind/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var deckCols = []string{"id", "name", "description", "user_id", "card_count", "next_review_at"}

func TestNewPostgresDeckStore(t *testing.T) {
	assert.Panics(t, func() { NewPostgresDeckStore(nil, nil) })

	db, _ := newMock(t)
	s := NewPostgresDeckStore(db, nil)
	assert.NotNil(t, s.logger)
}

func TestPostgresDeckStore_FindByOwner(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresDeckStore(db, quietLogger())

	mock.ExpectQuery(`SELECT id, name, description, user_id, card_count, next_review_at FROM decks WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(deckCols).
			AddRow("d1", "Biology", "cells", "u1", 3, int64(1767225600000)).
			AddRow("d2", "History", "", "u1", 0, nil))

	decks, err := s.FindByOwner(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, decks, 2)
	assert.Equal(t, "Biology", decks[0].Name)
	require.NotNil(t, decks[0].NextReviewAt)
	assert.Equal(t, int64(1767225600000), *decks[0].NextReviewAt)
	assert.Nil(t, decks[1].NextReviewAt)
}

func TestPostgresDeckStore_FindByOwner_Empty(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresDeckStore(db, quietLogger())

	mock.ExpectQuery(`FROM decks WHERE user_id`).WithArgs("nobody").WillReturnRows(sqlmock.NewRows(deckCols))

	decks, err := s.FindByOwner(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, decks)
	assert.Empty(t, decks)
}

func TestPostgresDeckStore_Create(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresDeckStore(db, quietLogger())

	mock.ExpectExec(`INSERT INTO decks`).
		WithArgs("owner", sqlmock.AnyArg(), "Biology", "cells", 0, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	input := &domain.Deck{ID: "client-id", Name: "Biology", Description: "cells", UserID: "spoofed"}
	created, err := s.Create(context.Background(), input, "owner")
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.NotEqual(t, "client-id", created.ID)
	assert.Equal(t, "owner", created.UserID)
	assert.Equal(t, "spoofed", input.UserID, "input must not be mutated")
}

func TestPostgresDeckStore_Create_Invalid(t *testing.T) {
	db, _ := newMock(t)
	s := NewPostgresDeckStore(db, quietLogger())

	_, err := s.Create(context.Background(), &domain.Deck{Name: " "}, "owner")
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.Create(context.Background(), &domain.Deck{Name: "ok"}, "")
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestPostgresDeckStore_Find(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresDeckStore(db, quietLogger())

	mock.ExpectQuery(`FROM decks WHERE user_id = \$1 AND id = \$2`).
		WithArgs("u1", "d1").
		WillReturnRows(sqlmock.NewRows(deckCols).AddRow("d1", "Biology", "cells", "u1", 3, nil))

	deck, err := s.Find(context.Background(), "d1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "d1", deck.ID)
	assert.Equal(t, 3, deck.CardCount)
}

func TestPostgresDeckStore_Find_NotOwned(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresDeckStore(db, quietLogger())

	mock.ExpectQuery(`FROM decks WHERE user_id = \$1 AND id = \$2`).
		WithArgs("intruder", "d1").
		WillReturnRows(sqlmock.NewRows(deckCols))

	_, err := s.Find(context.Background(), "d1", "intruder")
	assert.ErrorIs(t, err, store.ErrDeckNotFound)
	assert.True(t, store.IsNotFoundError(err))
}

func TestPostgresDeckStore_Find_QueryError(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresDeckStore(db, quietLogger())

	mock.ExpectQuery(`FROM decks`).WillReturnError(errors.New("connection reset"))

	_, err := s.Find(context.Background(), "d1", "u1")
	require.Error(t, err)
	assert.False(t, store.IsNotFoundError(err))
}

func TestPostgresDeckStore_UpdateFields(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresDeckStore(db, quietLogger())

	next := int64(1767225600000)
	mock.ExpectExec(`UPDATE decks SET name = COALESCE\(\$3, name\)`).
		WithArgs("u1", "d1", nil, nil, next).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpdateFields(context.Background(), "d1", "u1", store.DeckPatch{NextReviewAt: &next})
	assert.NoError(t, err)
}

func TestPostgresDeckStore_UpdateFields_NotFound(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresDeckStore(db, quietLogger())

	name := "x"
	mock.ExpectExec(`UPDATE decks`).
		WithArgs("u1", "missing", name, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.UpdateFields(context.Background(), "missing", "u1", store.DeckPatch{Name: &name})
	assert.ErrorIs(t, err, store.ErrDeckNotFound)
}
