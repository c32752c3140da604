package badgerdb

import (
	"context"
	"fmt"
	"testing"

	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/phrazzld/deckmind/internal/platform/logger"
	"github.com/phrazzld/deckmind/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedDeck(t *testing.T, decks *BadgerDeckStore, owner, name string) *domain.Deck {
	t.Helper()
	deck, err := decks.Create(context.Background(), &domain.Deck{Name: name}, owner)
	require.NoError(t, err)
	return deck
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestOpen_OnDisk(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	db, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestBadgerDeckStore_CreateFindList(t *testing.T) {
	db := openTestDB(t)
	decks := NewBadgerDeckStore(db.DB, nil)
	ctx := context.Background()

	a := seedDeck(t, decks, "alice", "Biology")
	seedDeck(t, decks, "alice", "History")
	seedDeck(t, decks, "bob", "Chemistry")

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "alice", a.UserID)

	found, err := decks.Find(ctx, a.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, a, found)

	_, err = decks.Find(ctx, a.ID, "bob")
	assert.ErrorIs(t, err, store.ErrDeckNotFound)

	list, err := decks.FindByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = decks.FindByOwner(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBadgerDeckStore_OwnerPrefixDoesNotLeak(t *testing.T) {
	db := openTestDB(t)
	decks := NewBadgerDeckStore(db.DB, nil)

	seedDeck(t, decks, "al", "short")
	_, err := decks.Create(context.Background(), &domain.Deck{Name: "x"}, "al/ice")
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	list, err := decks.FindByOwner(context.Background(), "al")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestBadgerDeckStore_UpdateFields(t *testing.T) {
	db := openTestDB(t)
	decks := NewBadgerDeckStore(db.DB, nil)
	ctx := context.Background()
	deck := seedDeck(t, decks, "alice", "Biology")

	next := int64(1767225600000)
	require.NoError(t, decks.UpdateFields(ctx, deck.ID, "alice", store.DeckPatch{NextReviewAt: &next}))

	got, err := decks.Find(ctx, deck.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Biology", got.Name)
	assert.Equal(t, next, *got.NextReviewAt)

	err = decks.UpdateFields(ctx, deck.ID, "bob", store.DeckPatch{NextReviewAt: &next})
	assert.ErrorIs(t, err, store.ErrDeckNotFound)
	err = decks.UpdateFields(ctx, "missing", "alice", store.DeckPatch{NextReviewAt: &next})
	assert.ErrorIs(t, err, store.ErrDeckNotFound)
}

func TestBadgerFlashcardStore_CreateResetsBookkeeping(t *testing.T) {
	db := openTestDB(t)
	decks := NewBadgerDeckStore(db.DB, nil)
	cards := NewBadgerFlashcardStore(db.DB, nil)
	ctx := context.Background()
	deck := seedDeck(t, decks, "alice", "Biology")

	next := int64(1767225600000)
	inputs := []*domain.Flashcard{
		{Content: &domain.FrontBack{Front: "zero state", Back: "a"}},
		{
			ReviewState: domain.ReviewState{EasinessFactor: 1.3, Repetitions: 9, IntervalDays: 40, NextReviewAt: &next},
			Content:     &domain.FrontBack{Front: "stale state", Back: "a"},
		},
	}
	for _, input := range inputs {
		created, err := cards.Create(ctx, deck.ID, "alice", input)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultReviewState(), created.ReviewState)

		stored, err := cards.Find(ctx, deck.ID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultReviewState(), stored.ReviewState)
	}
	assert.Equal(t, 9, inputs[1].Repetitions, "input must not be mutated")
}

func TestBadgerFlashcardStore_CreateIncrementsCardCount(t *testing.T) {
	db := openTestDB(t)
	decks := NewBadgerDeckStore(db.DB, nil)
	cards := NewBadgerFlashcardStore(db.DB, nil)
	ctx := context.Background()
	deck := seedDeck(t, decks, "alice", "Biology")

	for i := 0; i < 3; i++ {
		_, err := cards.Create(ctx, deck.ID, "alice", &domain.Flashcard{
			Content: &domain.FrontBack{Front: fmt.Sprintf("q%d", i), Back: "a"},
		})
		require.NoError(t, err)
	}

	got, err := decks.Find(ctx, deck.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, got.CardCount)

	list, err := cards.FindAllInDeck(ctx, deck.ID, "alice")
	require.NoError(t, err)
	require.Len(t, list, 3)
	for _, c := range list {
		assert.Equal(t, deck.ID, c.DeckID)
		assert.Equal(t, "alice", c.UserID)
		assert.Equal(t, domain.DefaultReviewState(), c.ReviewState)
	}

	one, err := cards.Find(ctx, deck.ID, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, list[0], one)
}

func TestBadgerFlashcardStore_CreateRequiresOwnedDeck(t *testing.T) {
	db := openTestDB(t)
	decks := NewBadgerDeckStore(db.DB, nil)
	cards := NewBadgerFlashcardStore(db.DB, nil)
	deck := seedDeck(t, decks, "alice", "Biology")

	_, err := cards.Create(context.Background(), deck.ID, "bob", &domain.Flashcard{
		Content: &domain.FrontBack{Front: "f", Back: "b"},
	})
	assert.ErrorIs(t, err, store.ErrDeckNotFound)
}

func TestBadgerFlashcardStore_FindAllInDeck_NotOwnedIsEmpty(t *testing.T) {
	db := openTestDB(t)
	decks := NewBadgerDeckStore(db.DB, nil)
	cards := NewBadgerFlashcardStore(db.DB, nil)
	deck := seedDeck(t, decks, "alice", "Biology")

	_, err := cards.Create(context.Background(), deck.ID, "alice", &domain.Flashcard{
		Content: &domain.FrontBack{Front: "secret", Back: "answer"},
	})
	require.NoError(t, err)

	ctx, logs := logger.NewTestContext(t)
	list, err := cards.FindAllInDeck(ctx, deck.ID, "mallory")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.Contains(t, logs.String(), "flashcard listing denied")
	assert.NotContains(t, logs.String(), "secret")

	list, err = cards.FindAllInDeck(ctx, "missing", "alice")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBadgerFlashcardStore_SaveAll(t *testing.T) {
	db := openTestDB(t)
	decks := NewBadgerDeckStore(db.DB, nil)
	cards := NewBadgerFlashcardStore(db.DB, nil)
	ctx := context.Background()
	deck := seedDeck(t, decks, "bob", "Copy")

	batch := []*domain.Flashcard{
		{ID: "c1", DeckID: deck.ID, UserID: "bob", ReviewState: domain.DefaultReviewState(),
			Content: &domain.TypedAnswer{Question: "Capital of Brazil?", ValidAnswers: []string{"Brasília"}}},
		{ID: "c2", DeckID: deck.ID, UserID: "bob", ReviewState: domain.DefaultReviewState(),
			Content: &domain.Cloze{TextWithGaps: "{{c1}} cell", GapAnswers: map[string]string{"c1": "plant"}}},
	}
	require.NoError(t, cards.SaveAll(ctx, batch))
	require.NoError(t, cards.SaveAll(ctx, nil))

	list, err := cards.FindAllInDeck(ctx, deck.ID, "bob")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	batch[0].Content = &domain.TypedAnswer{Question: "Capital of Brazil?", ValidAnswers: []string{"Brasilia"}}
	require.NoError(t, cards.SaveAll(ctx, batch[:1]))
	got, err := cards.Find(ctx, deck.ID, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Brasilia"}, got.Content.(*domain.TypedAnswer).ValidAnswers)
}

func TestBadgerFlashcardStore_SaveAll_AllOrNothing(t *testing.T) {
	db := openTestDB(t)
	cards := NewBadgerFlashcardStore(db.DB, nil)
	ctx := context.Background()

	batch := []*domain.Flashcard{
		{ID: "c1", DeckID: "d1", UserID: "bob", Content: &domain.FrontBack{Front: "f", Back: "b"}},
		{ID: "c2", DeckID: "d1", UserID: "bob", Content: &domain.FrontBack{Front: "", Back: "b"}},
	}
	err := cards.SaveAll(ctx, batch)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	_, err = cards.Find(ctx, "d1", "c1")
	assert.ErrorIs(t, err, store.ErrFlashcardNotFound)
}

func TestBadgerChatStore_Ordering(t *testing.T) {
	db := openTestDB(t)
	chats, err := NewBadgerChatStore(db.DB, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = chats.Close() })
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		sender := domain.SenderUser
		if i%2 == 1 {
			sender = domain.SenderLLM
		}
		_, err := chats.AddMessage(ctx, "alice", &domain.ChatMessage{Sender: sender, Text: fmt.Sprintf("m%d", i), Timestamp: int64(i)})
		require.NoError(t, err)
	}
	_, err = chats.AddMessage(ctx, "bob", &domain.ChatMessage{Sender: domain.SenderUser, Text: "other", Timestamp: 99})
	require.NoError(t, err)

	latest, err := chats.GetLatestMessages(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, latest, 10)
	assert.Equal(t, "m2", latest[0].Text)
	assert.Equal(t, "m11", latest[9].Text)
	for i := 1; i < len(latest); i++ {
		assert.Less(t, latest[i-1].ID, latest[i].ID)
	}

	all, err := chats.GetLatestMessages(ctx, "bob", 50)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "other", all[0].Text)

	none, err := chats.GetLatestMessages(ctx, "carol", 50)
	require.NoError(t, err)
	assert.Empty(t, none)
}
