package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/phrazzld/deckmind/internal/events"
	"github.com/phrazzld/deckmind/internal/generation"
	"github.com/phrazzld/deckmind/internal/mocks"
	"github.com/phrazzld/deckmind/internal/service"
	"github.com/phrazzld/deckmind/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	saoPaulo = time.FixedZone("BRT", -3*60*60)
	fixedNow = time.Date(2025, time.March, 10, 15, 30, 0, 0, saoPaulo)
)

func newScheduler(
	t *testing.T,
	decks *mocks.MockDeckStore,
	cards *mocks.MockFlashcardStore,
	gateway *mocks.MockGateway,
	emitter *mocks.MockEventEmitter,
) service.ReviewScheduler {
	t.Helper()
	if emitter == nil {
		emitter = &mocks.MockEventEmitter{}
	}
	s, err := service.NewReviewScheduler(decks, cards, gateway, emitter, quietLogger(),
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithLocation(saoPaulo))
	require.NoError(t, err)
	return s
}

func TestSchedule_WritesOnlyNextReviewAt(t *testing.T) {
	t.Parallel()

	decks := ownedDecks(&domain.Deck{ID: "d1", UserID: "u1", Name: "Biology"})
	cards := cardsInDeck(
		frontBackCard("0123456789abcdef", "d1", "u1", "q1"),
		frontBackCard("c2", "d1", "u1", "q2"),
	)
	gateway := &mocks.MockGateway{Response: "```json\n{\"nextReviewDate\": \"2025-03-14\"}\n```"}
	s := newScheduler(t, decks, cards, gateway, nil)

	require.NoError(t, s.Schedule(context.Background(), "u1", "d1"))

	require.Len(t, decks.UpdateCalls, 1)
	patch := decks.UpdateCalls[0]
	assert.Nil(t, patch.Name)
	assert.Nil(t, patch.Description)
	require.NotNil(t, patch.NextReviewAt)
	want := time.Date(2025, time.March, 14, 0, 0, 0, 0, saoPaulo).UnixMilli()
	assert.Equal(t, want, *patch.NextReviewAt)

	prompt := gateway.Prompts()[0]
	assert.Contains(t, prompt, "Today's date: 2025-03-10")
	assert.Contains(t, prompt, "Biology")
	assert.Contains(t, prompt, "Card 01234567: 0 reviews, easiness factor 2.50")
}

func TestSchedule_TodayIsAccepted(t *testing.T) {
	t.Parallel()

	decks := ownedDecks(&domain.Deck{ID: "d1", UserID: "u1", Name: "Biology"})
	cards := cardsInDeck(frontBackCard("c1", "d1", "u1", "q1"))
	gateway := &mocks.MockGateway{Response: `{"nextReviewDate":"2025-03-10"}`}
	s := newScheduler(t, decks, cards, gateway, nil)

	require.NoError(t, s.Schedule(context.Background(), "u1", "d1"))
	assert.Len(t, decks.UpdateCalls, 1)
}

func TestSchedule_EmptyDeckIsNoOp(t *testing.T) {
	t.Parallel()

	decks := ownedDecks(&domain.Deck{ID: "d1", UserID: "u1", Name: "Empty"})
	gateway := &mocks.MockGateway{}
	s := newScheduler(t, decks, cardsInDeck(), gateway, nil)

	require.NoError(t, s.Schedule(context.Background(), "u1", "d1"))
	assert.Empty(t, decks.UpdateCalls)
	assert.Zero(t, gateway.Calls())
}

func TestSchedule_FailuresNeverWrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		userID     string
		response   string
		gatewayErr error
		wantErr    error
	}{
		{name: "deck not owned", userID: "intruder", wantErr: store.ErrNotFound},
		{name: "gateway failure", userID: "u1", gatewayErr: generation.ErrContentBlocked, wantErr: domain.ErrExternalService},
		{name: "unparseable date", userID: "u1", response: `{"nextReviewDate":"next tuesday"}`, wantErr: generation.ErrMalformedPayload},
		{name: "missing date", userID: "u1", response: `{}`, wantErr: generation.ErrMalformedPayload},
		{name: "past date", userID: "u1", response: `{"nextReviewDate":"2025-03-09"}`, wantErr: generation.ErrMalformedPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decks := ownedDecks(&domain.Deck{ID: "d1", UserID: "u1", Name: "Biology"})
			cards := cardsInDeck(frontBackCard("c1", "d1", "u1", "q1"))
			gateway := &mocks.MockGateway{Response: tt.response, Err: tt.gatewayErr}
			s := newScheduler(t, decks, cards, gateway, nil)

			err := s.Schedule(context.Background(), tt.userID, "d1")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Empty(t, decks.UpdateCalls)
		})
	}
}

func TestSchedule_LegacyDateKey(t *testing.T) {
	t.Parallel()

	decks := ownedDecks(&domain.Deck{ID: "d1", UserID: "u1", Name: "Biology"})
	cards := cardsInDeck(frontBackCard("c1", "d1", "u1", "q1"))
	gateway := &mocks.MockGateway{Response: `{"proximaDataRevisao":"2025-04-01"}`}
	s := newScheduler(t, decks, cards, gateway, nil)

	require.NoError(t, s.Schedule(context.Background(), "u1", "d1"))
	require.Len(t, decks.UpdateCalls, 1)
	want := time.Date(2025, time.April, 1, 0, 0, 0, 0, saoPaulo).UnixMilli()
	assert.Equal(t, want, *decks.UpdateCalls[0].NextReviewAt)
}

func TestRequestSchedule(t *testing.T) {
	t.Parallel()

	decks := ownedDecks(&domain.Deck{ID: "d1", UserID: "u1", Name: "Biology"})
	emitter := &mocks.MockEventEmitter{}
	s := newScheduler(t, decks, cardsInDeck(), &mocks.MockGateway{}, emitter)

	require.NoError(t, s.RequestSchedule(context.Background(), "u1", "d1"))
	emitted := emitter.Events()
	require.Len(t, emitted, 1)
	assert.Equal(t, events.TypeReviewScheduleRequested, emitted[0].Type)

	var payload events.ReviewSchedulePayload
	require.NoError(t, emitted[0].UnmarshalPayload(&payload))
	assert.Equal(t, events.ReviewSchedulePayload{UserID: "u1", DeckID: "d1"}, payload)

	err := s.RequestSchedule(context.Background(), "intruder", "d1")
	assert.True(t, errors.Is(err, store.ErrNotFound))
	assert.Len(t, emitter.Events(), 1, "nothing is queued for decks the caller does not own")
}

func TestRequestSchedule_EmitFailurePropagates(t *testing.T) {
	t.Parallel()

	queueFull := errors.New("queue full")
	decks := ownedDecks(&domain.Deck{ID: "d1", UserID: "u1", Name: "Biology"})
	emitter := &mocks.MockEventEmitter{
		EmitEventFn: func(context.Context, *events.TaskRequestEvent) error { return queueFull },
	}
	s := newScheduler(t, decks, cardsInDeck(), &mocks.MockGateway{}, emitter)

	err := s.RequestSchedule(context.Background(), "u1", "d1")
	assert.True(t, errors.Is(err, queueFull))
}
