package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/phrazzld/deckmind/internal/events"
	"github.com/phrazzld/deckmind/internal/generation"
	"github.com/phrazzld/deckmind/internal/platform/logger"
	"github.com/phrazzld/deckmind/internal/store"
)

// ReviewScheduler sets a deck's next review date from the generative
// service's recommendation.
type ReviewScheduler interface {
	// RequestSchedule checks that userID owns deckID and queues a detached
	// scheduling run. It returns once the request has been accepted.
	RequestSchedule(ctx context.Context, userID, deckID string) error

	// Schedule computes and persists the deck's next review date. A deck
	// without cards is left untouched.
	Schedule(ctx context.Context, userID, deckID string) error
}

// SchedulerOption configures a ReviewScheduler.
type SchedulerOption func(*reviewSchedulerImpl)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *reviewSchedulerImpl) {
		s.now = now
	}
}

// WithLocation sets the time zone whose midnight the review date maps to.
func WithLocation(loc *time.Location) SchedulerOption {
	return func(s *reviewSchedulerImpl) {
		s.loc = loc
	}
}

type reviewSchedulerImpl struct {
	decks   store.DeckStore
	cards   store.FlashcardStore
	gateway generation.Gateway
	emitter events.EventEmitter
	logger  *slog.Logger
	now     func() time.Time
	loc     *time.Location
}

var _ ReviewScheduler = (*reviewSchedulerImpl)(nil)

// NewReviewScheduler creates a ReviewScheduler.
// It returns an error if any of the required dependencies are nil.
func NewReviewScheduler(
	decks store.DeckStore,
	cards store.FlashcardStore,
	gateway generation.Gateway,
	emitter events.EventEmitter,
	logger *slog.Logger,
	opts ...SchedulerOption,
) (ReviewScheduler, error) {
	if decks == nil {
		return nil, domain.NewValidationError("decks", "cannot be nil", domain.ErrValidation)
	}
	if cards == nil {
		return nil, domain.NewValidationError("cards", "cannot be nil", domain.ErrValidation)
	}
	if gateway == nil {
		return nil, domain.NewValidationError("gateway", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		return nil, domain.NewValidationError("emitter", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &reviewSchedulerImpl{
		decks:   decks,
		cards:   cards,
		gateway: gateway,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "review_scheduler")),
		now:     time.Now,
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RequestSchedule implements ReviewScheduler.RequestSchedule.
func (s *reviewSchedulerImpl) RequestSchedule(ctx context.Context, userID, deckID string) error {
	const op = "request_schedule"

	if _, err := s.decks.Find(ctx, deckID, userID); err != nil {
		return NewServiceError(op, "failed to get deck", err)
	}

	event, err := events.NewTaskRequestEvent(events.TypeReviewScheduleRequested,
		events.ReviewSchedulePayload{UserID: userID, DeckID: deckID})
	if err != nil {
		return NewServiceError(op, "failed to create event", err)
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		return NewServiceError(op, "failed to queue scheduling", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("review scheduling queued",
		slog.String("deck_id", deckID),
		slog.String("event_id", event.ID.String()))
	return nil
}

// Schedule implements ReviewScheduler.Schedule.
//
// The recommended date is converted to epoch milliseconds at midnight in
// the scheduler's location. Unparseable dates and dates before today abort
// the run without writing. The write sets only nextReviewAt.
func (s *reviewSchedulerImpl) Schedule(ctx context.Context, userID, deckID string) error {
	const op = "schedule_review"
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("deck_id", deckID),
		slog.String("user_id", userID))

	deck, err := s.decks.Find(ctx, deckID, userID)
	if err != nil {
		return NewServiceError(op, "failed to get deck", err)
	}
	cards, err := s.cards.FindAllInDeck(ctx, deckID, userID)
	if err != nil {
		return NewServiceError(op, "failed to list flashcards", err)
	}
	if len(cards) == 0 {
		log.Info("deck has no flashcards, nothing to schedule")
		return nil
	}

	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	prompt, err := generation.SchedulePrompt(today, deck.Name, cards)
	if err != nil {
		return NewServiceError(op, "failed to build prompt", err)
	}

	raw, err := s.gateway.Send(ctx, prompt)
	if err != nil {
		return NewServiceError(op, "generative service call failed", err)
	}

	next, err := generation.DecodeReviewDate(raw, s.loc)
	if err != nil {
		logMalformed(log, "review date rejected", err)
		return NewServiceError(op, "review date is malformed", err)
	}
	if next.Before(today) {
		log.Warn("review date is in the past",
			slog.String("next_review_date", next.Format(time.DateOnly)),
			slog.String("today", today.Format(time.DateOnly)))
		return NewServiceError(op, "review date is in the past",
			fmt.Errorf("%w: %s is before %s", generation.ErrMalformedPayload,
				next.Format(time.DateOnly), today.Format(time.DateOnly)))
	}

	millis := next.UnixMilli()
	if err := s.decks.UpdateFields(ctx, deckID, userID, store.DeckPatch{NextReviewAt: &millis}); err != nil {
		return NewServiceError(op, "failed to save review date", err)
	}

	attrs := []any{
		slog.String("next_review_date", next.Format(time.DateOnly)),
		slog.Int("card_count", len(cards)),
	}
	if previous := deck.NextReview(); !previous.IsZero() {
		attrs = append(attrs, slog.String("previous_review_date", previous.In(s.loc).Format(time.DateOnly)))
	}
	log.Info("deck review scheduled", attrs...)
	return nil
}
