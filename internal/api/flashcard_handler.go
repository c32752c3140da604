package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/deckmind/internal/api/shared"
	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/phrazzld/deckmind/internal/platform/logger"
	"github.com/phrazzld/deckmind/internal/redact"
	"github.com/phrazzld/deckmind/internal/service"
)

// FlashcardHandler handles flashcard-related HTTP requests, including
// generation and answer validation.
type FlashcardHandler struct {
	cards     service.FlashcardService
	validator service.AnswerValidationService
	logger    *slog.Logger
}

// NewFlashcardHandler creates a new FlashcardHandler.
func NewFlashcardHandler(
	cards service.FlashcardService,
	validator service.AnswerValidationService,
	logger *slog.Logger,
) *FlashcardHandler {
	if cards == nil || validator == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("flashcard and answer validation services are required for FlashcardHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FlashcardHandler{
		cards:     cards,
		validator: validator,
		logger:    logger.With(slog.String("component", "flashcard_handler")),
	}
}

// ListFlashcards handles GET /api/decks/{deckID}/flashcards.
func (h *FlashcardHandler) ListFlashcards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, params, ok := handleUserIDAndPathParams(w, r, log, "deckID")
	if !ok {
		return
	}

	cards, err := h.cards.ListFlashcards(r.Context(), userID, params[0])
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list flashcards")
		return
	}
	if cards == nil {
		cards = []*domain.Flashcard{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cards)
}

// GetFlashcard handles GET /api/decks/{deckID}/flashcards/{flashcardID}.
func (h *FlashcardHandler) GetFlashcard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, params, ok := handleUserIDAndPathParams(w, r, log, "deckID", "flashcardID")
	if !ok {
		return
	}

	card, err := h.cards.GetFlashcard(r.Context(), userID, params[0], params[1])
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// CreateFlashcard handles POST /api/decks/{deckID}/flashcards. The body is
// a flat flashcard object selected by its "type" field.
func (h *FlashcardHandler) CreateFlashcard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, params, ok := handleUserIDAndPathParams(w, r, log, "deckID")
	if !ok {
		return
	}

	var card domain.Flashcard
	if err := shared.DecodeJSON(r, &card); err != nil {
		log.Warn("invalid flashcard payload", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid flashcard payload")
		return
	}

	created, err := h.cards.CreateFlashcard(r.Context(), userID, params[0], &card)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("flashcard created",
		slog.String("deck_id", created.DeckID),
		slog.String("flashcard_id", created.ID),
		slog.String("type", string(created.Type())))
	shared.RespondWithJSON(w, r, http.StatusCreated, created)
}

// GenerateFlashcard handles POST /api/decks/{deckID}/flashcards/generate.
// The candidate is returned as-is unless the request asks to persist it.
func (h *FlashcardHandler) GenerateFlashcard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, params, ok := handleUserIDAndPathParams(w, r, log, "deckID")
	if !ok {
		return
	}
	deckID := params[0]

	var req GenerateFlashcardRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}

	candidate, err := h.cards.GenerateFlashcard(r.Context(), userID, deckID, req.Type, req.UserComment)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if !req.Persist {
		shared.RespondWithJSON(w, r, http.StatusOK, candidate)
		return
	}

	created, err := h.cards.CreateFlashcard(r.Context(), userID, deckID, candidate)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, created)
}

// ValidateAnswer handles POST /api/flashcards/validate.
func (h *FlashcardHandler) ValidateAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req ValidateAnswerRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}

	verdict, err := h.validator.ValidateAnswer(r.Context(), userID, req.DeckID, req.FlashcardID, req.UserAnswer)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, verdict)
}
