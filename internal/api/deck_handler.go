package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/deckmind/internal/api/shared"
	"github.com/phrazzld/deckmind/internal/platform/logger"
	"github.com/phrazzld/deckmind/internal/service"
)

// DeckHandler handles deck-related HTTP requests.
type DeckHandler struct {
	decks     service.DeckService
	scheduler service.ReviewScheduler
	logger    *slog.Logger
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(
	decks service.DeckService,
	scheduler service.ReviewScheduler,
	logger *slog.Logger,
) *DeckHandler {
	if decks == nil || scheduler == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("deck service and review scheduler are required for DeckHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DeckHandler{
		decks:     decks,
		scheduler: scheduler,
		logger:    logger.With(slog.String("component", "deck_handler")),
	}
}

// ListDecks handles GET /api/decks.
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	decks, err := h.decks.ListDecks(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list decks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, decksToResponse(decks))
}

// CreateDeck handles POST /api/decks.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateDeckRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}

	deck, err := h.decks.CreateDeck(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("deck created",
		slog.String("user_id", userID),
		slog.String("deck_id", deck.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, deckToResponse(deck))
}

// GetDeck handles GET /api/decks/{deckID}.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, params, ok := handleUserIDAndPathParams(w, r, log, "deckID")
	if !ok {
		return
	}

	deck, err := h.decks.GetDeck(r.Context(), userID, params[0])
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, deckToResponse(deck))
}

// UpdateDeck handles PATCH /api/decks/{deckID}.
func (h *DeckHandler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, params, ok := handleUserIDAndPathParams(w, r, log, "deckID")
	if !ok {
		return
	}

	var req UpdateDeckRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}

	deck, err := h.decks.UpdateDeck(r.Context(), userID, params[0], service.DeckUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, deckToResponse(deck))
}

// CopyDeck handles POST /api/users/{ownerID}/decks/{deckID}/copy.
// The caller receives a new deck holding a copy of every flashcard.
func (h *DeckHandler) CopyDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, params, ok := handleUserIDAndPathParams(w, r, log, "ownerID", "deckID")
	if !ok {
		return
	}
	ownerID, deckID := params[0], params[1]

	deck, err := h.decks.CopyDeck(r.Context(), userID, ownerID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("deck copied",
		slog.String("user_id", userID),
		slog.String("source_owner_id", ownerID),
		slog.String("source_deck_id", deckID),
		slog.String("deck_id", deck.ID),
		slog.Int("card_count", deck.CardCount))
	shared.RespondWithJSON(w, r, http.StatusCreated, deckToResponse(deck))
}

// ScheduleReview handles POST /api/decks/{deckID}/schedule. Ownership is
// checked before responding; the date itself is computed in the background.
func (h *DeckHandler) ScheduleReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, params, ok := handleUserIDAndPathParams(w, r, log, "deckID")
	if !ok {
		return
	}

	if err := h.scheduler.RequestSchedule(r.Context(), userID, params[0]); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, AcceptedResponse{Status: "accepted"})
}
