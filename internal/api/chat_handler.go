package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/phrazzld/deckmind/internal/api/shared"
	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/phrazzld/deckmind/internal/platform/logger"
	"github.com/phrazzld/deckmind/internal/service"
)

// ChatHandler handles the study-assistant conversation.
type ChatHandler struct {
	chat   service.ChatService
	logger *slog.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat service.ChatService, logger *slog.Logger) *ChatHandler {
	if chat == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("chat service is required for ChatHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{
		chat:   chat,
		logger: logger.With(slog.String("component", "chat_handler")),
	}
}

// Respond handles POST /api/chat/respond. The reply is produced in the
// background and appears in the history once ready.
func (h *ChatHandler) Respond(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req ChatRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}

	if err := h.chat.Submit(r.Context(), userID, req.Text); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, AcceptedResponse{Status: "accepted"})
}

// History handles GET /api/chat/history?limit=N.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	limit := service.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			HandleAPIError(w, r,
				domain.NewValidationError("limit", "must be an integer", domain.ErrValidation), "")
			return
		}
		limit = parsed
	}

	messages, err := h.chat.History(r.Context(), userID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if messages == nil {
		messages = []*domain.ChatMessage{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, messages)
}
