package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/deckmind/internal/api/shared"
	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/phrazzld/deckmind/internal/redact"
)

// getUserIDFromContext returns the id placed in the context by the
// authentication middleware.
func getUserIDFromContext(r *http.Request) (string, bool) {
	return shared.UserIDFromContext(r.Context())
}

// getPathParam returns a non-blank chi path parameter.
func getPathParam(r *http.Request, paramName string) (string, error) {
	value := strings.TrimSpace(chi.URLParam(r, paramName))
	if value == "" {
		return "", domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}
	return value, nil
}

// requireUserID writes 401 and returns false when the request carries no
// authenticated user.
func requireUserID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (string, bool) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return "", false
	}
	return userID, true
}

// handleUserIDAndPathParams extracts the user id and every named path
// parameter, in order. It writes an error response and returns false when
// any of them is missing.
func handleUserIDAndPathParams(
	w http.ResponseWriter,
	r *http.Request,
	log *slog.Logger,
	paramNames ...string,
) (string, []string, bool) {
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return "", nil, false
	}

	values := make([]string, 0, len(paramNames))
	for _, name := range paramNames {
		value, err := getPathParam(r, name)
		if err != nil {
			log.Warn("invalid path parameter", slog.String("param_name", name))
			HandleAPIError(w, r, err, "")
			return "", nil, false
		}
		values = append(values, value)
	}
	return userID, values, true
}

// decodeAndValidate decodes the JSON body into req and validates it. It
// writes a 400 response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, log *slog.Logger, req any) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}
