package api_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/deckmind/internal/api"
	"github.com/phrazzld/deckmind/internal/api/shared"
	"github.com/phrazzld/deckmind/internal/mocks"
	"github.com/stretchr/testify/require"
)

const testUserID = "user-1"

type testServices struct {
	decks     *mocks.MockDeckService
	scheduler *mocks.MockReviewScheduler
	cards     *mocks.MockFlashcardService
	validator *mocks.MockAnswerValidationService
	chat      *mocks.MockChatService
}

func newTestServices() *testServices {
	return &testServices{
		decks:     &mocks.MockDeckService{},
		scheduler: &mocks.MockReviewScheduler{},
		cards:     &mocks.MockFlashcardService{},
		validator: &mocks.MockAnswerValidationService{},
		chat:      &mocks.MockChatService{},
	}
}

// router mirrors the authenticated part of the server's routes. Requests
// are attributed to testUserID unless the X-Test-Anonymous header is set.
func (s *testServices) router() http.Handler {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	decks := api.NewDeckHandler(s.decks, s.scheduler, quiet)
	cards := api.NewFlashcardHandler(s.cards, s.validator, quiet)
	chat := api.NewChatHandler(s.chat, quiet)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			if r.Header.Get("X-Test-Anonymous") == "" {
				ctx = shared.WithUserID(ctx, testUserID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/decks", decks.ListDecks)
		r.Post("/decks", decks.CreateDeck)
		r.Get("/decks/{deckID}", decks.GetDeck)
		r.Patch("/decks/{deckID}", decks.UpdateDeck)
		r.Post("/decks/{deckID}/schedule", decks.ScheduleReview)
		r.Post("/users/{ownerID}/decks/{deckID}/copy", decks.CopyDeck)

		r.Get("/decks/{deckID}/flashcards", cards.ListFlashcards)
		r.Post("/decks/{deckID}/flashcards", cards.CreateFlashcard)
		r.Post("/decks/{deckID}/flashcards/generate", cards.GenerateFlashcard)
		r.Get("/decks/{deckID}/flashcards/{flashcardID}", cards.GetFlashcard)
		r.Post("/flashcards/validate", cards.ValidateAnswer)

		r.Post("/chat/respond", chat.Respond)
		r.Get("/chat/history", chat.History)
	})
	return r
}

func (s *testServices) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()

	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.TraceID, "error responses carry the trace id")
	return resp
}

func newAnonymousRequest(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-Test-Anonymous", "1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
