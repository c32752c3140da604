package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/deckmind/internal/api"
	apiMiddleware "github.com/phrazzld/deckmind/internal/api/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter creates the router with every route and its middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(apiMiddleware.Metrics)
	r.Use(middleware.Recoverer)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.logger)
	limiter := apiMiddleware.NewRateLimiter(app.config.RateLimit)

	deckHandler := api.NewDeckHandler(app.deckService, app.scheduler, app.logger)
	flashcardHandler := api.NewFlashcardHandler(app.flashcardService, app.validation, app.logger)
	chatHandler := api.NewChatHandler(app.chatService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/decks", deckHandler.ListDecks)
		r.Post("/decks", deckHandler.CreateDeck)
		r.Get("/decks/{deckID}", deckHandler.GetDeck)
		r.Patch("/decks/{deckID}", deckHandler.UpdateDeck)
		r.Post("/users/{ownerID}/decks/{deckID}/copy", deckHandler.CopyDeck)

		r.Get("/decks/{deckID}/flashcards", flashcardHandler.ListFlashcards)
		r.Post("/decks/{deckID}/flashcards", flashcardHandler.CreateFlashcard)
		r.Get("/decks/{deckID}/flashcards/{flashcardID}", flashcardHandler.GetFlashcard)

		r.Get("/chat/history", chatHandler.History)

		// Routes that call a generative service.
		r.Group(func(r chi.Router) {
			r.Use(limiter.Limit)

			r.Post("/decks/{deckID}/schedule", deckHandler.ScheduleReview)
			r.Post("/decks/{deckID}/flashcards/generate", flashcardHandler.GenerateFlashcard)
			r.Post("/flashcards/validate", flashcardHandler.ValidateAnswer)
			r.Post("/chat/respond", chatHandler.Respond)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
