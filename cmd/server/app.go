package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/deckmind/internal/config"
	"github.com/phrazzld/deckmind/internal/events"
	"github.com/phrazzld/deckmind/internal/generation"
	"github.com/phrazzld/deckmind/internal/platform/gemini"
	"github.com/phrazzld/deckmind/internal/platform/groq"
	"github.com/phrazzld/deckmind/internal/service"
	"github.com/phrazzld/deckmind/internal/service/auth"
	"github.com/phrazzld/deckmind/internal/task"
)

// gateways holds the generative clients, built once at startup. The
// structured gateway answers in JSON and the chat gateway in free text.
type gateways struct {
	structured generation.Gateway
	chat       generation.Gateway
}

// newGateways builds the Gemini gateway and the chat gateway. Chat uses Groq
// when a key is configured and Gemini in plain-text mode otherwise.
func newGateways(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*gateways, error) {
	gem, err := gemini.NewGateway(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini gateway: %w", err)
	}
	gw := &gateways{structured: gem, chat: gem.PlainText()}

	if cfg.GroqAPIKey != "" {
		chat, err := groq.NewGateway(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Groq gateway: %w", err)
		}
		gw.chat = chat
		logger.Info("chat replies use Groq", slog.String("model", cfg.GroqModel))
	} else {
		logger.Info("chat replies use Gemini", slog.String("model", cfg.GeminiModel))
	}
	return gw, nil
}

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	storage *storage

	jwtService       auth.JWTService
	deckService      service.DeckService
	flashcardService service.FlashcardService
	validation       service.AnswerValidationService
	scheduler        service.ReviewScheduler
	chatService      service.ChatService

	eventEmitter *events.InMemoryEventEmitter
	taskRunner   *task.TaskRunner
}

// newApplication wires services, the event emitter and the task runner on
// top of an opened storage backend and built gateways.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	st *storage,
	gw *gateways,
) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		storage: st,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth, auth.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.taskRunner = task.NewTaskRunner(task.RunnerConfigFrom(cfg.Task), logger)

	app.deckService, err = service.NewDeckService(st.decks, st.cards, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create deck service: %w", err)
	}
	app.flashcardService, err = service.NewFlashcardService(st.decks, st.cards, gw.structured, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create flashcard service: %w", err)
	}
	app.validation, err = service.NewAnswerValidationService(st.decks, st.cards, gw.structured, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create answer validation service: %w", err)
	}
	app.scheduler, err = service.NewReviewScheduler(st.decks, st.cards, gw.structured, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create review scheduler: %w", err)
	}
	app.chatService, err = service.NewChatService(
		st.chats,
		gw.chat,
		app.eventEmitter,
		cfg.LLM.ChatContextMessages,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat service: %w", err)
	}

	handler := task.NewTaskFactoryEventHandler(app.taskRunner, logger)
	handler.Register(events.TypeReviewScheduleRequested, task.NewReviewScheduleTaskFactory(app.scheduler, logger))
	handler.Register(events.TypeChatReplyRequested, task.NewChatReplyTaskFactory(app.chatService, logger))
	app.eventEmitter.RegisterHandler(handler)

	logger.Info("application initialized",
		slog.Int("task_workers", cfg.Task.WorkerCount),
		slog.Int("task_queue_size", cfg.Task.QueueSize))
	return app, nil
}

// Run starts the task runner and serves HTTP until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	if err := app.taskRunner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup drains background work and releases the storage backend.
func (app *application) cleanup(ctx context.Context) {
	if err := app.taskRunner.Stop(ctx); err != nil {
		app.logger.Error("task runner did not drain before shutdown deadline",
			slog.String("error", err.Error()))
	}

	if err := app.storage.Close(); err != nil {
		app.logger.Error("error closing storage", slog.String("error", err.Error()))
	}

	app.logger.Info("application shutdown completed")
}
