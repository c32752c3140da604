// Package main implements the entry point for the deckmind API server, which
// stores users' flashcard decks and uses generative services to create
// cards, grade answers, schedule reviews and chat about the material.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/deckmind/internal/config"
	"github.com/phrazzld/deckmind/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up|down|status|version) and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *migrateCmd); err != nil {
		log.Fatalf("deckmind: %v", err)
	}
}

// run loads configuration, then either executes a migration command or
// serves the API until ctx is canceled.
func run(ctx context.Context, migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("groq_chat", cfg.LLM.GroqAPIKey != ""))

	if migrateCmd != "" {
		return handleMigrations(ctx, cfg, migrateCmd, log)
	}

	storage, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}

	gateways, err := newGateways(ctx, cfg.LLM, log)
	if err != nil {
		_ = storage.Close()
		return err
	}

	app, err := newApplication(cfg, log, storage, gateways)
	if err != nil {
		_ = storage.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
