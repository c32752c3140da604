package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/phrazzld/deckmind/internal/config"
	"github.com/phrazzld/deckmind/internal/platform/badgerdb"
	"github.com/phrazzld/deckmind/internal/platform/postgres"
	"github.com/phrazzld/deckmind/internal/store"
)

// storage bundles the repositories of the configured backend with the
// function that releases it.
type storage struct {
	decks store.DeckStore
	cards store.FlashcardStore
	chats store.ChatStore

	closers []func() error
}

// Close releases the backend in reverse order of acquisition.
func (s *storage) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// openStorage connects to the configured database driver and builds its
// repositories.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := setupAppDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(ctx, db, postgres.MigrateUp, logger); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &storage{
			decks:   postgres.NewPostgresDeckStore(db, logger),
			cards:   postgres.NewPostgresFlashcardStore(db, logger),
			chats:   postgres.NewPostgresChatStore(db, logger),
			closers: []func() error{db.Close},
		}, nil

	case config.DriverBadger:
		return openBadgerStorage(cfg.Database, logger)

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func openBadgerStorage(cfg config.DatabaseConfig, logger *slog.Logger) (*storage, error) {
	bcfg := badgerdb.DefaultConfig(cfg.BadgerPath)
	if cfg.BadgerInMemory {
		bcfg = badgerdb.InMemoryConfig()
	}
	bcfg.Logger = logger

	db, err := badgerdb.Open(bcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	chats, err := badgerdb.NewBadgerChatStore(db.DB, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create chat store: %w", err)
	}

	logger.Info("badger database opened",
		slog.Bool("in_memory", cfg.BadgerInMemory))
	return &storage{
		decks:   badgerdb.NewBadgerDeckStore(db.DB, logger),
		cards:   badgerdb.NewBadgerFlashcardStore(db.DB, logger),
		chats:   chats,
		closers: []func() error{db.Close, chats.Close},
	}, nil
}

// setupAppDatabase establishes a connection to the database and configures connection pools.
// Returns the database connection if successful, or an error if the connection fails.
func setupAppDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established")
	return db, nil
}
