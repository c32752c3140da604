// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx stdlib driver. Flashcards are persisted as JSONB
// documents carrying their "type" discriminator; decks and chat messages use
// plain columns. The schema is versioned with goose migrations embedded in the
// binary.
package postgres
