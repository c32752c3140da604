// Package store defines the repository contracts for decks, flashcards and
// chat history. Every read is owner-scoped: a deck that exists but belongs to
// someone else is reported exactly like a missing one.
//
// Implementations live under internal/platform (postgres and badgerdb).
package store
