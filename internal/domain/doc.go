// Package domain contains the study entities of the application: decks, the
// four flashcard variants and their JSON encoding, chat messages, answer
// verdicts, and the error taxonomy shared by every layer.
package domain
