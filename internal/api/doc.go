// Package api exposes decks, flashcards, answer grading and the study chat
// over HTTP. Handlers resolve the caller from the request context, decode and
// validate JSON bodies, call the service layer and map its errors to status
// codes through MapErrorToStatusCode.
package api
