// Package service contains the study use cases. Services orchestrate the
// store contracts of internal/store, the generative gateway of
// internal/generation and the event emitter of internal/events; they never
// depend on a concrete backend.
//
// Synchronous operations (deck management, copying, flashcard generation,
// answer grading, chat history) return their result to the caller. Review
// scheduling and chat replies are split in two: a Request/Submit method that
// performs the synchronous checks and emits an event, and a method the
// background task calls to do the work.
//
// Errors are wrapped in ServiceError. The wrapped chain always reaches one of
// the sentinels in internal/domain, internal/store or internal/generation so
// the API layer can map it with errors.Is.
package service
