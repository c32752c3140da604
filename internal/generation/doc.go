// Package generation is the boundary between the study services and the
// generative language services they depend on.
//
// A Gateway sends one prompt and returns the raw text of the reply. The
// package also owns the prompt templates for flashcard generation, answer
// grading, review scheduling and chat, the shared retry policy used by the
// gateway adapters, and the helpers that decode model replies into domain
// values. Provider adapters live under internal/platform.
package generation
