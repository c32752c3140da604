// Package gemini implements generation.Gateway on Google's Gemini API using
// the google.golang.org/genai client.
//
// Requests ask for JSON replies at the configured temperature with the
// harassment, hate speech, sexually explicit and dangerous content filters
// set to BLOCK_NONE. Transport failures and retryable statuses (429 and 5xx)
// are retried with exponential backoff and jitter; other statuses, safety
// blocks and empty replies are returned immediately.
package gemini
