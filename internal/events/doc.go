// Package events decouples the request path from background work.
//
// Services emit a TaskRequestEvent describing detached work (review
// scheduling, chat replies) without knowing who performs it. The task
// package registers a handler that turns each event into a task and submits
// it to the runner.
package events
