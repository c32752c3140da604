// Package task runs detached work outside the request that asked for it.
//
// Handlers emit events (internal/events); TaskFactoryEventHandler turns each
// event into a Task and submits it to a TaskRunner. The runner buffers tasks
// in a bounded TaskQueue and executes them on a WorkerPool with a context
// owned by the runner, so a task never holds request-scoped resources.
// Failures are logged and counted; tasks are not retried.
package task
