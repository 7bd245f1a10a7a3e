// Package tasks implements the background drain of queued captures into
// the remote content store.
//
// The core abstraction is [Drainer], which flushes the pending-content
// queue as whole batches with at-least-once delivery. Drains are triggered
// by append signals, by process startup, and optionally by a recovery
// timer. Operations emit progress updates via channels for non-blocking
// status reporting to CLI/UI layers.
package tasks
