// Package models defines the data model for the content capture pipeline.
//
// The model follows one hard invariant: a [ContentItem]'s Status is a pure
// function of its Progress ([StatusForProgress]) and is never written
// independently of it. Every mutation path that touches Progress recomputes
// Status from the same value.
//
// [CaptureRequest] values are immutable once queued; [QueueEntry] wraps a
// request with its enqueue-time stamps and is only ever appended to or
// cleared from the local queue as a whole batch.
package models
