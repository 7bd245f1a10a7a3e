// Package messaging carries typed messages between the pipeline's isolated
// contexts: the capture popup, the page-embedded capture handler, the
// background drainer, and the auth bridge.
//
// Two message shapes exist: request/response (saveContent, which always
// returns an explicit success/failure result rather than propagating a
// raised error across the boundary) and fire-and-forget signals
// (syncContent, authSync). Signals coalesce: posting to a context that has
// an undelivered signal pending is a no-op, mirroring the one-shot message
// semantics between browser extension contexts.
package messaging

import (
	"context"
	"sync"

	"github.com/desertthunder/traylist/internal/models"
	"github.com/desertthunder/traylist/internal/shared"
)

// SaveContent asks the capture handler to durably queue a capture request
// on behalf of the given subject.
type SaveContent struct {
	Request models.CaptureRequest
	UserID  string
}

// SaveResult is the explicit outcome of a SaveContent request. Err is a
// display string, not a wrapped error; errors do not cross the context
// boundary as values.
type SaveResult struct {
	Success bool
	Err     string
}

// Failure builds a failed SaveResult from err.
func Failure(err error) SaveResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return SaveResult{Success: false, Err: msg}
}

// SaveHandler processes a SaveContent request in the capture handler
// context.
type SaveHandler func(ctx context.Context, msg SaveContent) SaveResult

// Bus connects the pipeline contexts. The zero value is not usable; use
// [NewBus].
type Bus struct {
	mu          sync.RWMutex
	saveHandler SaveHandler
	syncCh      chan struct{}
	authCh      chan struct{}
}

// NewBus creates a Bus with signal channels ready for subscribers.
func NewBus() *Bus {
	return &Bus{
		syncCh: make(chan struct{}, 1),
		authCh: make(chan struct{}, 1),
	}
}

// HandleSave registers the capture handler. Only one handler is active at
// a time; a later registration replaces the earlier one.
func (b *Bus) HandleSave(h SaveHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saveHandler = h
}

// Save delivers a SaveContent request and waits for its result.
//
// When no handler is registered (the tab has no content context), Save
// returns [shared.ErrHandlerUnreachable]; the popup surfaces this as a
// generic retryable failure.
func (b *Bus) Save(ctx context.Context, msg SaveContent) (SaveResult, error) {
	b.mu.RLock()
	h := b.saveHandler
	b.mu.RUnlock()

	if h == nil {
		return SaveResult{}, shared.ErrHandlerUnreachable
	}

	if err := ctx.Err(); err != nil {
		return SaveResult{}, err
	}

	return h(ctx, msg), nil
}

// SignalSync posts the fire-and-forget syncContent trigger. Never blocks.
func (b *Bus) SignalSync() {
	select {
	case b.syncCh <- struct{}{}:
	default:
	}
}

// SyncSignals returns the channel the drainer listens on.
func (b *Bus) SyncSignals() <-chan struct{} {
	return b.syncCh
}

// SignalAuthSync posts the authSync trigger forcing the bridge to re-check
// the host auth state. Never blocks.
func (b *Bus) SignalAuthSync() {
	select {
	case b.authCh <- struct{}{}:
	default:
	}
}

// AuthSyncSignals returns the channel the auth bridge listens on.
func (b *Bus) AuthSyncSignals() <-chan struct{} {
	return b.authCh
}
