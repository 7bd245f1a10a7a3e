package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/traylist/internal/messaging"
	"github.com/desertthunder/traylist/internal/models"
	"github.com/desertthunder/traylist/internal/services"
	"github.com/desertthunder/traylist/internal/shared"
)

// Queue is the drainer's view of the pending-content log. Satisfied by
// repositories.QueueRepository.
type Queue interface {
	Snapshot() ([]models.QueueEntry, error)
	Clear(maxSeq int64) error
}

// DrainResult summarizes one drain attempt.
type DrainResult struct {
	Drained int // Entries confirmed by the remote store and cleared
	Pending int // Entries left queued (snapshot was empty or drain failed)
}

// Drainer flushes the capture queue into the remote store.
//
// Policy is whole-batch, at-least-once: a failure anywhere in the batch
// leaves the queue untouched for the next trigger, and a fully confirmed
// batch is cleared atomically. Queue entries carry no idempotency key, so
// a batch that partially reached the remote before a failure can produce
// duplicate remote items on retry.
type Drainer struct {
	queue  Queue
	store  services.Store
	bus    *messaging.Bus
	logger *log.Logger

	// retryInterval drives the recovery timer for queues stranded by a
	// failed startup drain. Zero disables the timer.
	retryInterval time.Duration

	// mu serializes drains: a trigger arriving mid-drain waits and then
	// snapshots the post-drain queue, so back-to-back triggers can never
	// split or double-submit a batch.
	mu sync.Mutex
}

// DrainerOpts configures a Drainer.
type DrainerOpts struct {
	Queue         Queue
	Store         services.Store
	Bus           *messaging.Bus
	Logger        *log.Logger
	RetryInterval time.Duration
}

// NewDrainer creates a Drainer from opts.
func NewDrainer(opts DrainerOpts) *Drainer {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Drainer{
		queue:         opts.Queue,
		store:         opts.Store,
		bus:           opts.Bus,
		logger:        opts.Logger,
		retryInterval: opts.RetryInterval,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (d *Drainer) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Drain reads the queue snapshot taken at drain start and writes it to the
// remote store as one batch.
//
// On any mid-batch failure the queue is left exactly as it was; on full
// success the snapshot batch is cleared atomically. Entries appended while
// the drain is in flight are not part of the snapshot and remain queued.
func (d *Drainer) Drain(ctx context.Context, progress chan<- ProgressUpdate) (*DrainResult, error) {
	if d.store == nil {
		return nil, fmt.Errorf("%w: remote store not initialized", shared.ErrServiceUnavailable)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	entries, err := d.queue.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot: %v", shared.ErrDrainFailed, err)
	}

	if len(entries) == 0 {
		return &DrainResult{}, nil
	}

	d.sendProgress(progress, snapshotUpdate(len(entries)))

	for i, entry := range entries {
		d.sendProgress(progress, writeItemUpdate(i+1, len(entries), entry))

		item := models.ItemFromEntry(entry)
		if _, err := d.store.CreateItem(ctx, item); err != nil {
			// Whole-batch retry: leave the queue untouched.
			return &DrainResult{Pending: len(entries)},
				fmt.Errorf("%w: write %d/%d (%s): %v", shared.ErrDrainFailed, i+1, len(entries), entry.Request.Title, err)
		}
	}

	maxSeq := entries[len(entries)-1].Seq
	d.sendProgress(progress, clearBatchUpdate(len(entries)))

	if err := d.queue.Clear(maxSeq); err != nil {
		// The batch reached the remote but the local clear failed; the
		// next drain re-submits it (at-least-once).
		return &DrainResult{Pending: len(entries)},
			fmt.Errorf("%w: clear: %v", shared.ErrDrainFailed, err)
	}

	result := &DrainResult{Drained: len(entries)}
	d.sendProgress(progress, drainCompleteUpdate(result))
	return result, nil
}

// Run keeps the drainer resident: it drains once at startup, then on every
// append signal, and on the recovery timer when one is configured.
//
// Drain failures are logged and absorbed; the queue waits for its next
// trigger. No error here is fatal to the loop.
func (d *Drainer) Run(ctx context.Context) error {
	if d.bus == nil {
		return fmt.Errorf("%w: message bus not initialized", shared.ErrServiceUnavailable)
	}

	d.drainAndLog(ctx, "startup")

	var tick <-chan time.Time
	if d.retryInterval > 0 {
		ticker := time.NewTicker(d.retryInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.bus.SyncSignals():
			d.drainAndLog(ctx, "append signal")
		case <-tick:
			d.drainAndLog(ctx, "recovery timer")
		}
	}
}

func (d *Drainer) drainAndLog(ctx context.Context, trigger string) {
	result, err := d.Drain(ctx, nil)
	if err != nil {
		d.logger.Error("drain failed, queue left for next trigger", "trigger", trigger, "err", err)
		return
	}
	if result.Drained > 0 {
		d.logger.Info("queue drained", "trigger", trigger, "items", result.Drained)
	}
}
