package capture

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/traylist/internal/messaging"
	"github.com/desertthunder/traylist/internal/models"
	"github.com/desertthunder/traylist/internal/shared"
)

// QueueAppender is the handler's write-only view of the pending-content
// queue. Satisfied by [repositories.QueueRepository].
type QueueAppender interface {
	Append(entry models.QueueEntry) (int64, error)
}

// Handler is the content-side receiver for saveContent requests: it
// stamps each request into a queue entry, appends it durably, and only
// then acks and nudges the drainer.
type Handler struct {
	queue  QueueAppender
	bus    *messaging.Bus
	logger *log.Logger
	now    func() time.Time
}

// HandlerOpts configures a Handler.
type HandlerOpts struct {
	Queue  QueueAppender
	Bus    *messaging.Bus
	Logger *log.Logger
	Now    func() time.Time
}

// NewHandler creates a Handler from opts.
func NewHandler(opts HandlerOpts) *Handler {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handler{
		queue:  opts.Queue,
		bus:    opts.Bus,
		logger: opts.Logger,
		now:    opts.Now,
	}
}

// Register wires the handler onto the bus, replacing any earlier one.
func (h *Handler) Register() {
	h.bus.HandleSave(h.handleSave)
}

func (h *Handler) handleSave(ctx context.Context, msg messaging.SaveContent) messaging.SaveResult {
	if err := msg.Request.Validate(); err != nil {
		return messaging.Failure(err)
	}

	entry := models.NewQueueEntry(msg.Request, msg.UserID, h.now())
	seq, err := h.queue.Append(entry)
	if err != nil {
		h.logger.Error("failed to queue capture", "title", msg.Request.Title, "err", err)
		return messaging.Failure(err)
	}

	h.logger.Debug("capture queued", "seq", seq, "title", msg.Request.Title)

	// Success is acked only after the durable append. The sync signal is
	// best-effort; a stranded entry is recovered by the startup drain or
	// the recovery timer.
	h.bus.SignalSync()
	return messaging.SaveResult{Success: true}
}
