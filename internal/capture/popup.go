package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/traylist/internal/messaging"
	"github.com/desertthunder/traylist/internal/models"
	"github.com/desertthunder/traylist/internal/shared"
)

// DefaultCloseDelay is how long success feedback stays visible before the
// capture surface closes itself.
const DefaultCloseDelay = 2 * time.Second

// TabContext describes the page the capture was invoked from.
type TabContext struct {
	Title string
	URL   string
}

// Popup composes and submits capture requests on behalf of the signed-in
// user.
type Popup struct {
	gate       *Gate
	bus        *messaging.Bus
	logger     *log.Logger
	closeDelay time.Duration
	now        func() time.Time
}

// PopupOpts configures a Popup.
type PopupOpts struct {
	Gate       *Gate
	Bus        *messaging.Bus
	Logger     *log.Logger
	CloseDelay time.Duration
	Now        func() time.Time
}

// NewPopup creates a Popup from opts.
func NewPopup(opts PopupOpts) *Popup {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.CloseDelay <= 0 {
		opts.CloseDelay = DefaultCloseDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Popup{
		gate:       opts.Gate,
		bus:        opts.Bus,
		logger:     opts.Logger,
		closeDelay: opts.CloseDelay,
		now:        opts.Now,
	}
}

// Prepare pre-populates a draft request from the invoking tab: title from
// the page title, type guessed from the URL. Everything stays editable
// until [Popup.Confirm].
func (p *Popup) Prepare(tab TabContext) models.CaptureRequest {
	return models.CaptureRequest{
		Title:     tab.Title,
		Type:      models.DetectContentType(tab.URL),
		SourceURL: tab.URL,
		CreatedAt: p.now(),
	}
}

// Confirm validates req and submits it over the bus.
//
// The gate re-reads the token slot first, so a sign-out that happened
// after the popup opened blocks the capture. The returned SaveResult is
// the handler's explicit answer; an error return means the request never
// reached a handler.
func (p *Popup) Confirm(ctx context.Context, req models.CaptureRequest) (messaging.SaveResult, error) {
	state := p.gate.Refresh()
	if !state.SignedIn {
		return messaging.SaveResult{}, shared.ErrNotAuthenticated
	}

	if err := req.Validate(); err != nil {
		return messaging.SaveResult{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	if req.Type == "" {
		req.Type = models.DetectContentType(req.SourceURL)
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = p.now()
	}

	result, err := p.bus.Save(ctx, messaging.SaveContent{
		Request: req,
		UserID:  state.Token.SubjectID,
	})
	if err != nil {
		return messaging.SaveResult{}, err
	}

	return result, nil
}

// CloseDelay is how long the caller should show success feedback before
// closing the surface.
func (p *Popup) CloseDelay() time.Duration {
	return p.closeDelay
}
