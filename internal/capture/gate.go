// Package capture implements the capture surface: the popup-side flow
// that prepares and confirms a save, and the content-side handler that
// durably queues it.
//
// The popup never writes the queue itself; confirmation crosses the
// [messaging.Bus] to the handler, and the popup only reports the explicit
// result it gets back.
package capture

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/traylist/internal/models"
	"github.com/desertthunder/traylist/internal/shared"
)

// TokenReader is the gate's read-only view of the stored identity.
// Satisfied by [repositories.TokenRepository].
type TokenReader interface {
	Get() (*models.IdentityToken, error)
}

// State is the gate's answer at one point in time. It goes stale the
// moment auth changes elsewhere; call [Gate.Refresh] to re-check.
type State struct {
	SignedIn bool
	Token    *models.IdentityToken
}

// Gate decides whether the capture surface is usable by reading the
// shared token slot.
//
// There is no polling: the gate reads once per Refresh, and a signed-out
// answer stands until the user explicitly refreshes.
type Gate struct {
	tokens  TokenReader
	siteURL string
	logger  *log.Logger
}

// GateOpts configures a Gate.
type GateOpts struct {
	Tokens  TokenReader
	SiteURL string
	Logger  *log.Logger
}

// NewGate creates a Gate from opts.
func NewGate(opts GateOpts) *Gate {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Gate{
		tokens:  opts.Tokens,
		siteURL: opts.SiteURL,
		logger:  opts.Logger,
	}
}

// Refresh re-reads the token slot and reports the current auth state.
//
// An empty or malformed slot is a normal signed-out state, not an error;
// read failures beyond that are logged and also reported as signed-out.
func (g *Gate) Refresh() State {
	tok, err := g.tokens.Get()
	if err != nil {
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			g.logger.Warn("failed to read stored token", "err", err)
		}
		return State{}
	}
	return State{SignedIn: true, Token: tok}
}

var openBrowser = shared.OpenBrowser

// OpenSignIn routes a signed-out user to the host sign-in surface.
func (g *Gate) OpenSignIn() error {
	return openBrowser(g.siteURL)
}
