// Package bridge mirrors the host application's authentication state into
// the shared storage area, pairing captures with an identity produced in a
// different context.
//
// The bridge observes a push-style stream of auth transitions. On each
// signed-in event it resolves a fresh access token (a network round trip)
// and overwrites the stored [models.IdentityToken]; on sign-out it deletes
// the slot. It is the only writer of the token key.
package bridge

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/traylist/internal/messaging"
	"github.com/desertthunder/traylist/internal/models"
	"github.com/desertthunder/traylist/internal/shared"
)

// Event is one transition of the host page's auth state. A zero SubjectID
// with SignedIn false is a sign-out.
type Event struct {
	SignedIn    bool
	SubjectID   string
	Email       string
	DisplayName string
}

// Source is the host application's push-style auth-state stream. Events may
// repeat; each one is processed independently.
type Source interface {
	Events() <-chan Event
}

// SourceProvider acquires the auth source. It returns
// [shared.ErrSourceNotReady] while the host auth primitive has not finished
// initializing; the bridge treats that as a startup race and retries on a
// fixed interval rather than failing.
type SourceProvider func() (Source, error)

// TokenResolver resolves a fresh access token for a subject. Resolution can
// suspend on the network and must not run on a UI path.
type TokenResolver interface {
	Resolve(ctx context.Context, subjectID string) (string, error)
}

// TokenStore is the writable view of the token slot. Satisfied by
// repositories.TokenRepository.
type TokenStore interface {
	Put(tok models.IdentityToken) error
	Delete() error
}

// Notifier surfaces the transient "connected" notification after the first
// successful sync.
type Notifier interface {
	Notify(message string)
}

// Opts configures a Bridge.
type Opts struct {
	Provider SourceProvider
	Resolver TokenResolver
	Tokens   TokenStore
	Bus      *messaging.Bus
	Notifier Notifier
	Logger   *log.Logger
	// RetryInterval is the fixed delay between source acquisition attempts.
	// Defaults to one second.
	RetryInterval time.Duration
	// Now is the clock used to stamp tokens; defaults to time.Now.
	Now func() time.Time
}

// Bridge runs the auth mirroring loop for one process lifetime.
type Bridge struct {
	provider      SourceProvider
	resolver      TokenResolver
	tokens        TokenStore
	bus           *messaging.Bus
	notifier      Notifier
	logger        *log.Logger
	retryInterval time.Duration
	now           func() time.Time

	lastEvent *Event
	synced    bool
}

// New creates a Bridge from opts, applying defaults.
func New(opts Opts) *Bridge {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Notifier == nil {
		opts.Notifier = logNotifier{opts.Logger}
	}

	return &Bridge{
		provider:      opts.Provider,
		resolver:      opts.Resolver,
		tokens:        opts.Tokens,
		bus:           opts.Bus,
		notifier:      opts.Notifier,
		logger:        opts.Logger,
		retryInterval: opts.RetryInterval,
		now:           opts.Now,
	}
}

// Run acquires the auth source and processes events until ctx is done.
//
// Acquisition retries indefinitely on [shared.ErrSourceNotReady]; any other
// provider error is fatal to the loop (the next natural trigger restarts
// it).
func (b *Bridge) Run(ctx context.Context) error {
	source, err := b.acquire(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-source.Events():
			if !ok {
				return nil
			}
			b.handle(ctx, ev)
		case <-b.bus.AuthSyncSignals():
			// Forced re-check: reprocess the last known state so other
			// contexts need not wait for a natural auth event.
			if b.lastEvent != nil {
				b.handle(ctx, *b.lastEvent)
			}
		}
	}
}

// acquire polls the provider until the source is ready or ctx is done.
func (b *Bridge) acquire(ctx context.Context) (Source, error) {
	ticker := time.NewTicker(b.retryInterval)
	defer ticker.Stop()

	for {
		source, err := b.provider()
		if err == nil {
			return source, nil
		}

		b.logger.Debug("auth source not ready, retrying", "interval", b.retryInterval, "err", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// handle applies one auth transition to the token slot.
func (b *Bridge) handle(ctx context.Context, ev Event) {
	b.lastEvent = &ev

	if !ev.SignedIn {
		if err := b.tokens.Delete(); err != nil {
			b.logger.Error("failed to clear token on sign-out", "err", err)
			return
		}
		b.logger.Info("auth cleared from shared storage")
		return
	}

	accessToken, err := b.resolver.Resolve(ctx, ev.SubjectID)
	if err != nil {
		// Transient resolve failure: keep the last-known-good token.
		b.logger.Error("token resolution failed, keeping previous token", "subject", ev.SubjectID, "err", err)
		return
	}

	tok := models.IdentityToken{
		SubjectID:   ev.SubjectID,
		Email:       ev.Email,
		DisplayName: ev.DisplayName,
		AccessToken: accessToken,
		CapturedAt:  b.now(),
	}

	if err := b.tokens.Put(tok); err != nil {
		b.logger.Error("failed to store token", "subject", ev.SubjectID, "err", err)
		return
	}

	b.logger.Info("auth synced to shared storage", "subject", ev.SubjectID, "email", ev.Email)

	if !b.synced {
		b.synced = true
		b.notifier.Notify("Extension connected! You can now save content.")
	}
}

// logNotifier is the default Notifier, logging the transient notification.
type logNotifier struct {
	logger *log.Logger
}

func (n logNotifier) Notify(message string) {
	n.logger.Info(message)
}

// ChannelSource is a Source fed by explicit Emit calls. The local sign-in
// callback server and tests use it to inject auth transitions.
type ChannelSource struct {
	ch chan Event
}

// NewChannelSource creates a ChannelSource with a small buffer so emitters
// never block on the bridge loop.
func NewChannelSource() *ChannelSource {
	return &ChannelSource{ch: make(chan Event, 4)}
}

func (s *ChannelSource) Events() <-chan Event {
	return s.ch
}

// Emit pushes an auth transition into the stream.
func (s *ChannelSource) Emit(ev Event) {
	s.ch <- ev
}

// Close ends the stream.
func (s *ChannelSource) Close() {
	close(s.ch)
}
