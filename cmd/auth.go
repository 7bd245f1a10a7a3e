package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/traylist/internal/bridge"
	"github.com/desertthunder/traylist/internal/repositories"
	"github.com/desertthunder/traylist/internal/server"
	"github.com/desertthunder/traylist/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthStatus shows the identity currently mirrored into shared storage.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	tok, err := repositories.NewTokenRepository(db).Get()
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			r.writePlain("✗ Not signed in\n")
			r.writePlain("Run 'traylist auth login' to connect your account\n")
			return nil
		}
		return err
	}

	r.writePlain("✓ Signed in\n")
	r.writePlain("Subject: %s\n", tok.SubjectID)
	if tok.Email != "" {
		r.writePlain("Email: %s\n", tok.Email)
	}
	if tok.DisplayName != "" {
		r.writePlain("Name: %s\n", tok.DisplayName)
	}
	r.writePlain("Captured: %s\n", tok.CapturedAt.Format(time.RFC3339))
	return nil
}

// AuthSync posts the forced re-check signal and reports the stored state.
//
// A resident daemon consumes the signal and reprocesses the last auth
// transition; this command then reflects whatever the slot holds.
func (r *Runner) AuthSync(ctx context.Context, cmd *cli.Command) error {
	r.bus.SignalAuthSync()
	r.logger.Info("auth re-check requested")
	return r.AuthStatus(ctx, cmd)
}

// AuthLogin completes a host sign-in via a local callback server and
// mirrors the resulting identity through the auth bridge.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.config.Auth.ClientID == "" {
		return fmt.Errorf("%w: auth.client_id not configured", shared.ErrMissingConfig)
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	tokens := repositories.NewTokenRepository(db)

	oauthConfig := &oauth2.Config{
		ClientID:     r.config.Auth.ClientID,
		ClientSecret: r.config.Auth.ClientSecret,
		RedirectURL:  r.config.Auth.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:  r.config.App.SiteURL + "/oauth/authorize",
			TokenURL: r.config.App.SiteURL + "/oauth/token",
		},
	}

	state := shared.GenerateID()
	handler := server.NewSignInHandler(oauthConfig, state)

	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(handler)

	serverCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	go func() {
		if err := server.Listen(serverCtx, addr, router); err != nil {
			r.logger.Error("callback server failed", "err", err)
		}
	}()

	authURL := oauthConfig.AuthCodeURL(state)
	r.writePlain("Opening your browser to sign in...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("could not open browser", "err", err)
		r.writePlain("Visit this URL to sign in:\n%s\n", authURL)
	}

	var result server.SignInResult
	select {
	case <-ctx.Done():
		return ctx.Err()
	case result = <-handler.Result():
	}

	if err := result.Error(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	// The bridge is the token slot's only writer; feed it the sign-in
	// event rather than writing the slot here.
	source := bridge.NewChannelSource()
	b := bridge.New(bridge.Opts{
		Provider: func() (bridge.Source, error) { return source, nil },
		Resolver: bridge.NewOAuthResolver(oauthConfig, result.Token),
		Tokens:   tokens,
		Bus:      r.bus,
		Logger:   r.logger,
	})

	bridgeCtx, stopBridge := context.WithCancel(ctx)
	defer stopBridge()
	go b.Run(bridgeCtx)

	source.Emit(result.Event)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if tok, err := tokens.Get(); err == nil && tok.SubjectID == result.Event.SubjectID {
			r.writePlain("✓ Signed in as %s\n", tok.Email)
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}

	return fmt.Errorf("%w: identity was not mirrored to shared storage", shared.ErrAuthFailed)
}
