package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/traylist/internal/capture"
	"github.com/desertthunder/traylist/internal/models"
	"github.com/desertthunder/traylist/internal/repositories"
	"github.com/desertthunder/traylist/internal/shared"
	"github.com/urfave/cli/v3"
)

// Capture saves a piece of content to the pending queue.
//
// The command plays both capture roles: the popup (prepare, gate,
// confirm) and the page-side handler (durable append plus sync signal).
func (r *Runner) Capture(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	queue := repositories.NewQueueRepository(db)
	tokens := repositories.NewTokenRepository(db)

	capture.NewHandler(capture.HandlerOpts{
		Queue:  queue,
		Bus:    r.bus,
		Logger: r.logger,
	}).Register()

	gate := capture.NewGate(capture.GateOpts{
		Tokens:  tokens,
		SiteURL: r.config.App.SiteURL,
		Logger:  r.logger,
	})

	if !gate.Refresh().SignedIn {
		r.writePlain("✗ Not signed in\n")
		r.writePlain("Opening %s so you can sign in, then try again\n", r.config.App.SiteURL)
		if err := gate.OpenSignIn(); err != nil {
			r.logger.Warn("could not open browser", "err", err)
		}
		return fmt.Errorf("%w: sign in and retry the capture", shared.ErrNotAuthenticated)
	}

	popup := capture.NewPopup(capture.PopupOpts{
		Gate:       gate,
		Bus:        r.bus,
		Logger:     r.logger,
		CloseDelay: r.closeDelay,
	})

	draft := popup.Prepare(capture.TabContext{
		Title: cmd.String("title"),
		URL:   cmd.String("url"),
	})
	if t := cmd.String("type"); t != "" {
		draft.Type = models.ContentType(t)
	}
	draft.Tags = splitTags(cmd.String("tags"))
	draft.Notes = cmd.String("notes")

	result, err := popup.Confirm(ctx, draft)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrInvalidInput, result.Err)
	}

	r.writePlain("✓ Saved '%s' to your tray\n", draft.Title)
	if pending, err := queue.Len(); err == nil {
		r.writePlain("%d item(s) pending sync\n", pending)
	}

	// Success feedback stays visible briefly, then the surface closes.
	time.Sleep(popup.CloseDelay())
	return nil
}

// splitTags parses a comma-separated tag list, preserving order and
// duplicates while dropping empty segments.
func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
