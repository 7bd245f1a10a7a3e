package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/traylist/internal/shared"
	"github.com/desertthunder/traylist/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive dashboard over the live subscription.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/traylist-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	cs, err := r.contentStore(ctx)
	if err != nil {
		return err
	}
	defer cs.Unsubscribe()

	model := ui.NewModel(ctx, cs)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
