package main

import (
	"context"

	"github.com/desertthunder/traylist/internal/repositories"
	"github.com/desertthunder/traylist/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Drain flushes the pending queue to the remote store once.
func (r *Runner) Drain(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	drainer := tasks.NewDrainer(tasks.DrainerOpts{
		Queue:  repositories.NewQueueRepository(db),
		Store:  r.store,
		Logger: r.logger,
	})

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.SnapshotQueue:
				r.writePlain("⟳ %s\n", update.Message)
			case tasks.WriteItem:
				r.writePlain("   %s\n", update.Message)
			case tasks.ClearBatch:
				r.writePlain("⟳ %s\n", update.Message)
			}
		}
	}()

	result, err := drainer.Drain(ctx, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if result.Drained == 0 {
		r.writePlain("Nothing to sync\n")
		return nil
	}

	r.writePlain("✓ Synced %d item(s)\n", result.Drained)
	return nil
}
