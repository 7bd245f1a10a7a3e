package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/traylist/internal/bridge"
	"github.com/desertthunder/traylist/internal/capture"
	"github.com/desertthunder/traylist/internal/repositories"
	"github.com/desertthunder/traylist/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Daemon keeps the capture pipeline resident: the page-side capture
// handler, the background drainer, and the auth bridge run until the
// process is interrupted.
func (r *Runner) Daemon(ctx context.Context, cmd *cli.Command) error {
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

	drainer := tasks.NewDrainer(tasks.DrainerOpts{
		Queue:         queue,
		Store:         r.store,
		Bus:           r.bus,
		Logger:        r.logger,
		RetryInterval: time.Duration(r.config.Drain.RetryInterval) * time.Second,
	})

	// The stored identity, when present, seeds the bridge so a restart
	// re-validates and re-mirrors it without a fresh sign-in.
	source := bridge.NewChannelSource()
	resolver := bridge.NewStaticResolver("")
	stored, err := tokens.Get()
	if err == nil {
		resolver = bridge.NewStaticResolver(stored.AccessToken)
	}

	b := bridge.New(bridge.Opts{
		Provider: func() (bridge.Source, error) { return source, nil },
		Resolver: resolver,
		Tokens:   tokens,
		Bus:      r.bus,
		Logger:   r.logger,
	})

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go b.Run(runCtx)
	go drainer.Run(runCtx)

	if stored != nil {
		source.Emit(bridge.Event{
			SignedIn:    true,
			SubjectID:   stored.SubjectID,
			Email:       stored.Email,
			DisplayName: stored.DisplayName,
		})
	}

	r.logger.Info("daemon running", "retry_interval", r.config.Drain.RetryInterval)
	r.writePlain("Daemon running. Press Ctrl+C to stop.\n")

	<-runCtx.Done()
	r.logger.Info("daemon shutting down")
	return nil
}
