// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles database and configuration initialization.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and the shared storage area",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles authentication operations.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the mirrored sign-in state",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show the identity currently mirrored into shared storage",
				Action: r.AuthStatus,
			},
			{
				Name:   "sync",
				Usage:  "Force a re-check of the host sign-in state",
				Action: r.AuthSync,
			},
			{
				Name:   "login",
				Usage:  "Sign in via the host application and mirror the identity locally",
				Action: r.AuthLogin,
			},
		},
	}
}

// captureCommand saves a piece of content to the pending queue.
func captureCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "capture",
		Usage: "Save content to your tray",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "title",
				Aliases:  []string{"t"},
				Usage:    "Content title",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "url",
				Aliases: []string{"u"},
				Usage:   "Source URL",
			},
			&cli.StringFlag{
				Name:  "type",
				Usage: "Content type (article, video, book, show); guessed from the URL when omitted",
			},
			&cli.StringFlag{
				Name:  "tags",
				Usage: "Comma-separated tags",
			},
			&cli.StringFlag{
				Name:    "notes",
				Aliases: []string{"n"},
				Usage:   "Freeform notes",
			},
		},
		Action: r.Capture,
	}
}

// drainCommand flushes the pending queue once.
func drainCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "drain",
		Usage:  "Sync pending captures to the remote store",
		Action: r.Drain,
	}
}

// daemonCommand keeps the bridge, capture handler, and drainer resident.
func daemonCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "daemon",
		Usage:  "Run the auth bridge and background drainer until interrupted",
		Action: r.Daemon,
	}
}

// listCommand prints the signed-in user's content list.
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List tracked content",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "tab",
				Usage: "Filter by type or status (article, video, book, show, in-progress, completed)",
				Value: "all",
			},
			&cli.StringFlag{
				Name:  "search",
				Usage: "Filter by title or tag substring",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
			&cli.StringFlag{
				Name:  "export",
				Usage: "Write the list to {export}.csv instead of printing",
			},
			&cli.BoolFlag{
				Name:  "markdown",
				Usage: "Render as a Markdown checklist",
			},
		},
		Action: r.ContentList,
	}
}

// addCommand creates an item directly in the remote store.
func addCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add an item directly to your tray",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "title",
				Aliases:  []string{"t"},
				Usage:    "Content title",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "type",
				Usage: "Content type (article, video, book, show)",
			},
			&cli.StringFlag{
				Name:    "url",
				Aliases: []string{"u"},
				Usage:   "Source URL",
			},
			&cli.StringFlag{
				Name:  "tags",
				Usage: "Comma-separated tags",
			},
			&cli.StringFlag{
				Name:    "notes",
				Aliases: []string{"n"},
				Usage:   "Freeform notes",
			},
			&cli.IntFlag{
				Name:  "progress",
				Usage: "Initial progress percentage",
			},
		},
		Action: r.ContentAdd,
	}
}

// updateCommand merges field changes into an existing item.
func updateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "Update a tracked item",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "progress",
				Usage: "New progress percentage (status follows automatically)",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "New title",
			},
			&cli.StringFlag{
				Name:  "notes",
				Usage: "New notes",
			},
		},
		Action: r.ContentUpdate,
	}
}

// removeCommand deletes an item from the remote store.
func removeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "remove",
		Aliases: []string{"rm"},
		Usage:   "Remove a tracked item",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
		},
		Action: r.ContentRemove,
	}
}

// tuiCommand returns the top-level TUI command for the interactive dashboard.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive dashboard",
		Action:  r.TUI,
	}
}
