package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/traylist/internal/formatter"
	"github.com/desertthunder/traylist/internal/models"
	"github.com/desertthunder/traylist/internal/repositories"
	"github.com/desertthunder/traylist/internal/shared"
	"github.com/desertthunder/traylist/internal/store"
	"github.com/urfave/cli/v3"
)

// identity reads the mirrored token, failing when no one is signed in.
func (r *Runner) identity() (*models.IdentityToken, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}

	tok, err := repositories.NewTokenRepository(db).Get()
	if err != nil {
		return nil, fmt.Errorf("%w: run 'traylist auth login' first", shared.ErrNotAuthenticated)
	}
	return tok, nil
}

// contentStore builds a ContentStore subscribed for the signed-in user.
func (r *Runner) contentStore(ctx context.Context) (*store.ContentStore, error) {
	tok, err := r.identity()
	if err != nil {
		return nil, err
	}

	cs := store.NewContentStore(store.Opts{Service: r.store, Logger: r.logger})
	if err := cs.Subscribe(ctx, tok.SubjectID); err != nil {
		return nil, err
	}
	return cs, nil
}

// ContentList prints the signed-in user's content list.
func (r *Runner) ContentList(ctx context.Context, cmd *cli.Command) error {
	tok, err := r.identity()
	if err != nil {
		return err
	}

	items, err := r.store.ListItems(ctx, tok.SubjectID)
	if err != nil {
		return err
	}

	items = store.FilterTab(items, cmd.String("tab"))
	items = store.Search(items, cmd.String("search"))

	switch {
	case cmd.String("export") != "":
		outFile, err := formatter.WriteCSVExport(items, cmd.String("export"))
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported %d item(s) to %s\n", len(items), outFile)

	case cmd.Bool("json"):
		return r.writeJSON(items, cmd.Bool("pretty"))

	case cmd.Bool("markdown"):
		data, err := formatter.ExportToMarkdown(items, "Traylist")
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)

	default:
		stats := store.Count(items)
		r.writePlain("%s", formatter.RenderTable(items))
		return r.writePlainln("%d item(s) • %d todo • %d in progress • %d completed",
			stats.Total, stats.Todo, stats.InProgress, stats.Completed)
	}
}

// ContentAdd creates an item directly in the remote store.
func (r *Runner) ContentAdd(ctx context.Context, cmd *cli.Command) error {
	cs, err := r.contentStore(ctx)
	if err != nil {
		return err
	}
	defer cs.Unsubscribe()

	created, err := cs.Add(ctx, models.ContentItem{
		Title:    cmd.String("title"),
		Type:     models.ContentType(cmd.String("type")),
		URL:      cmd.String("url"),
		Tags:     splitTags(cmd.String("tags")),
		Notes:    cmd.String("notes"),
		Progress: int(cmd.Int("progress")),
	})
	if err != nil {
		return err
	}

	return r.writePlain("✓ Added '%s' (%s)\n", created.Title, created.ID)
}

// ContentUpdate merges field changes into an existing item. A progress
// change carries the derived status with it.
func (r *Runner) ContentUpdate(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: item id", shared.ErrMissingArgument)
	}

	fields := map[string]any{}
	if cmd.IsSet("progress") {
		fields["progress"] = int(cmd.Int("progress"))
	}
	if cmd.IsSet("title") {
		fields["title"] = cmd.String("title")
	}
	if cmd.IsSet("notes") {
		fields["notes"] = cmd.String("notes")
	}
	if len(fields) == 0 {
		return fmt.Errorf("%w: nothing to update", shared.ErrMissingArgument)
	}

	cs := store.NewContentStore(store.Opts{Service: r.store, Logger: r.logger})
	if err := cs.Update(ctx, id, fields); err != nil {
		return err
	}

	return r.writePlain("✓ Updated %s\n", id)
}

// ContentRemove deletes an item after confirmation.
func (r *Runner) ContentRemove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: item id", shared.ErrMissingArgument)
	}

	if !cmd.Bool("yes") {
		r.writePlain("Remove %s? This cannot be undone. [y/N] ", id)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			return r.writePlain("Aborted\n")
		}
	}

	cs := store.NewContentStore(store.Opts{Service: r.store, Logger: r.logger})
	if err := cs.Remove(ctx, id); err != nil {
		return err
	}

	return r.writePlain("✓ Removed %s\n", id)
}
