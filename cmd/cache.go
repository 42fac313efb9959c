package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/spotlist/internal/shared"

	"github.com/urfave/cli/v3"
)

// CacheList prints the collections persisted by the sqlite cache backend.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.repository()
	if err != nil {
		return err
	}

	snapshots, err := repo.List()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(snapshots, cmd.Bool("pretty"))
	}

	if len(snapshots) == 0 {
		return r.writePlain("No cached collections\n")
	}

	r.writePlain("Cached collections: %d\n\n", len(snapshots))
	for _, s := range snapshots {
		status := ""
		if repo.Expired(s) {
			status = " (expired)"
		}
		r.writePlain("%s  %d items  %s%s\n", s.Identity, s.ItemCount, s.CreatedAt.Local().Format(time.DateTime), status)
	}
	return nil
}

// CacheClear removes every persisted collection.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.repository()
	if err != nil {
		return err
	}

	n, err := repo.Clear()
	if err != nil {
		return err
	}

	r.logger.Info("cache cleared", "collections", n)
	return r.writePlain("✓ Removed %d cached collections\n", n)
}

// CacheDelete removes one persisted collection by identity, as printed by `cache list`.
func (r *Runner) CacheDelete(ctx context.Context, cmd *cli.Command) error {
	identity := strings.TrimSpace(cmd.StringArg("identity"))
	if identity == "" {
		return fmt.Errorf("%w: identity", shared.ErrMissingArgument)
	}

	repo, err := r.repository()
	if err != nil {
		return err
	}
	if err := repo.Delete(identity); err != nil {
		return err
	}
	return r.writePlain("✓ Removed %s\n", identity)
}
