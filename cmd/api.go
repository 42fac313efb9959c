package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/spotlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct authenticated GET to the Spotify Web API and prints the JSON response.
//
// The path is relative to the configured base URL ("/me/playlists?limit=5") or an absolute API URL.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := strings.TrimSpace(cmd.StringArg("path"))
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	svc, err := r.spotifyService()
	if err != nil {
		return err
	}

	r.logger.Info("GET request", "path", path)

	body, err := svc.Raw(ctx, path)
	if err != nil {
		return err
	}
	return r.writeJSON(body, cmd.Bool("pretty"))
}
