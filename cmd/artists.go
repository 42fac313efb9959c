package main

import (
	"context"

	"github.com/desertthunder/spotlist/internal/formatter"
	"github.com/desertthunder/spotlist/internal/models"
	"github.com/urfave/cli/v3"
)

// ArtistsAlbums prints an artist's albums, loading them on first use.
func (r *Runner) ArtistsAlbums(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.engine()
	if err != nil {
		return err
	}

	id := cmd.String("id")
	progress, wait := r.trackProgress()
	artist, albums, err := engine.ArtistAlbums(ctx, id, progress)
	wait()
	if err != nil {
		return err
	}

	if state, ok := engine.AlbumState(id); ok {
		r.logger.Debug("album state", "artist", id, "state", state)
	}

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			Artist *models.Artist  `json:"artist"`
			Albums []models.Album `json:"albums"`
		}{artist, albums}, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.AlbumsToText(*artist, albums))
}
