package main

import (
	"context"

	"github.com/desertthunder/spotlist/internal/formatter"
	"github.com/urfave/cli/v3"
)

// PlaylistsList lists the user's playlists. Only owned playlists are listed unless --all is set.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.engine()
	if err != nil {
		return err
	}

	progress, wait := r.trackProgress()
	playlists, err := engine.Playlists(ctx, !cmd.Bool("all"), progress)
	wait()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	return r.writeBytes(formatter.PlaylistsToText(playlists))
}

// PlaylistsTracks prints the tracks of one playlist in playlist order.
func (r *Runner) PlaylistsTracks(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.engine()
	if err != nil {
		return err
	}

	id := cmd.String("id")
	progress, wait := r.trackProgress()
	tracks, err := engine.PlaylistTracks(ctx, id, progress)
	wait()
	if err != nil {
		return err
	}

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	case cmd.Bool("csv"):
		data, err := formatter.TracksToCSV(tracks)
		if err != nil {
			return err
		}
		return r.writeBytes(data)
	}

	p, err := engine.Playlist(ctx, id)
	if err != nil {
		return err
	}
	return r.writeBytes(formatter.TracksToText(*p, tracks))
}

// PlaylistsArtists resolves and prints the distinct artists credited on a playlist.
func (r *Runner) PlaylistsArtists(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.engine()
	if err != nil {
		return err
	}

	progress, wait := r.trackProgress()
	artists, err := engine.PlaylistArtists(ctx, cmd.String("id"), progress)
	wait()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(artists, cmd.Bool("pretty"))
	}

	r.writePlain("Artists: %d\n\n", len(artists))
	return r.writeBytes(formatter.ArtistsToText(artists))
}

// PlaylistsDuplicates renders the duplicate report for a playlist to stdout or --output.
func (r *Runner) PlaylistsDuplicates(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	engine, err := r.engine()
	if err != nil {
		return err
	}

	id := cmd.String("id")
	progress, wait := r.trackProgress()
	groups, err := engine.Duplicates(ctx, id, progress)
	wait()
	if err != nil {
		return err
	}

	p, err := engine.Playlist(ctx, id)
	if err != nil {
		return err
	}

	data, err := formatter.RenderDuplicates(*p, groups, format, cmd.Bool("pretty"))
	if err != nil {
		return err
	}
	if format == formatter.JSON {
		data = append(data, '\n')
	}
	return r.writeReport(data, cmd.String("output"))
}
