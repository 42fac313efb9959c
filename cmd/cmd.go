// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func idFlag(usage string) *cli.StringFlag {
	return &cli.StringFlag{Name: "id", Usage: usage, Required: true}
}

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
		&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output"},
	}
}

// authCommand runs the authorization code flow
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize spotlist with Spotify using OAuth2 and save the tokens",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long to wait for the browser callback",
				Value: authTimeout,
			},
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Print the authorization URL instead of opening a browser",
			},
		},
		Action: r.Auth,
	}
}

func meCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "me",
		Usage:  "Show the authorized Spotify user",
		Flags:  jsonFlags(),
		Action: r.Me,
	}
}

// playlistsCommand handles playlist inspection
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "List and inspect playlists",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List your playlists",
				Flags: append(jsonFlags(),
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Include followed playlists owned by other users",
					},
				),
				Action: r.PlaylistsList,
			},
			{
				Name:  "tracks",
				Usage: "List a playlist's tracks",
				Flags: append(jsonFlags(),
					idFlag("Playlist ID"),
					&cli.BoolFlag{Name: "csv", Usage: "Output CSV"},
				),
				Action: r.PlaylistsTracks,
			},
			{
				Name:   "artists",
				Usage:  "Resolve the distinct artists of a playlist",
				Flags:  append(jsonFlags(), idFlag("Playlist ID")),
				Action: r.PlaylistsArtists,
			},
			{
				Name:    "duplicates",
				Aliases: []string{"dupes"},
				Usage:   "Report tracks that appear more than once by artist and title",
				Flags: []cli.Flag{
					idFlag("Playlist ID"),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, json, csv, or markdown",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the report to a file instead of stdout",
					},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output"},
				},
				Action: r.PlaylistsDuplicates,
			},
		},
	}
}

func artistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "artists",
		Usage: "Inspect artists",
		Commands: []*cli.Command{
			{
				Name:   "albums",
				Usage:  "List an artist's albums",
				Flags:  append(jsonFlags(), idFlag("Artist ID")),
				Action: r.ArtistsAlbums,
			},
		},
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the Spotify Web API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Authenticated GET, prints the JSON response",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file when missing, initialize the database, and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// cacheCommand inspects persisted collections
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear collections cached in the database",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List cached collections",
				Flags:  jsonFlags(),
				Action: r.CacheList,
			},
			{
				Name:  "delete",
				Usage: "Remove one cached collection",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "identity"},
				},
				Action: r.CacheDelete,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached collection",
				Action: r.CacheClear,
			},
		},
	}
}
