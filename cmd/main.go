package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/desertthunder/spotlist/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnv(); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	runner := NewRunner(RunnerOpts{Logger: logger})
	app := newApp(runner)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := app.Run(ctx, os.Args)
	stop()
	runner.Close()

	if err != nil {
		logger.Error(err)
		if msg := hint(err); msg != "" {
			logger.Info(msg)
		}
		os.Exit(1)
	}
}

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotlist",
		Usage:   "Inspect Spotify playlists, their artists, and duplicate tracks",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("SPOTLIST_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error); overrides [logging] level",
			},
		},
		Before:   r.Before,
		Commands: r.register(),
	}
}
