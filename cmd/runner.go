package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlist/internal/catalog"
	"github.com/desertthunder/spotlist/internal/formatter"
	"github.com/desertthunder/spotlist/internal/repositories"
	"github.com/desertthunder/spotlist/internal/services"
	"github.com/desertthunder/spotlist/internal/shared"
	"github.com/desertthunder/spotlist/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The Spotify client, the inspector, and the database are built on first use so that commands like
// `setup database` work without credentials.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	openBrowser   func(url string) error
	authenticator func(shared.SpotifyConfig) (services.OAuthService, error)

	spotify   *services.SpotifyService
	inspector tasks.Engine
	db        *sql.DB
	repo      *repositories.CollectionRepository
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config // nil loads ConfigPath in [Runner.Before]
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		openBrowser: shared.OpenBrowser,
		authenticator: func(cfg shared.SpotifyConfig) (services.OAuthService, error) {
			return services.NewSpotifyAuthenticator(cfg)
		},
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		authCommand, meCommand, playlistsCommand, artistsCommand, apiCommand, setupCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration named by --config, applies environment overrides, and sets the log level.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}
	if err := r.loadConfig(); err != nil {
		return ctx, err
	}

	level := r.config.Logging.Level
	if l := cmd.String("log-level"); l != "" {
		level = l
	}
	if err := shared.SetLogLevel(r.logger, level); err != nil {
		return ctx, err
	}
	return ctx, nil
}

// loadConfig reads r.configPath when no config was injected. A missing file falls back to defaults.
func (r *Runner) loadConfig() error {
	if r.config == nil {
		if r.configPath == "" {
			r.configPath = "config.toml"
		}

		config, err := shared.LoadConfig(r.configPath)
		switch {
		case errors.Is(err, shared.ErrMissingConfig):
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
			config = shared.DefaultConfig()
		case err != nil:
			return err
		}
		r.config = config
	}

	if err := shared.ApplyEnv(r.config); err != nil {
		return err
	}
	return r.config.Validate()
}

// spotifyService builds the authenticated Spotify client from the loaded credentials.
func (r *Runner) spotifyService() (*services.SpotifyService, error) {
	if r.spotify != nil {
		return r.spotify, nil
	}
	if err := r.loadConfig(); err != nil {
		return nil, err
	}

	svc, err := services.NewSpotifyService(services.SpotifyOpts{
		BaseURL:     r.config.API.BaseURL,
		AccessToken: r.config.Credentials.Spotify.AccessToken,
		HTTPClient:  r.httpClient,
		Timeout:     r.config.API.Timeout(),
		Logger:      shared.WithLogger(r.logger, "service", "spotify"),
	})
	if err != nil {
		return nil, err
	}
	r.spotify = svc
	return svc, nil
}

// engine builds the inspector and its collection cache.
func (r *Runner) engine() (tasks.Engine, error) {
	if r.inspector != nil {
		return r.inspector, nil
	}

	svc, err := r.spotifyService()
	if err != nil {
		return nil, err
	}
	cache, err := r.collectionCache()
	if err != nil {
		return nil, err
	}

	r.inspector = tasks.NewInspector(tasks.InspectorOpts{
		Transport:      svc,
		Cache:          cache,
		PrefetchAlbums: r.config.Cache.PrefetchAlbums,
		PageSize:       r.config.API.PageSize,
		Logger:         r.logger,
	})
	return r.inspector, nil
}

// collectionCache returns a memory cache, or a memory cache in front of the database for the sqlite backend.
func (r *Runner) collectionCache() (catalog.CollectionCache, error) {
	memory := catalog.NewMemoryCache(r.config.Cache.TTL())
	if r.config.Cache.Backend != "sqlite" {
		return memory, nil
	}

	repo, err := r.repository()
	if err != nil {
		return nil, err
	}
	return catalog.NewTieredCache(memory, repo, shared.WithLogger(r.logger, "component", "cache")), nil
}

// repository opens the configured database and runs pending migrations.
func (r *Runner) repository() (*repositories.CollectionRepository, error) {
	if r.repo != nil {
		return r.repo, nil
	}
	if err := r.loadConfig(); err != nil {
		return nil, err
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	r.db = db
	r.repo = repositories.NewCollectionRepository(db, r.config.Cache.TTL(), shared.WithLogger(r.logger, "component", "repository"))
	return r.repo, nil
}

// Close releases the database handle, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db, r.repo = nil, nil
	return err
}

// trackProgress returns a progress channel whose updates are logged, and a function that drains and closes it.
func (r *Runner) trackProgress() (chan<- tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for u := range progress {
			r.logger.Info(u.Message, "phase", u.Phase, "step", u.Step, "total", u.Total)
		}
	}()

	return progress, func() {
		close(progress)
		<-done
	}
}

// hint suggests a follow-up command for errors the user can fix.
func hint(err error) string {
	switch {
	case errors.Is(err, shared.ErrAuthFailed):
		return "run `spotlist auth` to authorize spotlist with Spotify"
	case errors.Is(err, shared.ErrMissingCredentials):
		return "set client_id and client_secret under [credentials.spotify] in config.toml"
	default:
		return ""
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// writeReport writes data to path when one is given, and to the output otherwise.
func (r *Runner) writeReport(data []byte, path string) error {
	if path == "" {
		return r.writeBytes(data)
	}
	if err := formatter.WriteFile(path, data); err != nil {
		return err
	}
	r.logger.Info("report written", "path", path, "bytes", len(data))
	return r.writePlain("✓ Report written to %s\n", path)
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

