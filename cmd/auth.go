package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/spotlist/internal/server"
	"github.com/desertthunder/spotlist/internal/services"
	"github.com/desertthunder/spotlist/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const authTimeout = 2 * time.Minute

// Auth performs the OAuth2 authorization code flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user authorization, exchanges the code for tokens, and saves
// them to the config file.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(); err != nil {
		return err
	}

	authenticator, err := r.authenticator(r.config.Credentials.Spotify)
	if err != nil {
		return fmt.Errorf("failed to configure Spotify authorization: %w", err)
	}

	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = authTimeout
	}

	token, err := r.doOAuth(ctx, authenticator, timeout, !cmd.Bool("no-browser"))
	if err != nil {
		return err
	}

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	r.spotify, r.inspector = nil, nil

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", r.configPath)
	r.writePlain("You can now use: spotlist playlists list\n")
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, oauthSrv services.OAuthService, timeout time.Duration, browser bool) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := oauthSrv.GetAuthURL(state)
	oauthHandler := server.NewOAuthHandler(oauthSrv.GetOAuthConfig(), state)
	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	callback, err := server.Listen(addr, server.Mux(oauthHandler, server.RequestLogger(r.logger)))
	if err != nil {
		return nil, err
	}
	r.logger.Info("waiting for OAuth callback", "addr", callback.Addr())

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := callback.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	if browser {
		r.writePlain("→ Opening browser for Spotify authorization...\n")
	}
	if !browser || r.openBrowser(authURL) != nil {
		if browser {
			r.writePlainln("⚠ Could not open browser automatically.")
		}
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result server.OAuthResult
	select {
	case result = <-oauthHandler.Result():
	case <-timer.C:
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return result.Token, nil
}

// Me prints the profile of the authorized user.
func (r *Runner) Me(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.engine()
	if err != nil {
		return err
	}

	user, err := engine.CurrentUser(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}

	r.writePlainHeader(user.DisplayName)
	r.writePlain("ID: %s\n", user.ID)
	if user.Email != "" {
		r.writePlain("Email: %s\n", user.Email)
	}
	if user.Country != "" {
		r.writePlain("Country: %s\n", user.Country)
	}
	return nil
}
