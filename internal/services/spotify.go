// Spotify Web API implementation of [Transport]
//
// Response shapes follow https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// spotifyScopes are the read-only scopes needed to list and inspect the user's playlists.
var spotifyScopes = []string{
	"user-read-private",
	"user-read-email",
	"playlist-read-private",
	"playlist-read-collaborative",
}

// SpotifyOpts configures a [SpotifyService].
type SpotifyOpts struct {
	BaseURL     string        // defaults to https://api.spotify.com/v1
	AccessToken string        // opaque bearer credential, never refreshed
	HTTPClient  *http.Client  // base client; its transport is wrapped with the bearer token
	Timeout     time.Duration // per-request timeout; zero disables it
	Logger      *log.Logger
}

// SpotifyService implements [Transport] against the Spotify Web API with a static bearer token.
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *log.Logger
}

// NewSpotifyService creates a transport authenticated with opts.AccessToken.
func NewSpotifyService(opts SpotifyOpts) (*SpotifyService, error) {
	if opts.AccessToken == "" {
		return nil, fmt.Errorf("%w: %w: no access token, run `spotlist auth`", shared.ErrAuthFailed, shared.ErrMissingCredentials)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}

	base := opts.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.AccessToken, TokenType: "Bearer"})
	client := &http.Client{
		Transport:     &oauth2.Transport{Source: source, Base: base.Transport},
		CheckRedirect: base.CheckRedirect,
		Jar:           base.Jar,
	}

	return &SpotifyService{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: client,
		timeout:    opts.Timeout,
		logger:     opts.Logger,
	}, nil
}

// resolve builds the absolute request URL, merging desc.Query into any query already on the endpoint.
func (s *SpotifyService) resolve(desc models.RequestDescriptor) (string, error) {
	raw := desc.Endpoint
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = s.baseURL + "/" + strings.TrimLeft(raw, "/")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: bad endpoint %q: %v", shared.ErrInvalidInput, desc.Endpoint, err)
	}

	q := u.Query()
	for k, v := range desc.Values() {
		q[k] = v
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Request performs one authenticated GET and decodes the response into out.
//
// Errors are classified as [shared.ErrTimeout] when the per-request deadline passes, [shared.ErrAuthFailed] for
// 401/403, and [shared.ErrAPIRequest] for everything else. Caller cancellation is returned as the context error.
func (s *SpotifyService) Request(ctx context.Context, desc models.RequestDescriptor, out any) error {
	body, err := s.get(ctx, desc)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to decode response from %s: %v", shared.ErrAPIRequest, desc.Endpoint, err)
	}
	return nil
}

// Raw performs one authenticated GET against path and returns the undecoded body.
func (s *SpotifyService) Raw(ctx context.Context, path string) (json.RawMessage, error) {
	body, err := s.get(ctx, models.RequestDescriptor{Endpoint: path})
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: response from %s is not JSON", shared.ErrAPIRequest, path)
	}
	return body, nil
}

func (s *SpotifyService) get(ctx context.Context, desc models.RequestDescriptor) ([]byte, error) {
	apiURL, err := s.resolve(desc)
	if err != nil {
		return nil, err
	}

	reqCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, s.classify(ctx, reqCtx, desc, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, s.classify(ctx, reqCtx, desc, fmt.Errorf("failed to read response: %w", err))
	}

	s.logger.Debug("spotify request", "endpoint", desc.Endpoint, "status", resp.StatusCode, "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body), Endpoint: desc.Endpoint}
	}

	return body, nil
}

// classify maps a transport failure to the caller's cancellation, a timeout, or a generic request error.
func (s *SpotifyService) classify(ctx, reqCtx context.Context, desc models.RequestDescriptor, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("request to %s aborted: %w", desc.Endpoint, ctxErr)
	}
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s after %s", shared.ErrTimeout, desc.Endpoint, s.timeout)
	}
	return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
}

// errorMessage extracts the message of a Spotify error object: {"error": {"status": 401, "message": "..."}}
func errorMessage(body []byte) string {
	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Error) == 0 {
		return strings.TrimSpace(string(body))
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Error, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}

	var s string
	if err := json.Unmarshal(payload.Error, &s); err == nil {
		return s
	}
	return ""
}

// SpotifyAuthenticator provides the authorization code flow configuration for `spotlist auth`.
type SpotifyAuthenticator struct {
	config *oauth2.Config
}

// NewSpotifyAuthenticator validates the application credentials and builds the OAuth2 config.
func NewSpotifyAuthenticator(cfg shared.SpotifyConfig) (*SpotifyAuthenticator, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}
	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://127.0.0.1:3000/callback"
	}

	return &SpotifyAuthenticator{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  redirectURI,
			Scopes:       spotifyScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyAuthURL,
				TokenURL: spotifyTokenURL,
			},
		},
	}, nil
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (a *SpotifyAuthenticator) GetAuthURL(state string) string {
	return a.config.AuthCodeURL(state)
}

// GetOAuthConfig returns the underlying [oauth2.Config] used for the code exchange.
func (a *SpotifyAuthenticator) GetOAuthConfig() *oauth2.Config {
	return a.config
}
