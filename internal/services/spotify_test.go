package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/shared"
	tu "github.com/desertthunder/spotlist/internal/testing"
)

func newTestService(t *testing.T, serverURL string, timeout time.Duration) *SpotifyService {
	t.Helper()
	srv, err := NewSpotifyService(SpotifyOpts{BaseURL: serverURL, AccessToken: "test_token", Timeout: timeout})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return srv
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("Missing Access Token", func(t *testing.T) {
			_, err := NewSpotifyService(SpotifyOpts{})
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Default Base URL", func(t *testing.T) {
			srv, err := NewSpotifyService(SpotifyOpts{AccessToken: "x"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.baseURL != spotifyBaseURL {
				t.Errorf("expected %s, got %s", spotifyBaseURL, srv.baseURL)
			}
		})
	})

	t.Run("Request", func(t *testing.T) {
		t.Run("Sends Bearer Token And Query", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer test_token" {
					t.Errorf("expected bearer header, got %q", got)
				}
				if r.URL.Path != "/v1/artists" {
					t.Errorf("expected /v1/artists, got %s", r.URL.Path)
				}
				if got := r.URL.Query().Get("ids"); got != "a,b" {
					t.Errorf("expected ids=a,b, got %q", got)
				}
				w.Write([]byte(`{"artists":[{"id":"a","name":"A"},{"id":"b","name":"B"}]}`))
			}))
			defer server.Close()

			srv := newTestService(t, server.URL+"/v1", 0)
			var out struct {
				Artists []models.Artist `json:"artists"`
			}
			desc := models.RequestDescriptor{Endpoint: "/artists", Query: map[string]string{"ids": "a,b"}}
			if err := srv.Request(context.Background(), desc, &out); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(out.Artists) != 2 || out.Artists[1].Name != "B" {
				t.Errorf("unexpected artists %+v", out.Artists)
			}
		})

		t.Run("Absolute Endpoint Keeps Its Query", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("market") != "GB" || q.Get("offset") != "50" {
					t.Errorf("expected merged query, got %s", r.URL.RawQuery)
				}
				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			srv := newTestService(t, "http://unused.invalid", 0)
			desc := models.RequestDescriptor{Endpoint: server.URL + "/next?market=GB", Query: map[string]string{"offset": "50"}}
			if err := srv.Request(context.Background(), desc, nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Unauthorized Maps To Auth Failure", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":{"status":401,"message":"The access token expired"}}`))
			}))
			defer server.Close()

			err := newTestService(t, server.URL, 0).Request(context.Background(), models.RequestDescriptor{Endpoint: "/me"}, nil)
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Fatalf("expected ErrAuthFailed, got %v", err)
			}
			if errors.Is(err, shared.ErrAPIRequest) {
				t.Error("auth failure should not also be a generic request error")
			}
			if !strings.Contains(err.Error(), "The access token expired") {
				t.Errorf("expected API message in error, got %v", err)
			}
		})

		t.Run("Not Found Is A Request Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"error":{"status":404,"message":"Not found."}}`))
			}))
			defer server.Close()

			err := newTestService(t, server.URL, 0).Request(context.Background(), models.RequestDescriptor{Endpoint: "/playlists/x"}, nil)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
			if !IsNotFound(err) {
				t.Error("expected IsNotFound to be true")
			}
		})

		t.Run("Invalid JSON Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			}))
			defer server.Close()

			var out map[string]any
			err := newTestService(t, server.URL, 0).Request(context.Background(), models.RequestDescriptor{Endpoint: "/me"}, &out)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Timeout", func(t *testing.T) {
			release := make(chan struct{})
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-release:
				case <-r.Context().Done():
				}
			}))
			defer server.Close()
			defer close(release)

			err := newTestService(t, server.URL, 20*time.Millisecond).Request(context.Background(), models.RequestDescriptor{Endpoint: "/me"}, nil)
			if !errors.Is(err, shared.ErrTimeout) {
				t.Errorf("expected ErrTimeout, got %v", err)
			}
		})

		t.Run("Canceled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := newTestService(t, server.URL, time.Second).Request(ctx, models.RequestDescriptor{Endpoint: "/me"}, nil)
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
			if errors.Is(err, shared.ErrTimeout) {
				t.Error("cancellation should not be reported as a timeout")
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			srv, _ := NewSpotifyService(SpotifyOpts{
				BaseURL:     "http://example.com",
				AccessToken: "x",
				HTTPClient:  &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed"))},
			})

			err := srv.Request(context.Background(), models.RequestDescriptor{Endpoint: "/me"}, nil)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			srv, _ := NewSpotifyService(SpotifyOpts{
				BaseURL:     "http://example.com",
				AccessToken: "x",
				HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil)},
			})

			err := srv.Request(context.Background(), models.RequestDescriptor{Endpoint: "/me"}, nil)
			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected read failure, got %v", err)
			}
		})
	})

	t.Run("Raw", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/text" {
				w.Write([]byte("plain"))
				return
			}
			w.Write([]byte(`{"id":"me"}`))
		}))
		defer server.Close()

		srv := newTestService(t, server.URL, 0)
		body, err := srv.Raw(context.Background(), "/me")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(body) != `{"id":"me"}` {
			t.Errorf("unexpected body %s", body)
		}

		if _, err := srv.Raw(context.Background(), "/text"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest for non-JSON body, got %v", err)
		}
	})
}

func TestSpotifyAuthenticator(t *testing.T) {
	t.Run("Missing Client ID", func(t *testing.T) {
		_, err := NewSpotifyAuthenticator(shared.SpotifyConfig{ClientSecret: "s"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Missing Client Secret", func(t *testing.T) {
		_, err := NewSpotifyAuthenticator(shared.SpotifyConfig{ClientID: "c"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Auth URL", func(t *testing.T) {
		auth, err := NewSpotifyAuthenticator(shared.SpotifyConfig{ClientID: "test_client_id", ClientSecret: "s"})
		if err != nil {
			t.Fatalf("failed to create authenticator: %v", err)
		}

		authURL := auth.GetAuthURL("test_state")
		for _, want := range []string{"accounts.spotify.com", "test_client_id", "test_state", "playlist-read-private"} {
			if !strings.Contains(authURL, want) {
				t.Errorf("auth URL should contain %q: %s", want, authURL)
			}
		}
		if auth.GetOAuthConfig().RedirectURL != "http://127.0.0.1:3000/callback" {
			t.Errorf("expected default redirect URI, got %s", auth.GetOAuthConfig().RedirectURL)
		}

		var _ OAuthService = auth
	})
}

func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: http.StatusForbidden, Endpoint: "/me"}
	if !errors.Is(err, shared.ErrAuthFailed) {
		t.Error("403 should unwrap to ErrAuthFailed")
	}
	if err.Error() != "/me: status 403" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
