// Transport contract and API error classification
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/shared"
	"golang.org/x/oauth2"
)

// Transport performs exactly one HTTP call for a request and decodes the JSON body into out.
//
// Implementations must not paginate, retry, or cache; the catalog package owns those concerns.
type Transport interface {
	Request(ctx context.Context, desc models.RequestDescriptor, out any) error
}

// OAuthService is implemented by providers that support the authorization code flow.
type OAuthService interface {
	GetAuthURL(state string) string
	GetOAuthConfig() *oauth2.Config
}

// APIError is a non-2xx response from the remote API.
//
// It unwraps to [shared.ErrAuthFailed] for 401/403 and to [shared.ErrAPIRequest] otherwise.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return shared.ErrAuthFailed
	default:
		return shared.ErrAPIRequest
	}
}

// IsNotFound reports whether err is a 404 from the remote API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
