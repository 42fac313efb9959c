package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest              = fmt.Errorf("API request failed")
	ErrPaginationInconsistency = fmt.Errorf("%w: pagination inconsistency", ErrAPIRequest)
	ErrServiceUnavailable      = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound        = fmt.Errorf("playlist not found")
	ErrArtistNotFound          = fmt.Errorf("artist not found")

	// Storage errors
	ErrCollectionNotFound = fmt.Errorf("collection not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
