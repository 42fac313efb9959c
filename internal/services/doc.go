// Package services defines the [Transport] primitive consumed by the catalog core and implements it for Spotify.
//
// # Transport
//
// A Transport performs exactly one HTTP call per [Transport.Request] and decodes the JSON body. Pagination,
// batching, memoization, and lazy loading are built on top of it in the catalog package, which keeps those
// concerns testable against a fake transport.
//
// # Spotify Implementation
//
// [SpotifyService] sends every request with the bearer token supplied at construction through an
// [oauth2.StaticTokenSource]. The token is opaque to the service and is never refreshed; obtaining it is the
// job of `spotlist auth`, which uses [SpotifyAuthenticator] for the authorization code flow.
//
// Each call runs under its own timeout when one is configured.
//
// # Error Handling
//
// Failures are classified with sentinel errors from the shared package:
//   - [shared.ErrAuthFailed] : 401/403 responses, or no token configured
//   - [shared.ErrTimeout] : the per-request deadline passed
//   - [shared.ErrAPIRequest] : network failure, other non-2xx status, undecodable body
//
// Non-2xx responses are returned as [*APIError] so callers can inspect the status code ([IsNotFound]).
// Cancellation of the caller's context is returned as the context error, not as a timeout.
package services
