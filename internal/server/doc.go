// Package server provides the local HTTP plumbing for `spotlist auth`.
//
// # Routing
//
// [Mux] serves a [Handler]'s routes for GET only, wrapped in [Middleware]. The first middleware given runs first.
// [RequestLogger] is the only middleware in use.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter, exchanges the authorization code for tokens, and sends the result
// through a channel. It only processes one callback.
//
// # Callback Server
//
// [Listen] starts a temporary server (127.0.0.1:3000 by default) that lives until the token arrives, after which
// the auth command shuts it down with [CallbackServer.Shutdown].
package server
