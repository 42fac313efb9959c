// Package tasks orchestrates playlist inspection with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines the operations behind the CLI:
//
//  1. [Engine.Playlists] : list the user's playlists
//     - Fetches GET /me when only owned playlists are wanted
//     - Drains /me/playlists 50 at a time
//     - Registers every playlist for the session
//
//  2. [Engine.PlaylistTracks] and [Engine.PlaylistArtists] : load a playlist
//     - Drains /playlists/{id}/tracks 100 at a time, skipping removed entries
//     - Collects distinct artist ids in first-seen order
//     - Resolves them through the batch resolver
//
//  3. [Engine.ArtistAlbums] : lazily load an artist's albums
//
//  4. [Engine.Duplicates] : group a playlist's tracks by artist and case-insensitive title
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data. Updates use select with
// default to prevent blocking.
//
// # Implementation
//
// [Inspector] implements [Engine] with dependencies on:
//   - [services.Transport] : one HTTP call per request
//   - [catalog.CollectionCache] : optional memo store (repositories.CollectionRepository for persistence)
package tasks
