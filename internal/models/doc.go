// Package models defines the catalog entities shared by the fetcher, resolver, and inspector.
//
// Wire types mirror the Spotify Web API JSON:
//   - [Page] : one page of an offset-paginated collection (items, total, offset, limit)
//   - [Playlist], [PlaylistItem], [Track], [ArtistRef] : playlist listing and contents
//   - [Artist], [Album] : resolved artist records and their albums
//   - [User] : the authenticated profile, used to keep only owned playlists
//
// [RequestDescriptor] describes a request and derives its canonical identity, the cache key for completed
// collections. The running offset is never part of the identity.
//
// Derived types are never sent over the wire: [DuplicateGroup] and [LoadState].
package models
