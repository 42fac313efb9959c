// Package catalog aggregates the remote music catalog on top of a [services.Transport].
//
// # Pagination
//
// [Fetcher] drains an offset-paginated collection one page at a time until the accumulated item count equals the
// server-reported total. Completed collections are stored in a [CollectionCache] under the request's canonical
// identity ([models.RequestDescriptor.Identity]), so a later fetch of the same collection costs no requests.
// Partial progress is never cached. [Collect] decodes the raw items into a concrete type.
//
// # Batch Resolution
//
// [Resolver] looks up artists by id in batches of [MaxArtists] and registers each result in the [ArtistRegistry].
//
// # Lazy Loading
//
// Artist albums are loaded on demand through [ArtistRegistry.Albums]:
//
//	Unloaded -> Pending -> Loaded
//	   ^           |
//	   +-- error --+
//
// Calls made while Pending wait for the single in-flight load.
//
// # Duplicates
//
// [FindDuplicates] groups a playlist's tracks by (artist name, lowercase title).
package catalog
