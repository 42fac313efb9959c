package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlist/internal/catalog"
	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/services"
	"github.com/desertthunder/spotlist/internal/shared"
)

const (
	PlaylistPageSize = 50
	TrackPageSize    = 100
)

// Engine defines the playlist inspection operations.
type Engine interface {
	// CurrentUser returns the profile of the token's owner.
	CurrentUser(ctx context.Context) (*models.User, error)

	// Playlists lists the user's playlists, keeping only the ones the user owns when ownedOnly is set.
	Playlists(ctx context.Context, ownedOnly bool, progress chan<- ProgressUpdate) ([]models.Playlist, error)

	// Playlist returns one playlist's metadata.
	Playlist(ctx context.Context, id string) (*models.Playlist, error)

	// PlaylistTracks returns the tracks of a playlist in playlist order.
	PlaylistTracks(ctx context.Context, id string, progress chan<- ProgressUpdate) ([]models.Track, error)

	// PlaylistArtists resolves the distinct artists credited on a playlist, in first-seen order.
	PlaylistArtists(ctx context.Context, id string, progress chan<- ProgressUpdate) ([]models.Artist, error)

	// ArtistAlbums returns an artist's albums, loading them on first use.
	ArtistAlbums(ctx context.Context, artistID string, progress chan<- ProgressUpdate) (*models.Artist, []models.Album, error)

	// Duplicates reports the duplicate track groups of a playlist.
	Duplicates(ctx context.Context, id string, progress chan<- ProgressUpdate) ([]models.DuplicateGroup, error)

	// AlbumState reports whether an artist's albums are unloaded, loading, or loaded.
	AlbumState(artistID string) (models.LoadState, bool)
}

var _ Engine = (*Inspector)(nil)

// InspectorOpts configures an [Inspector].
type InspectorOpts struct {
	Transport      services.Transport
	Cache          catalog.CollectionCache // nil uses a process-lifetime memory cache
	PrefetchAlbums bool
	PageSize       int // page size for the playlists collection; zero uses PlaylistPageSize
	Logger         *log.Logger
}

// Inspector implements [Engine] on top of the catalog fetcher, resolver, and registries. Each Inspector owns its
// registries, so separate sessions do not share state.
type Inspector struct {
	transport services.Transport
	fetcher   *catalog.Fetcher
	resolver  *catalog.Resolver
	artists   *catalog.ArtistRegistry
	playlists *catalog.PlaylistRegistry
	pageSize  int
	logger    *log.Logger

	mu   sync.Mutex
	user *models.User
}

// NewInspector wires a fetcher, a resolver, and fresh registries around opts.Transport.
func NewInspector(opts InspectorOpts) *Inspector {
	logger := opts.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	fetcher := catalog.NewFetcher(opts.Transport, opts.Cache, shared.WithLogger(logger, "component", "fetcher"))
	artists := catalog.NewArtistRegistry(fetcher, shared.WithLogger(logger, "component", "artists"))

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = PlaylistPageSize
	}

	var resolverOpts []catalog.ResolverOption
	if opts.PrefetchAlbums {
		resolverOpts = append(resolverOpts, catalog.WithPrefetchAlbums())
	}

	return &Inspector{
		transport: opts.Transport,
		fetcher:   fetcher,
		resolver:  catalog.NewResolver(opts.Transport, artists, shared.WithLogger(logger, "component", "resolver"), resolverOpts...),
		artists:   artists,
		playlists: catalog.NewPlaylistRegistry(),
		pageSize:  pageSize,
		logger:    logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Inspector) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// CurrentUser fetches GET /me once per Inspector.
func (e *Inspector) CurrentUser(ctx context.Context) (*models.User, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.user != nil {
		return e.user, nil
	}

	var user models.User
	if err := e.transport.Request(ctx, models.RequestDescriptor{Endpoint: "/me"}, &user); err != nil {
		return nil, fmt.Errorf("could not retrieve current user: %w", err)
	}
	e.user = &user
	return e.user, nil
}

// Playlists fetches every playlist of the current user and registers them.
func (e *Inspector) Playlists(ctx context.Context, ownedOnly bool, progress chan<- ProgressUpdate) ([]models.Playlist, error) {
	var user *models.User
	if ownedOnly {
		e.sendProgress(progress, fetchUserUpdate())
		u, err := e.CurrentUser(ctx)
		if err != nil {
			return nil, err
		}
		user = u
	}

	e.sendProgress(progress, fetchPlaylistsUpdate(1, 1))
	desc := models.RequestDescriptor{Endpoint: "/me/playlists", PageSize: e.pageSize}
	all, err := catalog.Collect[models.Playlist](ctx, e.fetcher, desc)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve playlists: %w", err)
	}

	playlists := make([]models.Playlist, 0, len(all))
	for _, p := range all {
		e.playlists.Put(p)
		if user != nil && p.Owner.ID != user.ID {
			continue
		}
		if registered, ok := e.playlists.Get(p.ID); ok {
			p = registered
		}
		playlists = append(playlists, p)
	}

	e.sendProgress(progress, foundPlaylistsUpdate(len(all), len(playlists)))
	return playlists, nil
}

// Playlist returns the registered playlist, fetching its metadata when it has not been seen yet.
func (e *Inspector) Playlist(ctx context.Context, id string) (*models.Playlist, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	if p, ok := e.playlists.Get(id); ok {
		return &p, nil
	}

	var p models.Playlist
	desc := models.RequestDescriptor{Endpoint: "/playlists/" + id, Query: map[string]string{"fields": "id,name,images,owner,public,tracks(total)"}}
	if err := e.transport.Request(ctx, desc, &p); err != nil {
		if services.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
		}
		return nil, fmt.Errorf("could not retrieve playlist %s: %w", id, err)
	}
	if p.ID == "" {
		p.ID = id
	}

	e.playlists.Put(p)
	registered, _ := e.playlists.Get(id)
	return &registered, nil
}

// PlaylistTracks returns the playlist's tracks, fetching them once and storing them on the registered playlist.
// Removed and unavailable entries are skipped.
func (e *Inspector) PlaylistTracks(ctx context.Context, id string, progress chan<- ProgressUpdate) ([]models.Track, error) {
	p, err := e.Playlist(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.TracksLoaded {
		return p.Tracks, nil
	}

	e.sendProgress(progress, fetchTracksUpdate(*p))
	items, err := catalog.Collect[models.PlaylistItem](ctx, e.fetcher, TracksRequest(id))
	if err != nil {
		return nil, fmt.Errorf("could not retrieve playlist tracks: %w", err)
	}

	tracks := make([]models.Track, 0, len(items))
	for _, item := range items {
		if item.Track == nil {
			continue
		}
		tracks = append(tracks, *item.Track)
	}

	if err := e.playlists.SetTracks(id, tracks); err != nil {
		return nil, err
	}
	e.sendProgress(progress, fetchedTracksUpdate(*p, len(tracks)))
	return tracks, nil
}

// PlaylistArtists resolves the playlist's distinct artists and stores them on the registered playlist.
func (e *Inspector) PlaylistArtists(ctx context.Context, id string, progress chan<- ProgressUpdate) ([]models.Artist, error) {
	tracks, err := e.PlaylistTracks(ctx, id, progress)
	if err != nil {
		return nil, err
	}
	if p, ok := e.playlists.Get(id); ok && p.ArtistsLoaded {
		return p.Artists, nil
	}

	ids := DistinctArtistIDs(tracks)
	e.sendProgress(progress, resolveArtistsUpdate(len(ids)))

	artists, err := e.resolver.ResolveArtists(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve playlist artists: %w", err)
	}
	if err := e.playlists.SetArtists(id, artists); err != nil {
		return nil, err
	}

	e.sendProgress(progress, resolvedArtistsUpdate(len(artists)))
	return artists, nil
}

// ArtistAlbums returns the artist record and its albums. Artists not resolved in this session are resolved first.
func (e *Inspector) ArtistAlbums(ctx context.Context, artistID string, progress chan<- ProgressUpdate) (*models.Artist, []models.Album, error) {
	if artistID == "" {
		return nil, nil, fmt.Errorf("%w: artist id", shared.ErrMissingArgument)
	}

	artist, ok := e.artists.Artist(artistID)
	if !ok {
		if _, err := e.resolver.ResolveArtists(ctx, []string{artistID}); err != nil {
			return nil, nil, fmt.Errorf("could not retrieve artist: %w", err)
		}
		if artist, ok = e.artists.Artist(artistID); !ok {
			return nil, nil, fmt.Errorf("%w: %s", shared.ErrArtistNotFound, artistID)
		}
	}

	e.sendProgress(progress, fetchAlbumsUpdate(artist.Name))
	albums, err := e.artists.Albums(ctx, artistID)
	if err != nil {
		return nil, nil, fmt.Errorf("could not retrieve albums: %w", err)
	}
	return &artist, albums, nil
}

// Duplicates loads the playlist's tracks and groups them by artist and case-insensitive title.
func (e *Inspector) Duplicates(ctx context.Context, id string, progress chan<- ProgressUpdate) ([]models.DuplicateGroup, error) {
	tracks, err := e.PlaylistTracks(ctx, id, progress)
	if err != nil {
		return nil, err
	}

	groups := catalog.FindDuplicates(tracks)
	e.sendProgress(progress, duplicatesUpdate(groups))
	return groups, nil
}

// AlbumState reports the lazy-load state of an artist's albums.
func (e *Inspector) AlbumState(artistID string) (models.LoadState, bool) {
	return e.artists.State(artistID)
}

// TracksRequest describes the tracks collection of a playlist.
func TracksRequest(playlistID string) models.RequestDescriptor {
	return models.RequestDescriptor{Endpoint: "/playlists/" + playlistID + "/tracks", PageSize: TrackPageSize}
}

// DistinctArtistIDs returns the ids of every artist credited on tracks, once each, in first-seen order.
// Artists without an id (local files) are skipped.
func DistinctArtistIDs(tracks []models.Track) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, t := range tracks {
		for _, a := range t.Artists {
			if a.ID == "" {
				continue
			}
			if _, ok := seen[a.ID]; ok {
				continue
			}
			seen[a.ID] = struct{}{}
			ids = append(ids, a.ID)
		}
	}
	return ids
}
