package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/shared"
)

// AlbumPageSize is the page size requested for an artist's albums.
const AlbumPageSize = 50

// albumLoad is one in-flight album fetch. done is closed once albums and err are set.
type albumLoad struct {
	done   chan struct{}
	albums []models.Album
	err    error
}

type artistEntry struct {
	artist models.Artist
	state  models.LoadState
	albums []models.Album
	load   *albumLoad // non-nil while Pending
}

// ArtistRegistry holds resolved artists and the lazy-loaded album collection of each one.
//
// Album loading follows Unloaded -> Pending -> Loaded. Callers arriving while an artist is Pending join the
// in-flight load instead of issuing another request. A failed load returns the artist to Unloaded so the next
// call retries.
type ArtistRegistry struct {
	mu      sync.Mutex
	entries map[string]*artistEntry
	fetcher *Fetcher
	logger  *log.Logger
}

// NewArtistRegistry creates an empty registry that loads albums through fetcher.
func NewArtistRegistry(fetcher *Fetcher, logger *log.Logger) *ArtistRegistry {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &ArtistRegistry{entries: make(map[string]*artistEntry), fetcher: fetcher, logger: logger}
}

// Register creates or overwrites the entry for artist. New and overwritten entries start Unloaded; an entry
// with a load in flight keeps it and only has its record replaced.
func (r *ArtistRegistry) Register(artist models.Artist) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[artist.ID]; ok && e.state == models.Pending {
		e.artist = artist
		return
	}
	r.entries[artist.ID] = &artistEntry{artist: artist, state: models.Unloaded}
}

// Artist returns the registered record for id.
func (r *ArtistRegistry) Artist(id string) (models.Artist, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return models.Artist{}, false
	}
	return e.artist, true
}

// State reports the album load state of id.
func (r *ArtistRegistry) State(id string) (models.LoadState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return models.Unloaded, false
	}
	return e.state, true
}

// Len returns the number of registered artists.
func (r *ArtistRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Albums returns the albums of artist id, loading them on first use.
//
// Loaded artists are served from the registry without a transport call. Otherwise the caller waits for the single
// in-flight load, starting it if the artist is Unloaded. The load itself is detached from the caller's
// cancellation so that other waiters are not failed by one caller going away; each caller still stops waiting
// when its own ctx ends.
func (r *ArtistRegistry) Albums(ctx context.Context, id string) ([]models.Album, error) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", shared.ErrArtistNotFound, id)
	}
	if e.state == models.Loaded {
		albums := e.albums
		r.mu.Unlock()
		return albums, nil
	}
	load := r.startLocked(ctx, id, e)
	r.mu.Unlock()

	select {
	case <-load.done:
		return load.albums, load.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Prefetch starts loading the albums of id in the background if they are not loaded or loading yet.
func (r *ArtistRegistry) Prefetch(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrArtistNotFound, id)
	}
	if e.state == models.Unloaded {
		r.startLocked(ctx, id, e)
	}
	return nil
}

// startLocked returns the in-flight load of e, moving an Unloaded entry to Pending and starting its fetch.
// r.mu must be held.
func (r *ArtistRegistry) startLocked(ctx context.Context, id string, e *artistEntry) *albumLoad {
	if e.state == models.Pending {
		return e.load
	}

	load := &albumLoad{done: make(chan struct{})}
	e.state = models.Pending
	e.load = load
	r.logger.Debug("loading artist albums", "artist", id)

	go r.run(context.WithoutCancel(ctx), id, e, load)
	return load
}

func (r *ArtistRegistry) run(ctx context.Context, id string, e *artistEntry, load *albumLoad) {
	albums, err := Collect[models.Album](ctx, r.fetcher, AlbumsRequest(id))

	r.mu.Lock()
	if err != nil {
		e.state = models.Unloaded
		r.logger.Warn("failed to load artist albums", "artist", id, "error", err)
	} else {
		e.state = models.Loaded
		e.albums = albums
	}
	e.load = nil
	load.albums, load.err = albums, err
	r.mu.Unlock()

	close(load.done)
}

// AlbumsRequest describes the albums collection of an artist.
func AlbumsRequest(artistID string) models.RequestDescriptor {
	return models.RequestDescriptor{Endpoint: "/artists/" + artistID + "/albums", PageSize: AlbumPageSize}
}

// PlaylistRegistry holds the session's playlists in the order they were first registered.
type PlaylistRegistry struct {
	mu    sync.Mutex
	byID  map[string]*models.Playlist
	order []string
}

func NewPlaylistRegistry() *PlaylistRegistry {
	return &PlaylistRegistry{byID: make(map[string]*models.Playlist)}
}

// Put registers p, or refreshes the metadata of an existing playlist while keeping its loaded tracks and artists.
func (r *PlaylistRegistry) Put(p models.Playlist) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[p.ID]
	if !ok {
		r.byID[p.ID] = &p
		r.order = append(r.order, p.ID)
		return
	}

	p.Tracks, p.TracksLoaded = existing.Tracks, existing.TracksLoaded
	p.Artists, p.ArtistsLoaded = existing.Artists, existing.ArtistsLoaded
	*existing = p
}

// Get returns a copy of the playlist registered under id.
func (r *PlaylistRegistry) Get(id string) (models.Playlist, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return models.Playlist{}, false
	}
	return *p, true
}

// All returns every playlist in registration order.
func (r *PlaylistRegistry) All() []models.Playlist {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Playlist, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out
}

// SetTracks stores the fetched tracks of playlist id in place.
func (r *PlaylistRegistry) SetTracks(id string, tracks []models.Track) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	p.Tracks, p.TracksLoaded = tracks, true
	return nil
}

// SetArtists stores the resolved artists of playlist id in place.
func (r *PlaylistRegistry) SetArtists(id string, artists []models.Artist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	p.Artists, p.ArtistsLoaded = artists, true
	return nil
}
