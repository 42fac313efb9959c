package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/shared"
	tu "github.com/desertthunder/spotlist/internal/testing"
)

func albumPage(desc models.RequestDescriptor) map[string]any {
	albums := []models.Album{{ID: "al1", Name: "First"}, {ID: "al2", Name: "Second"}}
	return tu.Paginate(albums, desc, AlbumPageSize)
}

func waitForState(t *testing.T, r *ArtistRegistry, id string, want models.LoadState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if state, _ := r.State(id); state == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	state, _ := r.State(id)
	t.Fatalf("artist %s: expected state %s, still %s", id, want, state)
}

func TestArtistRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("Register Starts Unloaded", func(t *testing.T) {
		r := NewArtistRegistry(NewFetcher(tu.NewFakeTransport(nil), nil, nil), nil)
		r.Register(models.Artist{ID: "a", Name: "Band"})

		state, ok := r.State("a")
		if !ok || state != models.Unloaded {
			t.Errorf("expected registered artist to be unloaded, got %s (%v)", state, ok)
		}
		if a, _ := r.Artist("a"); a.Name != "Band" {
			t.Errorf("unexpected artist %+v", a)
		}
		if r.Len() != 1 {
			t.Errorf("expected one artist, got %d", r.Len())
		}
	})

	t.Run("Unknown Artist", func(t *testing.T) {
		r := NewArtistRegistry(NewFetcher(tu.NewFakeTransport(nil), nil, nil), nil)
		if _, err := r.Albums(ctx, "missing"); !errors.Is(err, shared.ErrArtistNotFound) {
			t.Errorf("expected ErrArtistNotFound, got %v", err)
		}
		if err := r.Prefetch(ctx, "missing"); !errors.Is(err, shared.ErrArtistNotFound) {
			t.Errorf("expected ErrArtistNotFound, got %v", err)
		}
	})

	t.Run("Loaded Albums Need No Request", func(t *testing.T) {
		transport := tu.NewFakeTransport(func(desc models.RequestDescriptor) (any, error) {
			return albumPage(desc), nil
		})
		r := NewArtistRegistry(NewFetcher(transport, nil, nil), nil)
		r.Register(models.Artist{ID: "a"})

		first, err := r.Albums(ctx, "a")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if state, _ := r.State("a"); state != models.Loaded {
			t.Errorf("expected loaded, got %s", state)
		}

		second, err := r.Albums(ctx, "a")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n := transport.CallCount("/artists/a/albums"); n != 1 {
			t.Errorf("expected one album request, got %d", n)
		}
		if len(first) != 2 || len(second) != 2 || second[0].ID != "al1" {
			t.Errorf("unexpected albums %+v / %+v", first, second)
		}
		if got := transport.Calls()[0].Query[models.LimitParam]; got != "50" {
			t.Errorf("expected album page size 50, got %s", got)
		}
	})

	t.Run("Pending Callers Share One Request", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		var once sync.Once
		transport := tu.NewFakeTransport(func(desc models.RequestDescriptor) (any, error) {
			once.Do(func() { close(started) })
			<-release
			return albumPage(desc), nil
		})
		r := NewArtistRegistry(NewFetcher(transport, nil, nil), nil)
		r.Register(models.Artist{ID: "a"})

		const callers = 4
		results := make(chan int, callers)
		var wg sync.WaitGroup
		for range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				albums, err := r.Albums(ctx, "a")
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				results <- len(albums)
			}()
		}

		<-started
		if state, _ := r.State("a"); state != models.Pending {
			t.Errorf("expected pending during load, got %s", state)
		}
		close(release)
		wg.Wait()
		close(results)

		for n := range results {
			if n != 2 {
				t.Errorf("expected every caller to see 2 albums, got %d", n)
			}
		}
		if n := transport.CallCount("/artists/a/albums"); n != 1 {
			t.Errorf("expected exactly one album request, got %d", n)
		}
	})

	t.Run("Failed Load Returns To Unloaded", func(t *testing.T) {
		fail := true
		var mu sync.Mutex
		transport := tu.NewFakeTransport(func(desc models.RequestDescriptor) (any, error) {
			mu.Lock()
			defer mu.Unlock()
			if fail {
				return nil, shared.ErrAPIRequest
			}
			return albumPage(desc), nil
		})
		r := NewArtistRegistry(NewFetcher(transport, nil, nil), nil)
		r.Register(models.Artist{ID: "a"})

		if _, err := r.Albums(ctx, "a"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if state, _ := r.State("a"); state != models.Unloaded {
			t.Errorf("expected unloaded after failure, got %s", state)
		}

		mu.Lock()
		fail = false
		mu.Unlock()

		albums, err := r.Albums(ctx, "a")
		if err != nil {
			t.Fatalf("expected retry to succeed, got %v", err)
		}
		if len(albums) != 2 {
			t.Errorf("expected 2 albums, got %d", len(albums))
		}
		if n := transport.CallCount("/artists/a/albums"); n != 2 {
			t.Errorf("expected a second request after failure, got %d", n)
		}
	})

	t.Run("Waiter Context Ends", func(t *testing.T) {
		release := make(chan struct{})
		transport := tu.NewFakeTransport(func(desc models.RequestDescriptor) (any, error) {
			<-release
			return albumPage(desc), nil
		})
		r := NewArtistRegistry(NewFetcher(transport, nil, nil), nil)
		r.Register(models.Artist{ID: "a"})

		waitCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		if _, err := r.Albums(waitCtx, "a"); !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected waiter deadline, got %v", err)
		}

		close(release)
		waitForState(t, r, "a", models.Loaded)
		if n := transport.CallCount("/artists/a/albums"); n != 1 {
			t.Errorf("expected the detached load to finish with one request, got %d", n)
		}
	})

	t.Run("Register Keeps In-Flight Load", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		transport := tu.NewFakeTransport(func(desc models.RequestDescriptor) (any, error) {
			close(started)
			<-release
			return albumPage(desc), nil
		})
		r := NewArtistRegistry(NewFetcher(transport, nil, nil), nil)
		r.Register(models.Artist{ID: "a", Name: "Old"})

		if err := r.Prefetch(ctx, "a"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		<-started
		r.Register(models.Artist{ID: "a", Name: "New"})
		if state, _ := r.State("a"); state != models.Pending {
			t.Errorf("expected re-registration to keep pending load, got %s", state)
		}

		close(release)
		waitForState(t, r, "a", models.Loaded)
		if a, _ := r.Artist("a"); a.Name != "New" {
			t.Errorf("expected record to be replaced, got %q", a.Name)
		}
	})

	t.Run("Register Resets Loaded Entry", func(t *testing.T) {
		transport := tu.NewFakeTransport(func(desc models.RequestDescriptor) (any, error) {
			return albumPage(desc), nil
		})
		r := NewArtistRegistry(NewFetcher(transport, nil, nil), nil)
		r.Register(models.Artist{ID: "a"})
		if _, err := r.Albums(ctx, "a"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		r.Register(models.Artist{ID: "a"})
		if state, _ := r.State("a"); state != models.Unloaded {
			t.Errorf("expected overwritten entry to be unloaded, got %s", state)
		}
		if _, err := r.Albums(ctx, "a"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n := transport.CallCount("/artists/a/albums"); n != 1 {
			t.Errorf("expected reload to be served by the collection cache, got %d requests", n)
		}
	})
}

func TestPlaylistRegistry(t *testing.T) {
	t.Run("Keeps Registration Order", func(t *testing.T) {
		r := NewPlaylistRegistry()
		r.Put(models.Playlist{ID: "b", Name: "B"})
		r.Put(models.Playlist{ID: "a", Name: "A"})

		all := r.All()
		if len(all) != 2 || all[0].ID != "b" || all[1].ID != "a" {
			t.Errorf("unexpected order %+v", all)
		}
	})

	t.Run("Tracks Are Stored In Place", func(t *testing.T) {
		r := NewPlaylistRegistry()
		r.Put(models.Playlist{ID: "p", Name: "Mix"})

		if err := r.SetTracks("p", []models.Track{{Name: "Song"}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := r.SetArtists("p", []models.Artist{{ID: "a"}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		p, ok := r.Get("p")
		if !ok || !p.TracksLoaded || len(p.Tracks) != 1 || !p.ArtistsLoaded {
			t.Errorf("unexpected playlist %+v", p)
		}
	})

	t.Run("Refresh Keeps Loaded Tracks", func(t *testing.T) {
		r := NewPlaylistRegistry()
		r.Put(models.Playlist{ID: "p", Name: "Mix"})
		r.SetTracks("p", []models.Track{{Name: "Song"}})

		r.Put(models.Playlist{ID: "p", Name: "Renamed"})
		p, _ := r.Get("p")
		if p.Name != "Renamed" || !p.TracksLoaded {
			t.Errorf("expected metadata refresh with tracks kept, got %+v", p)
		}
		if len(r.All()) != 1 {
			t.Error("refresh should not add a second entry")
		}
	})

	t.Run("Unknown Playlist", func(t *testing.T) {
		r := NewPlaylistRegistry()
		if err := r.SetTracks("x", nil); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
		if err := r.SetArtists("x", nil); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
		if _, ok := r.Get("x"); ok {
			t.Error("expected miss")
		}
	})
}
