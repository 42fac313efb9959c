package tasks

import (
	"fmt"

	"github.com/desertthunder/spotlist/internal/catalog"
	"github.com/desertthunder/spotlist/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchUser Phase = iota
	FetchPlaylists
	FetchTracks
	ResolveArtists
	FetchAlbums
	FindDuplicates
)

func (p Phase) String() string {
	switch p {
	case FetchUser:
		return "fetch_user"
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchTracks:
		return "fetch_tracks"
	case ResolveArtists:
		return "resolve_artists"
	case FetchAlbums:
		return "fetch_albums"
	case FindDuplicates:
		return "find_duplicates"
	default:
		return ""
	}
}

func fetchUserUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: FetchUser, Step: 1, Total: 1, Message: "Fetching current user..."}
}

func fetchPlaylistsUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{Phase: FetchPlaylists, Step: step, Total: total, Message: "Fetching playlists..."}
}

func foundPlaylistsUpdate(count, owned int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d playlists (%d owned)", count, owned),
	}
}

func fetchTracksUpdate(p models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    0,
		Total:   p.Summary.Total,
		Message: fmt.Sprintf("Fetching tracks of %s...", p.Name),
	}
}

func fetchedTracksUpdate(p models.Playlist, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    count,
		Total:   count,
		Message: fmt.Sprintf("✓ %s (%d tracks)", p.Name, count),
		Data:    p.ID,
	}
}

func resolveArtistsUpdate(count int) ProgressUpdate {
	batches := (count + catalog.MaxArtists - 1) / catalog.MaxArtists
	return ProgressUpdate{
		Phase:   ResolveArtists,
		Step:    0,
		Total:   count,
		Message: fmt.Sprintf("Resolving %d artists in %d batches...", count, batches),
	}
}

func resolvedArtistsUpdate(count int) ProgressUpdate {
	return ProgressUpdate{Phase: ResolveArtists, Step: count, Total: count, Message: fmt.Sprintf("✓ %d artists", count)}
}

func fetchAlbumsUpdate(name string) ProgressUpdate {
	return ProgressUpdate{Phase: FetchAlbums, Step: 1, Total: 1, Message: fmt.Sprintf("Loading albums of %s...", name)}
}

func duplicatesUpdate(groups []models.DuplicateGroup) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FindDuplicates,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d duplicate groups", len(groups)),
		Data:    len(groups),
	}
}
