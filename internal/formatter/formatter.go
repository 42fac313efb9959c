// package formatter renders playlists, artists, albums, and duplicate reports as plain text, JSON, CSV, and Markdown
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/shared"
)

// Format is an output format name accepted by the CLI.
type Format string

const (
	Text     Format = "text"
	JSON     Format = "json"
	CSV      Format = "csv"
	Markdown Format = "markdown"
)

// ParseFormat validates a format name. An empty name selects [Text].
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return Text, nil
	case Text, JSON, CSV, Markdown:
		return f, nil
	case "md":
		return Markdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (use text, json, csv, or markdown)", shared.ErrInvalidArgument, name)
	}
}

// FormatDuration renders milliseconds as m:ss.
func FormatDuration(ms int) string {
	total := ms / 1000
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// Visibility renders a playlist's public flag.
func Visibility(public bool) string {
	if public {
		return "Public"
	}
	return "Private"
}

// PlaylistsToText renders one playlist per line with its id, owner, and track count.
func PlaylistsToText(playlists []models.Playlist) []byte {
	var buf bytes.Buffer
	for _, p := range playlists {
		fmt.Fprintf(&buf, "%s  %s (%d tracks, %s, by %s)\n", p.ID, p.Name, p.Summary.Total, Visibility(p.Public), ownerName(p.Owner))
	}
	return buf.Bytes()
}

// TracksToText renders a numbered track list.
func TracksToText(p models.Playlist, tracks []models.Track) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", p.Name)
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(tracks))
	for i, t := range tracks {
		album := ""
		if t.Album.Name != "" {
			album = fmt.Sprintf(" (%s)", t.Album.Name)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, t.ArtistNames(), t.Name, album, FormatDuration(t.DurationMS))
	}
	return buf.Bytes()
}

// TracksToCSV converts tracks to CSV with columns: ID, Title, Artists, Album, Duration
func TracksToCSV(tracks []models.Track) ([]byte, error) {
	rows := make([][]string, 0, len(tracks))
	for _, t := range tracks {
		rows = append(rows, []string{t.ID, t.Name, t.ArtistNames(), t.Album.Name, FormatDuration(t.DurationMS)})
	}
	return writeCSV([]string{"ID", "Title", "Artists", "Album", "Duration"}, rows)
}

// ArtistsToText renders one artist per line with genres when known.
func ArtistsToText(artists []models.Artist) []byte {
	var buf bytes.Buffer
	for _, a := range artists {
		if len(a.Genres) == 0 {
			fmt.Fprintf(&buf, "%s  %s\n", a.ID, a.Name)
			continue
		}
		fmt.Fprintf(&buf, "%s  %s [%s]\n", a.ID, a.Name, strings.Join(a.Genres, ", "))
	}
	return buf.Bytes()
}

// AlbumsToText renders an artist's albums with release date and type.
func AlbumsToText(artist models.Artist, albums []models.Album) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Artist: %s\n", artist.Name)
	fmt.Fprintf(&buf, "Albums: %d\n\n", len(albums))
	for _, a := range albums {
		fmt.Fprintf(&buf, "%s  %s (%s, %d tracks)\n", a.ReleaseDate, a.Name, a.AlbumType, a.TotalTracks)
	}
	return buf.Bytes()
}

// DuplicatesToText renders each duplicate group with its members.
func DuplicatesToText(p models.Playlist, groups []models.DuplicateGroup) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", p.Name)
	if len(groups) == 0 {
		buf.WriteString("No Duplicates\n")
		return buf.Bytes()
	}

	fmt.Fprintf(&buf, "Duplicate groups: %d\n", len(groups))
	for _, g := range groups {
		fmt.Fprintf(&buf, "\n%s - %s (%d)\n", g.Artist, displayTitle(g), len(g.Members))
		for _, m := range g.Members {
			fmt.Fprintf(&buf, "  %s  %s (%s)\n", m.ID, m.Name, m.Album.Name)
		}
	}
	return buf.Bytes()
}

// DuplicatesToCSV flattens groups into one row per member with columns: Group, Artist, Title, TrackID, TrackTitle, Album
func DuplicatesToCSV(groups []models.DuplicateGroup) ([]byte, error) {
	var rows [][]string
	for i, g := range groups {
		for _, m := range g.Members {
			rows = append(rows, []string{strconv.Itoa(i + 1), g.Artist, g.Title, m.ID, m.Name, m.Album.Name})
		}
	}
	return writeCSV([]string{"Group", "Artist", "Title", "TrackID", "TrackTitle", "Album"}, rows)
}

// DuplicatesToMarkdown renders a report with one section per group.
func DuplicatesToMarkdown(p models.Playlist, groups []models.DuplicateGroup) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", p.Name)
	if url := p.ImageURL(); url != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", url)
	}
	fmt.Fprintf(&buf, "**Visibility**: %s\n", Visibility(p.Public))
	fmt.Fprintf(&buf, "**Duplicate groups**: %d\n\n", len(groups))

	if len(groups) == 0 {
		buf.WriteString("No Duplicates\n")
		return buf.Bytes()
	}

	for _, g := range groups {
		fmt.Fprintf(&buf, "## %s - %s\n\n", g.Artist, displayTitle(g))
		for i, m := range g.Members {
			fmt.Fprintf(&buf, "%d. %s (%s) `%s`\n", i+1, m.Name, m.Album.Name, m.ID)
		}
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

// RenderDuplicates renders a duplicate report in the requested format.
func RenderDuplicates(p models.Playlist, groups []models.DuplicateGroup, format Format, pretty bool) ([]byte, error) {
	switch format {
	case Text:
		return DuplicatesToText(p, groups), nil
	case JSON:
		return shared.MarshalJSON(struct {
			Playlist string                  `json:"playlist"`
			Groups   []models.DuplicateGroup `json:"groups"`
		}{Playlist: p.ID, Groups: groups}, pretty)
	case CSV:
		return DuplicatesToCSV(groups)
	case Markdown:
		return DuplicatesToMarkdown(p, groups), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteFile writes rendered output to path, creating parent directories.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func writeCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// displayTitle prefers the first member's original casing over the lowercased key.
func displayTitle(g models.DuplicateGroup) string {
	if len(g.Members) > 0 {
		return g.Members[0].Name
	}
	return g.Title
}

func ownerName(o models.Owner) string {
	if o.DisplayName != "" {
		return o.DisplayName
	}
	return o.ID
}
