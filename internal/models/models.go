// package models defines the data model for the playlist inspector
package models

import (
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// OffsetParam and LimitParam are the query parameters used for offset pagination.
const (
	OffsetParam = "offset"
	LimitParam  = "limit"
)

// RequestDescriptor identifies a request against the remote catalog.
//
// Endpoint is a path relative to the API base URL ("/me/playlists") or an absolute URL.
type RequestDescriptor struct {
	Endpoint string
	Query    map[string]string
	PageSize int // optional; zero lets the server pick the page size
}

// Identity returns the canonical request identity: the endpoint plus every query parameter except the running offset,
// in sorted key order.
func (d RequestDescriptor) Identity() string {
	keys := make([]string, 0, len(d.Query))
	for k := range d.Query {
		if k == OffsetParam {
			continue
		}
		keys = append(keys, k)
	}
	if d.PageSize > 0 {
		if _, ok := d.Query[LimitParam]; !ok {
			keys = append(keys, LimitParam)
		}
	}
	if len(keys) == 0 {
		return d.Endpoint
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, ok := d.Query[k]
		if !ok && k == LimitParam {
			v = strconv.Itoa(d.PageSize)
		}
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(v))
	}
	return d.Endpoint + "?" + strings.Join(parts, "&")
}

// WithQuery returns a copy of d with key set to value.
func (d RequestDescriptor) WithQuery(key, value string) RequestDescriptor {
	q := make(map[string]string, len(d.Query)+1)
	for k, v := range d.Query {
		q[k] = v
	}
	q[key] = value
	d.Query = q
	return d
}

// Values returns the query as [url.Values].
func (d RequestDescriptor) Values() url.Values {
	v := url.Values{}
	for k, val := range d.Query {
		v.Set(k, val)
	}
	return v
}

// Page is one page of an offset-paginated collection.
type Page struct {
	Items  []json.RawMessage `json:"items"`
	Total  int               `json:"total"`
	Offset int               `json:"offset"`
	Limit  int               `json:"limit"`
}

// Image is an artwork reference.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height,omitempty"`
	Width  int    `json:"width,omitempty"`
}

// Owner is the user owning a playlist.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// User is the authenticated user's profile.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Country     string `json:"country,omitempty"`
	Product     string `json:"product,omitempty"`
}

// ArtistRef is a shallow artist credit on a track.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AlbumRef is the album a track belongs to.
type AlbumRef struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Images []Image `json:"images,omitempty"`
}

// ImageURL returns the first (largest) image URL, or "".
func (a AlbumRef) ImageURL() string {
	return firstImage(a.Images)
}

// Track is a playlist entry's track.
type Track struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Album      AlbumRef    `json:"album"`
	Artists    []ArtistRef `json:"artists"`
	DurationMS int         `json:"duration_ms,omitempty"`
	IsLocal    bool        `json:"is_local,omitempty"`
	URI        string      `json:"uri,omitempty"`
}

// ArtistNames returns the credited artist names joined with ", ".
func (t Track) ArtistNames() string {
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// PlaylistItem is one element of a playlist tracks page. Track is nil for removed or unavailable tracks.
type PlaylistItem struct {
	AddedAt string `json:"added_at"`
	Track   *Track `json:"track"`
}

// Artist is a fully resolved artist record.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres,omitempty"`
	Images     []Image  `json:"images,omitempty"`
	Popularity int      `json:"popularity,omitempty"`
	URI        string   `json:"uri,omitempty"`
}

// ImageURL returns the first (largest) image URL, or "".
func (a Artist) ImageURL() string {
	return firstImage(a.Images)
}

// Album is an entry of an artist's albums collection.
type Album struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	AlbumType   string  `json:"album_type"`
	ReleaseDate string  `json:"release_date"`
	TotalTracks int     `json:"total_tracks"`
	Images      []Image `json:"images,omitempty"`
}

// Playlist is a user playlist. Tracks and Artists are filled in place once fetched.
type Playlist struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Images  []Image `json:"images,omitempty"`
	Owner   Owner   `json:"owner"`
	Public  bool    `json:"public"`
	Summary struct {
		Total int `json:"total"`
	} `json:"tracks"`

	Tracks        []Track  `json:"-"`
	TracksLoaded  bool     `json:"-"`
	Artists       []Artist `json:"-"`
	ArtistsLoaded bool     `json:"-"`
}

// ImageURL returns the first (largest) image URL, or "".
func (p Playlist) ImageURL() string {
	return firstImage(p.Images)
}

// LoadState is the lifecycle of an artist's album sub-collection.
type LoadState int

const (
	Unloaded LoadState = iota
	Pending
	Loaded
)

func (s LoadState) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Pending:
		return "pending"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// DuplicateGroup is a set of tracks sharing an artist credit and a case-insensitive title.
type DuplicateGroup struct {
	Artist  string  `json:"artist"`
	Title   string  `json:"title"` // lowercased
	Members []Track `json:"members"`
}

// CollectionSnapshot is a completed collection persisted by the sqlite cache.
type CollectionSnapshot struct {
	ID        string     `json:"id"`
	Identity  string     `json:"identity"`
	Endpoint  string     `json:"endpoint"`
	ItemCount int        `json:"item_count"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func firstImage(images []Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
