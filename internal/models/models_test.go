package models

import "testing"

func TestRequestDescriptorIdentity(t *testing.T) {
	tc := []struct {
		name string
		desc RequestDescriptor
		want string
	}{
		{
			name: "endpoint only",
			desc: RequestDescriptor{Endpoint: "/me/playlists"},
			want: "/me/playlists",
		},
		{
			name: "offset excluded",
			desc: RequestDescriptor{Endpoint: "/me/playlists", Query: map[string]string{"offset": "100", "limit": "50"}},
			want: "/me/playlists?limit=50",
		},
		{
			name: "keys sorted",
			desc: RequestDescriptor{Endpoint: "/artists/1/albums", Query: map[string]string{"market": "GB", "include_groups": "album"}},
			want: "/artists/1/albums?include_groups=album&market=GB",
		},
		{
			name: "page size becomes limit",
			desc: RequestDescriptor{Endpoint: "/playlists/p/tracks", PageSize: 100},
			want: "/playlists/p/tracks?limit=100",
		},
		{
			name: "explicit limit wins over page size",
			desc: RequestDescriptor{Endpoint: "/x", Query: map[string]string{"limit": "20"}, PageSize: 100},
			want: "/x?limit=20",
		},
		{
			name: "values escaped",
			desc: RequestDescriptor{Endpoint: "/x", Query: map[string]string{"fields": "items(id,name)"}},
			want: "/x?fields=items%28id%2Cname%29",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.desc.Identity(); got != tt.want {
				t.Errorf("Identity() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("resumed query shares identity", func(t *testing.T) {
		start := RequestDescriptor{Endpoint: "/me/playlists", Query: map[string]string{"limit": "50"}}
		resumed := start.WithQuery(OffsetParam, "150")

		if start.Identity() != resumed.Identity() {
			t.Errorf("expected %q == %q", start.Identity(), resumed.Identity())
		}
		if _, ok := start.Query[OffsetParam]; ok {
			t.Error("WithQuery must not mutate the original descriptor")
		}
	})
}

func TestTrackArtistNames(t *testing.T) {
	track := Track{Name: "Song", Artists: []ArtistRef{{Name: "A"}, {Name: "B"}}}
	if got := track.ArtistNames(); got != "A, B" {
		t.Errorf("ArtistNames() = %q", got)
	}
}

func TestLoadStateString(t *testing.T) {
	for state, want := range map[LoadState]string{Unloaded: "unloaded", Pending: "pending", Loaded: "loaded", LoadState(9): "unknown"} {
		if got := state.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", state, got, want)
		}
	}
}

func TestImageURL(t *testing.T) {
	if (Artist{}).ImageURL() != "" {
		t.Error("expected empty url without images")
	}
	p := Playlist{Images: []Image{{URL: "big"}, {URL: "small"}}}
	if p.ImageURL() != "big" {
		t.Errorf("expected first image, got %q", p.ImageURL())
	}
}
