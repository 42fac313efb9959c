package catalog

import (
	"testing"

	"github.com/desertthunder/spotlist/internal/models"
)

func track(id, title string, artists ...string) models.Track {
	t := models.Track{ID: id, Name: title}
	for _, name := range artists {
		t.Artists = append(t.Artists, models.ArtistRef{ID: name, Name: name})
	}
	return t
}

func memberIDs(g models.DuplicateGroup) []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

func TestFindDuplicates(t *testing.T) {
	t.Run("Unique Tracks", func(t *testing.T) {
		groups := FindDuplicates([]models.Track{
			track("1", "Song", "Band"),
			track("2", "Other Song", "Band"),
			track("3", "Song", "Another Band"),
		})
		if groups == nil || len(groups) != 0 {
			t.Errorf("expected empty non-nil result, got %#v", groups)
		}
	})

	t.Run("Empty Playlist", func(t *testing.T) {
		if groups := FindDuplicates(nil); groups == nil || len(groups) != 0 {
			t.Errorf("expected empty non-nil result, got %#v", groups)
		}
	})

	t.Run("Case Insensitive Title", func(t *testing.T) {
		groups := FindDuplicates([]models.Track{
			track("1", "Song", "Band"),
			track("2", "SONG", "Band"),
		})
		if len(groups) != 1 {
			t.Fatalf("expected one group, got %d", len(groups))
		}
		g := groups[0]
		if g.Artist != "Band" || g.Title != "song" {
			t.Errorf("unexpected key %q/%q", g.Artist, g.Title)
		}
		if ids := memberIDs(g); len(ids) != 2 || ids[0] != "1" || ids[1] != "2" {
			t.Errorf("unexpected members %v", ids)
		}
	})

	t.Run("Artist Name Is Case Sensitive", func(t *testing.T) {
		groups := FindDuplicates([]models.Track{
			track("1", "Song", "Band"),
			track("2", "Song", "BAND"),
		})
		if len(groups) != 0 {
			t.Errorf("expected no groups, got %d", len(groups))
		}
	})

	t.Run("Only The Shared Artist Bucket Is Reported", func(t *testing.T) {
		groups := FindDuplicates([]models.Track{
			track("1", "Song", "Band", "Guest"),
			track("2", "Song", "Band"),
		})
		if len(groups) != 1 {
			t.Fatalf("expected one group, got %d", len(groups))
		}
		if groups[0].Artist != "Band" {
			t.Errorf("expected the Band bucket, got %q", groups[0].Artist)
		}
		if ids := memberIDs(groups[0]); len(ids) != 2 {
			t.Errorf("expected both tracks, got %v", ids)
		}
	})

	t.Run("Track In Several Groups", func(t *testing.T) {
		groups := FindDuplicates([]models.Track{
			track("1", "Song", "A", "B"),
			track("2", "Song", "A"),
			track("3", "Song", "B"),
		})
		if len(groups) != 2 {
			t.Fatalf("expected two groups, got %d", len(groups))
		}
		if groups[0].Artist != "A" || groups[1].Artist != "B" {
			t.Errorf("expected first-seen order A, B, got %s, %s", groups[0].Artist, groups[1].Artist)
		}
		if ids := memberIDs(groups[1]); ids[0] != "1" || ids[1] != "3" {
			t.Errorf("expected playlist order in group, got %v", ids)
		}
	})

	t.Run("First Seen Group Order", func(t *testing.T) {
		groups := FindDuplicates([]models.Track{
			track("1", "Zeta", "Z"),
			track("2", "Alpha", "A"),
			track("3", "alpha", "A"),
			track("4", "zeta", "Z"),
			track("5", "ZETA", "Z"),
		})
		if len(groups) != 2 {
			t.Fatalf("expected two groups, got %d", len(groups))
		}
		if groups[0].Title != "zeta" || len(groups[0].Members) != 3 {
			t.Errorf("expected zeta group first with 3 members, got %+v", groups[0])
		}
		if groups[1].Title != "alpha" {
			t.Errorf("expected alpha group second, got %q", groups[1].Title)
		}
	})

	t.Run("Separator Prevents Key Collisions", func(t *testing.T) {
		groups := FindDuplicates([]models.Track{
			track("1", "b c", "a"),
			track("2", "c", "a b"),
		})
		if len(groups) != 0 {
			t.Errorf("expected distinct keys, got %d groups", len(groups))
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		tracks := []models.Track{
			track("1", "x", "A", "B"), track("2", "X", "B", "A"), track("3", "y", "C"), track("4", "Y", "C"),
		}
		first := FindDuplicates(tracks)
		for range 10 {
			again := FindDuplicates(tracks)
			if len(again) != len(first) {
				t.Fatal("result length changed between runs")
			}
			for i := range again {
				if again[i].Artist != first[i].Artist || again[i].Title != first[i].Title {
					t.Fatal("group order changed between runs")
				}
			}
		}
	})
}
