package catalog

import (
	"strings"

	"github.com/desertthunder/spotlist/internal/models"
)

// keySeparator joins artist name and title in a duplicate key. A control character is unlikely in either but
// not impossible.
const keySeparator = "\x1f"

// FindDuplicates groups tracks by artist name and lowercase title and returns every group with more than one
// member.
//
// A track credited to several artists is placed in one bucket per artist. Groups are ordered by the first
// appearance of their key and members keep playlist order. The result is empty, never nil, when no duplicates
// exist.
func FindDuplicates(tracks []models.Track) []models.DuplicateGroup {
	buckets := make(map[string]*models.DuplicateGroup)
	var order []string

	for _, track := range tracks {
		title := strings.ToLower(track.Name)
		for _, artist := range track.Artists {
			key := artist.Name + keySeparator + title
			group, ok := buckets[key]
			if !ok {
				group = &models.DuplicateGroup{Artist: artist.Name, Title: title}
				buckets[key] = group
				order = append(order, key)
			}
			group.Members = append(group.Members, track)
		}
	}

	groups := make([]models.DuplicateGroup, 0)
	for _, key := range order {
		if g := buckets[key]; len(g.Members) > 1 {
			groups = append(groups, *g)
		}
	}
	return groups
}
