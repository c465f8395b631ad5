// Package catalog provides the ordered set of tracks offered by the server.
package catalog

import (
	"github.com/samber/lo"

	"github.com/osa030/bytebeats/internal/domain/track"
)

// Catalog is an immutable, ordered list of tracks.
// A refresh from the server replaces the whole catalog.
type Catalog struct {
	tracks []track.Track
}

// New builds a catalog from the track names published by the server.
// Duplicate names keep their first position.
func New(names []string) Catalog {
	uniq := lo.Uniq(lo.Filter(names, func(name string, _ int) bool {
		return name != ""
	}))
	return Catalog{
		tracks: lo.Map(uniq, func(name string, _ int) track.Track {
			return track.New(name)
		}),
	}
}

// Tracks returns a copy of the tracks in catalog order.
func (c Catalog) Tracks() []track.Track {
	result := make([]track.Track, len(c.tracks))
	copy(result, c.tracks)
	return result
}

// Names returns all track names in catalog order.
func (c Catalog) Names() []string {
	return lo.Map(c.tracks, func(t track.Track, _ int) string {
		return t.Name
	})
}

// Len returns the number of tracks.
func (c Catalog) Len() int {
	return len(c.tracks)
}

// IndexOf returns the position of the named track, or -1.
func (c Catalog) IndexOf(name string) int {
	return lo.IndexOf(c.Names(), name)
}

// Contains checks if the named track is in the catalog.
func (c Catalog) Contains(name string) bool {
	return c.IndexOf(name) >= 0
}

// Get returns the named track.
func (c Catalog) Get(name string) (track.Track, bool) {
	return lo.Find(c.tracks, func(t track.Track) bool {
		return t.Name == name
	})
}

// Next returns the track following current in catalog order, wrapping to
// the first entry after the last one.
// Returns false if the catalog has fewer than two tracks, current is empty,
// or current is not in the catalog (e.g. stale after a refresh).
func (c Catalog) Next(current string) (track.Track, bool) {
	if current == "" || len(c.tracks) <= 1 {
		return track.Track{}, false
	}

	idx := c.IndexOf(current)
	if idx == -1 {
		return track.Track{}, false
	}

	return c.tracks[(idx+1)%len(c.tracks)], true
}
