// Package track provides the Track domain entity.
package track

// UnresolvedDuration is the duration label shown until a metadata source
// resolves the real length of a track.
const UnresolvedDuration = "00:00"

// Track represents a playable entry published by the media server.
// The name is the only key the server understands.
type Track struct {
	Name          string // Track name (unique within a catalog)
	DurationLabel string // Human-readable duration, resolved externally
}

// New creates a track with an unresolved duration label.
func New(name string) Track {
	return Track{
		Name:          name,
		DurationLabel: UnresolvedDuration,
	}
}

// IsZero reports whether the track is the zero value (no track selected).
func (t Track) IsZero() bool {
	return t.Name == ""
}

// Asset represents the reassembled media bytes of one track.
type Asset struct {
	Track Track  // Track the bytes belong to
	Data  []byte // Contiguous encoded media
}

// Size returns the asset size in bytes.
func (a Asset) Size() int {
	return len(a.Data)
}
