// Package playback drives local playback of reassembled tracks.
package playback

import (
	"fmt"
	"time"

	"github.com/osa030/bytebeats/internal/domain/track"
)

// State represents the playback phase.
type State int

const (
	StateIdle    State = iota // Nothing loaded or playback finished
	StateLoading              // Track requested, asset not yet playing
	StatePlaying              // Media confirmed playback
	StatePaused               // Paused by the user
	StateBlocked              // Media refused to play; user must retry
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of the playback state.
type Snapshot struct {
	State           State
	Loaded          track.Track
	Playing         bool
	Muted           bool
	Loading         bool
	NeedsManualPlay bool
	Position        time.Duration
	Duration        time.Duration
	DurationKnown   bool
}

// Clock renders "MM:SS / MM:SS" with "--:--" for an unknown duration.
func (s Snapshot) Clock() string {
	total := "--:--"
	if s.DurationKnown {
		total = FormatClock(s.Duration)
	}
	return FormatClock(s.Position) + " / " + total
}

// FormatClock renders d as MM:SS. Minutes are not wrapped into hours.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
