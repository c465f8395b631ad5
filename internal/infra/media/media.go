// Package media provides audio output backends for reassembled tracks.
package media

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// Errors
var (
	ErrNoAsset     = errors.New("no asset loaded")
	ErrUnavailable = errors.New("audio output is not available in this build")
	ErrEmptyAsset  = errors.New("asset is empty")
	ErrClosed      = errors.New("player is closed")
)

// Backend names accepted by New.
const (
	BackendAuto = "auto"
	BackendBeep = "beep"
	BackendNull = "null"
)

// EventType represents a media event type.
type EventType int

const (
	EventMetadata EventType = iota // Duration became known
	EventEnded                     // Asset played to the end
	EventError                     // Output failed
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventMetadata:
		return "metadata"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is reported by a Player through its listener.
type Event struct {
	Type EventType
	Err  error // EventError only
}

// Listener receives media events. It is never called with a backend lock held.
type Listener func(Event)

// Player is an audio output capable of playing one in-memory asset at a time.
type Player interface {
	// Load replaces the current asset, releasing the previous one. Playback stays paused.
	Load(data []byte) error
	// Play starts or resumes the loaded asset. It may reject.
	Play() error
	Pause()
	SetMuted(muted bool)
	Position() time.Duration
	// Duration returns false until metadata is known.
	Duration() (time.Duration, bool)
	SetListener(l Listener)
	Close() error
}

// New creates a player for the named backend.
// "auto" selects beep when audio is compiled in and falls back to null.
func New(backend string) (Player, error) {
	switch strings.ToLower(backend) {
	case BackendNull:
		return NewNull(0), nil
	case BackendBeep:
		return NewBeep()
	case BackendAuto, "":
		if !AudioAvailable {
			zlog.Warn().Msg("media: audio not compiled in, using null output")
			return NewNull(0), nil
		}
		return NewBeep()
	default:
		return nil, errors.Newf("unknown media backend: %s", backend)
	}
}
