package playback

// EventType represents a playback event type.
type EventType int

const (
	EventTrackLoaded  EventType = iota // Asset handed to media
	EventTrackStarted                  // First confirmed play of a loaded asset
	EventStateChanged                  // Pause, resume, mute or loading change
	EventTrackEnded                    // Asset played to the end
	EventPlayBlocked                   // Media rejected play
	EventDuration                      // Duration became known
	EventProgress                      // Periodic position sample
	EventMediaError                    // Media output failed
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackLoaded:
		return "track_loaded"
	case EventTrackStarted:
		return "track_started"
	case EventStateChanged:
		return "state_changed"
	case EventTrackEnded:
		return "track_ended"
	case EventPlayBlocked:
		return "play_blocked"
	case EventDuration:
		return "duration"
	case EventProgress:
		return "progress"
	case EventMediaError:
		return "media_error"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type  EventType
	State Snapshot // State after the event
	Err   error    // EventPlayBlocked, EventMediaError
}
