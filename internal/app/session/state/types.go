// Package state provides the published client state.
package state

import (
	"github.com/osa030/bytebeats/internal/app/playback"
	"github.com/osa030/bytebeats/internal/app/stream"
	"github.com/osa030/bytebeats/internal/domain/listener"
)

// Phase represents the client lifecycle phase derived from connection and auth state.
type Phase int

const (
	PhaseOffline        Phase = iota // Disconnected, nothing scheduled
	PhaseReconnecting                // Disconnected, re-dial scheduled
	PhaseConnecting                  // Dial in progress
	PhaseAwaitingAuth                // Connected, credentials needed
	PhaseAuthenticating              // Credentials sent
	PhaseReady                       // Authenticated
	PhaseClosed                      // Client shut down
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseOffline:
		return "offline"
	case PhaseReconnecting:
		return "reconnecting"
	case PhaseConnecting:
		return "connecting"
	case PhaseAwaitingAuth:
		return "awaiting_auth"
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseReady:
		return "ready"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// DerivePhase maps a session to its phase.
func DerivePhase(s listener.Session, reconnectPending, closed bool) Phase {
	if closed {
		return PhaseClosed
	}
	switch s.Conn {
	case listener.Connecting:
		return PhaseConnecting
	case listener.Connected:
		switch s.Auth {
		case listener.Authenticated:
			return PhaseReady
		case listener.Authenticating:
			return PhaseAuthenticating
		default:
			return PhaseAwaitingAuth
		}
	default:
		if reconnectPending {
			return PhaseReconnecting
		}
		return PhaseOffline
	}
}

// Status is a point-in-time copy of everything the presentation layer shows.
type Status struct {
	SequenceNo uint64 // Assigned on broadcast
	Phase      Phase
	Session    listener.Session
	Catalog    []string
	Current    string // Selected track, may differ from Playback.Loaded while loading
	Playback   playback.Snapshot
	Stream     stream.Snapshot
	Dropped    int // Fragments dropped outside an active stream
}

// Clone returns a deep copy.
func (s Status) Clone() Status {
	c := s
	if s.Catalog != nil {
		c.Catalog = append([]string(nil), s.Catalog...)
	}
	if s.Session.ConnectedAt != nil {
		t := *s.Session.ConnectedAt
		c.Session.ConnectedAt = &t
	}
	return c
}
