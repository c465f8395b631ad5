package session

import (
	"github.com/osa030/bytebeats/internal/app/playback"
	"github.com/osa030/bytebeats/internal/infra/transport"
)

// EventKind represents the source of a loop event.
type EventKind int

const (
	EventTransportOpen    EventKind = iota // Connection opened
	EventTransportMessage                  // Inbound frame
	EventTransportClose                    // Connection closed
	EventTransportError                    // Connection-level failure
	EventPlayback                          // Playback controller event
	EventCommand                           // User command
	EventReconnectDue                      // Reconnect timer fired
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventTransportOpen:
		return "transport_open"
	case EventTransportMessage:
		return "transport_message"
	case EventTransportClose:
		return "transport_close"
	case EventTransportError:
		return "transport_error"
	case EventPlayback:
		return "playback"
	case EventCommand:
		return "command"
	case EventReconnectDue:
		return "reconnect_due"
	default:
		return "unknown"
	}
}

// CommandKind represents a user command.
type CommandKind int

const (
	CommandLogin CommandKind = iota
	CommandPlay
	CommandPause
	CommandResume
	CommandTogglePause
	CommandSetMuted
	CommandToggleMute
	CommandNext
	CommandConnect
	CommandDisconnect
	CommandClose
)

// String returns the string representation of the command kind.
func (c CommandKind) String() string {
	switch c {
	case CommandLogin:
		return "login"
	case CommandPlay:
		return "play"
	case CommandPause:
		return "pause"
	case CommandResume:
		return "resume"
	case CommandTogglePause:
		return "toggle_pause"
	case CommandSetMuted:
		return "set_muted"
	case CommandToggleMute:
		return "toggle_mute"
	case CommandNext:
		return "next"
	case CommandConnect:
		return "connect"
	case CommandDisconnect:
		return "disconnect"
	case CommandClose:
		return "close"
	default:
		return "unknown"
	}
}

// Command is a user request processed by the loop.
type Command struct {
	Kind     CommandKind
	Name     string // CommandPlay
	Username string // CommandLogin
	Line     string // CommandLogin: encoded credential line
	Muted    bool   // CommandSetMuted
}

// Event is one input to the session loop.
type Event struct {
	Kind     EventKind
	Conn     uint64            // Transport events: connection id
	Payload  transport.Payload // EventTransportMessage
	Code     int               // EventTransportClose
	Reason   string            // EventTransportClose
	Detail   string            // EventTransportError
	Playback playback.Event    // EventPlayback
	Command  Command           // EventCommand
}
