// Package guard provides precondition checks for user commands.
package guard

import (
	"sort"

	"github.com/osa030/bytebeats/internal/domain/catalog"
	"github.com/osa030/bytebeats/internal/domain/listener"
)

// Command identifies a user command subject to guards.
type Command int

const (
	CommandPlay   Command = iota // Request a track
	CommandNext                  // Request the catalog successor
	CommandPause                 // Pause local playback
	CommandResume                // Resume local playback
	CommandLogin                 // Submit credentials
)

// String returns the string representation of the command.
func (c Command) String() string {
	switch c {
	case CommandPlay:
		return "play"
	case CommandNext:
		return "next"
	case CommandPause:
		return "pause"
	case CommandResume:
		return "resume"
	case CommandLogin:
		return "login"
	default:
		return "unknown"
	}
}

// Request is a command to be checked.
type Request struct {
	Command Command
	Track   string // CommandPlay only
}

// Subject is the client state the command would act on.
type Subject struct {
	Session *listener.Session
	Catalog catalog.Catalog
	Current string // Currently selected track
}

// Result represents the result of a guard check.
type Result struct {
	Accepted bool
	Code     string // e.g., "not_connected", "not_authenticated", "no_track"
}

// Accept returns an accepted result.
func Accept() Result {
	return Result{Accepted: true}
}

// Reject returns a rejected result with the given code.
func Reject(code string) Result {
	return Result{Accepted: false, Code: code}
}

// Guard is the interface for command preconditions.
type Guard interface {
	// Name returns the guard name.
	Name() string
	// Description returns a human-readable description.
	Description() string
	// ReturnCodes returns the codes this guard can return.
	ReturnCodes() []string
	// AppliesTo returns true if this guard should be applied to the command.
	AppliesTo(cmd Command) bool
	// Check performs the guard check.
	Check(req Request, s Subject) Result
}

// registry holds registered guard factories.
var registry = make(map[string]func() Guard)

// Register registers a guard factory.
func Register(name string, factory func() Guard) {
	registry[name] = factory
}

// GetRegistered returns all registered guard factories.
func GetRegistered() map[string]func() Guard {
	return registry
}

// RegisteredNames returns the registered guard names in sorted order.
func RegisteredNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
