package state

import (
	"sync"

	"github.com/osa030/bytebeats/internal/domain/listener"
)

// Manager holds the latest published status with thread-safe access.
// The session loop is the only writer.
type Manager struct {
	mu sync.RWMutex

	status  Status
	version uint64
}

// New creates a new state manager for the session.
func New(sessionID string) *Manager {
	m := &Manager{}
	m.status.Session.ID = sessionID
	return m
}

// Store replaces the published status and reports whether it differs from the previous one.
func (m *Manager) Store(s Status) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	changed := m.version == 0 || !equal(m.status, s)
	m.status = s.Clone()
	if changed {
		m.version++
	}
	return changed
}

// Snapshot returns a copy of the published status.
func (m *Manager) Snapshot() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Clone()
}

// GetPhase returns the published phase.
func (m *Manager) GetPhase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Phase
}

// GetSessionID returns the session ID.
func (m *Manager) GetSessionID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Session.ID
}

// Version returns the number of distinct statuses stored.
func (m *Manager) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// equal compares statuses ignoring the sequence number.
func equal(a, b Status) bool {
	if a.Phase != b.Phase || a.Current != b.Current || a.Dropped != b.Dropped {
		return false
	}
	if a.Playback != b.Playback || a.Stream != b.Stream {
		return false
	}
	if !sameSession(a.Session, b.Session) {
		return false
	}
	if len(a.Catalog) != len(b.Catalog) {
		return false
	}
	for i := range a.Catalog {
		if a.Catalog[i] != b.Catalog[i] {
			return false
		}
	}
	return true
}

func sameSession(a, b listener.Session) bool {
	if (a.ConnectedAt == nil) != (b.ConnectedAt == nil) {
		return false
	}
	if a.ConnectedAt != nil && !a.ConnectedAt.Equal(*b.ConnectedAt) {
		return false
	}
	return a.ID == b.ID && a.Username == b.Username && a.Auth == b.Auth &&
		a.Conn == b.Conn && a.LastError == b.LastError && a.Attempts == b.Attempts
}
