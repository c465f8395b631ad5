package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/osa030/bytebeats/internal/domain/listener"
)

func TestDerivePhase(t *testing.T) {
	tests := []struct {
		name     string
		conn     listener.ConnState
		auth     listener.AuthState
		pending  bool
		closed   bool
		expected Phase
	}{
		{name: "offline", conn: listener.Disconnected, expected: PhaseOffline},
		{name: "reconnect pending", conn: listener.Disconnected, pending: true, expected: PhaseReconnecting},
		{name: "connecting", conn: listener.Connecting, expected: PhaseConnecting},
		{name: "awaiting auth", conn: listener.Connected, auth: listener.Unauthenticated, expected: PhaseAwaitingAuth},
		{name: "authenticating", conn: listener.Connected, auth: listener.Authenticating, expected: PhaseAuthenticating},
		{name: "ready", conn: listener.Connected, auth: listener.Authenticated, expected: PhaseReady},
		{name: "closed wins", conn: listener.Connected, auth: listener.Authenticated, closed: true, expected: PhaseClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := listener.Session{Conn: tt.conn, Auth: tt.auth}
			assert.Equal(t, tt.expected, DerivePhase(s, tt.pending, tt.closed))
		})
	}
}

func TestManager_StoreDetectsChanges(t *testing.T) {
	m := New("session-1")
	assert.Equal(t, "session-1", m.GetSessionID())

	s := Status{Phase: PhaseOffline, Session: listener.Session{ID: "session-1"}}
	assert.True(t, m.Store(s), "first store always counts")
	assert.False(t, m.Store(s))
	assert.Equal(t, uint64(1), m.Version())

	s.SequenceNo = 99
	assert.False(t, m.Store(s), "sequence numbers are ignored")

	s.Catalog = []string{"one.mp3"}
	assert.True(t, m.Store(s))

	now := time.Now()
	s.Session.ConnectedAt = &now
	assert.True(t, m.Store(s))
	assert.Equal(t, uint64(3), m.Version())
}

func TestManager_SnapshotIsACopy(t *testing.T) {
	m := New("session-1")
	catalog := []string{"one.mp3", "two.mp3"}
	m.Store(Status{Phase: PhaseReady, Catalog: catalog})

	catalog[0] = "mutated"
	snap := m.Snapshot()
	assert.Equal(t, []string{"one.mp3", "two.mp3"}, snap.Catalog)

	snap.Catalog[1] = "mutated"
	assert.Equal(t, "two.mp3", m.Snapshot().Catalog[1])
	assert.Equal(t, PhaseReady, m.GetPhase())
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "awaiting_auth", PhaseAwaitingAuth.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
