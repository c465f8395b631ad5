package listener

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSession(t *testing.T) {
	session := NewSession("session-1")

	assert.Equal(t, "session-1", session.ID)
	assert.Equal(t, Unauthenticated, session.Auth)
	assert.Equal(t, Disconnected, session.Conn)
	assert.Empty(t, session.LastError)
	assert.Nil(t, session.ConnectedAt)
	assert.Equal(t, 0, session.Attempts)
	assert.False(t, session.CreatedAt.IsZero())
}

func TestSession_CanRequest(t *testing.T) {
	tests := []struct {
		name     string
		auth     AuthState
		conn     ConnState
		expected bool
	}{
		{
			name:     "connected and authenticated",
			auth:     Authenticated,
			conn:     Connected,
			expected: true,
		},
		{
			name:     "connected, authenticating",
			auth:     Authenticating,
			conn:     Connected,
			expected: false,
		},
		{
			name:     "connected, unauthenticated",
			auth:     Unauthenticated,
			conn:     Connected,
			expected: false,
		},
		{
			name:     "authenticated but connecting",
			auth:     Authenticated,
			conn:     Connecting,
			expected: false,
		},
		{
			name:     "disconnected",
			auth:     Unauthenticated,
			conn:     Disconnected,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &Session{
				ID:   "test-id",
				Auth: tt.auth,
				Conn: tt.conn,
			}

			assert.Equal(t, tt.expected, session.CanRequest())
		})
	}
}

func TestSession_ConnectWorkflow(t *testing.T) {
	session := NewSession("test-id")

	session.BeginConnect()
	session.BeginConnect()
	assert.Equal(t, Connecting, session.Conn)
	assert.Equal(t, 2, session.Attempts)

	session.Fail("dial failed")
	session.MarkConnected()
	assert.True(t, session.IsConnected())
	assert.NotNil(t, session.ConnectedAt)
	assert.Equal(t, 0, session.Attempts, "attempts reset once connected")
	assert.Empty(t, session.LastError, "connectivity error cleared once connected")

	session.BeginAuth("alice")
	assert.Equal(t, Authenticating, session.Auth)
	assert.Equal(t, "alice", session.Username)

	session.Authenticate()
	assert.True(t, session.CanRequest())

	session.MarkDisconnected()
	assert.Equal(t, Disconnected, session.Conn)
	assert.Equal(t, Unauthenticated, session.Auth, "auth is cleared on close")
	assert.Nil(t, session.ConnectedAt)
	assert.Equal(t, "alice", session.Username, "username survives for the next login")
}

func TestSession_Deauthenticate(t *testing.T) {
	session := NewSession("test-id")
	session.MarkConnected()
	session.Authenticate()

	session.Deauthenticate()

	assert.Equal(t, Unauthenticated, session.Auth)
	assert.True(t, session.IsConnected(), "re-challenge does not drop the connection")
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "authenticating", Authenticating.String())
	assert.Equal(t, "unauthenticated", Unauthenticated.String())
	assert.Equal(t, "unknown", AuthState(42).String())

	assert.Equal(t, "connected", Connected.String())
	assert.Equal(t, "connecting", Connecting.String())
	assert.Equal(t, "disconnected", Disconnected.String())
	assert.Equal(t, "unknown", ConnState(-1).String())
}
