// Package listener provides the Session domain entity of the local listener.
package listener

import "time"

// Session represents one logical connection of the listener to the media server.
// It survives reconnect attempts; authentication does not.
type Session struct {
	ID          string     // UUID, stable across reconnects
	Username    string     // Last username submitted
	Auth        AuthState  // Authentication status
	Conn        ConnState  // Transport status
	LastError   string     // Last connectivity or stream error (empty if none)
	CreatedAt   time.Time  // First connect attempt
	ConnectedAt *time.Time // Time the current connection opened
	Attempts    int        // Consecutive connect attempts without success
}

// NewSession creates a new disconnected, unauthenticated session.
func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		Auth:      Unauthenticated,
		Conn:      Disconnected,
		CreatedAt: time.Now(),
	}
}

// BeginConnect records a connect attempt.
func (s *Session) BeginConnect() {
	s.Conn = Connecting
	s.Attempts++
}

// MarkConnected records that the transport opened.
func (s *Session) MarkConnected() {
	now := time.Now()
	s.Conn = Connected
	s.ConnectedAt = &now
	s.Attempts = 0
	s.LastError = ""
}

// MarkDisconnected records a transport close.
// Authentication never outlives the connection it was granted on.
func (s *Session) MarkDisconnected() {
	s.Conn = Disconnected
	s.ConnectedAt = nil
	s.Auth = Unauthenticated
}

// BeginAuth records that credentials were submitted.
func (s *Session) BeginAuth(username string) {
	s.Username = username
	s.Auth = Authenticating
}

// Authenticate marks the session as authenticated.
func (s *Session) Authenticate() {
	s.Auth = Authenticated
	s.LastError = ""
}

// Deauthenticate drops back to unauthenticated (server re-challenge or rejection).
func (s *Session) Deauthenticate() {
	s.Auth = Unauthenticated
}

// Fail records a user-visible error message.
func (s *Session) Fail(msg string) {
	s.LastError = msg
}

// IsConnected checks if the transport is open.
func (s *Session) IsConnected() bool {
	return s.Conn == Connected
}

// IsAuthenticated checks if the server accepted the credentials.
func (s *Session) IsAuthenticated() bool {
	return s.Auth == Authenticated
}

// CanRequest checks if the session may issue playback commands.
func (s *Session) CanRequest() bool {
	return s.IsConnected() && s.IsAuthenticated()
}
