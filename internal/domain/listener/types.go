package listener

// AuthState represents the authentication status of a session.
type AuthState int

const (
	Unauthenticated AuthState = iota // No credentials accepted
	Authenticating                   // Credentials sent, awaiting verdict
	Authenticated                    // Server accepted the credentials
)

// String returns the string representation of the auth state.
func (a AuthState) String() string {
	switch a {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// ConnState represents the transport connectivity of a session.
type ConnState int

const (
	Disconnected ConnState = iota // No live connection
	Connecting                    // Dial in progress
	Connected                     // Connection open
)

// String returns the string representation of the connection state.
func (c ConnState) String() string {
	switch c {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}
