// Package transport provides the WebSocket connector to the media server.
package transport

import (
	"net"
	"net/url"
	"strconv"
)

// Scheme selects the plaintext or encrypted variant of the socket.
type Scheme int

const (
	SchemePlain  Scheme = iota // ws://
	SchemeSecure               // wss://
)

// Port conventions. They are a client-side convention, not negotiated.
const (
	DefaultPlainPort  = 8080
	DefaultSecurePort = 8443
)

// String returns the URL scheme.
func (s Scheme) String() string {
	switch s {
	case SchemeSecure:
		return "wss"
	default:
		return "ws"
	}
}

// DefaultPort returns the well-known port of the scheme.
func (s Scheme) DefaultPort() int {
	if s == SchemeSecure {
		return DefaultSecurePort
	}
	return DefaultPlainPort
}

// ParseScheme maps "ws"/"wss" (and "plain"/"secure") to a Scheme.
func ParseScheme(s string) (Scheme, bool) {
	switch s {
	case "ws", "plain", "":
		return SchemePlain, true
	case "wss", "secure":
		return SchemeSecure, true
	default:
		return SchemePlain, false
	}
}

// Endpoint identifies the media server socket.
type Endpoint struct {
	Host   string // Host name or IP
	Scheme Scheme // Plain or secure
	Port   int    // 0 selects the scheme's default port
	Path   string // Request path, "/" if empty
}

// NewEndpoint creates an endpoint on the scheme's default port.
func NewEndpoint(host string, scheme Scheme) Endpoint {
	return Endpoint{Host: host, Scheme: scheme}
}

// EffectivePort returns the port that will be dialed.
func (e Endpoint) EffectivePort() int {
	if e.Port > 0 {
		return e.Port
	}
	return e.Scheme.DefaultPort()
}

// URL returns the dial URL.
func (e Endpoint) URL() string {
	path := e.Path
	if path == "" {
		path = "/"
	}
	u := url.URL{
		Scheme: e.Scheme.String(),
		Host:   net.JoinHostPort(e.Host, strconv.Itoa(e.EffectivePort())),
		Path:   path,
	}
	return u.String()
}
