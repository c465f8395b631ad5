package frame

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

// Credential errors
var (
	ErrEmptyUsername     = errors.New("username is required")
	ErrColonInCredential = errors.New("username and password must not contain ':'")
)

// CredentialSeparator joins username and password on the wire.
const CredentialSeparator = ":"

// Credentials encodes the unframed "username:password" login line.
// The wire format has no escaping, so a colon in either part is rejected
// instead of producing an ambiguous line.
func Credentials(username, password string) (string, error) {
	if username == "" {
		return "", ErrEmptyUsername
	}
	if strings.Contains(username, CredentialSeparator) || strings.Contains(password, CredentialSeparator) {
		return "", ErrColonInCredential
	}
	return username + CredentialSeparator + password, nil
}

// command is an outbound control envelope.
type command struct {
	Type Type   `json:"type"`
	Name string `json:"name,omitempty"`
}

// PlaySong encodes a PLAY_SONG request for the named track.
func PlaySong(name string) string {
	return encode(command{Type: TypePlaySong, Name: name})
}

// Resume encodes a RESUME notification.
func Resume() string {
	return encode(command{Type: TypeResume})
}

// Pause encodes a PAUSE notification.
func Pause() string {
	return encode(command{Type: TypePause})
}

func encode(c command) string {
	// Marshalling a struct of strings cannot fail.
	data, _ := json.Marshal(c)
	return string(data)
}
