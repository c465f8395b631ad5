package frame

import (
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/bytebeats/internal/infra/transport"
)

func TestClassify_Fragment(t *testing.T) {
	f := Classify(transport.Binary([]byte{0xff, 0xfb, 0x90}))

	assert.Equal(t, KindFragment, f.Kind)
	assert.Equal(t, []byte{0xff, 0xfb, 0x90}, f.Data)
}

func TestClassify_BinaryJSONIsStillFragment(t *testing.T) {
	f := Classify(transport.Binary([]byte(`{"type":"SONG_ENDED"}`)))

	assert.Equal(t, KindFragment, f.Kind, "binary frames are media even if they look like JSON")
}

func TestClassify_Envelopes(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, env Envelope)
	}{
		{
			name: "auth required",
			raw:  `{"type":"AUTH_REQUIRED"}`,
			check: func(t *testing.T, env Envelope) {
				assert.Equal(t, TypeAuthRequired, env.Type)
				assert.Nil(t, env.Catalog)
			},
		},
		{
			name: "auth success with catalog",
			raw:  `{"type":"AUTH_SUCCESS","songs":["one.mp3","two.mp3"]}`,
			check: func(t *testing.T, env Envelope) {
				assert.Equal(t, TypeAuthSuccess, env.Type)
				assert.Equal(t, []string{"one.mp3", "two.mp3"}, env.Songs())
			},
		},
		{
			name: "song list",
			raw:  `{"type":"SONG_LIST","songs":[]}`,
			check: func(t *testing.T, env Envelope) {
				assert.Equal(t, TypeSongList, env.Type)
				assert.Empty(t, env.Songs())
			},
		},
		{
			name: "song playing",
			raw:  `{"type":"SONG_PLAYING","name":"one.mp3"}`,
			check: func(t *testing.T, env Envelope) {
				assert.Equal(t, TypeSongPlaying, env.Type)
				assert.Equal(t, "one.mp3", env.Name())
			},
		},
		{
			name: "song metadata",
			raw:  `{"type":"SONG_METADATA","name":"one.mp3","size":4194304}`,
			check: func(t *testing.T, env Envelope) {
				require.NotNil(t, env.Metadata)
				assert.Equal(t, "one.mp3", env.Name())
				assert.Equal(t, int64(4194304), env.Metadata.Size)
			},
		},
		{
			name: "song ended",
			raw:  `{"type":"SONG_ENDED"}`,
			check: func(t *testing.T, env Envelope) {
				assert.Equal(t, TypeSongEnded, env.Type)
			},
		},
		{
			name: "stream error",
			raw:  `{"type":"STREAM_ERROR","error":"file not found"}`,
			check: func(t *testing.T, env Envelope) {
				assert.Equal(t, TypeStreamError, env.Type)
				assert.Equal(t, "file not found", env.Message())
			},
		},
		{
			name: "auth failed without message",
			raw:  `{"type":"AUTH_FAILED"}`,
			check: func(t *testing.T, env Envelope) {
				assert.Equal(t, TypeAuthFailed, env.Type)
				assert.Empty(t, env.Message())
			},
		},
		{
			name: "unknown type is forwarded, not malformed",
			raw:  `{"type":"VOLUME_CHANGED","level":3}`,
			check: func(t *testing.T, env Envelope) {
				assert.Equal(t, Type("VOLUME_CHANGED"), env.Type)
				assert.False(t, env.Known())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Classify(transport.Text(tt.raw))
			require.Equal(t, KindEnvelope, f.Kind, "err: %v", f.Err)
			tt.check(t, f.Envelope)
		})
	}
}

func TestClassify_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{
			name:    "plain text",
			raw:     "AUTH_REQUIRED",
			wantErr: ErrNotJSON,
		},
		{
			name:    "json array",
			raw:     `["SONG_ENDED"]`,
			wantErr: ErrNotJSON,
		},
		{
			name:    "json null",
			raw:     `null`,
			wantErr: ErrNotJSON,
		},
		{
			name:    "missing type",
			raw:     `{"name":"one.mp3"}`,
			wantErr: ErrMissingType,
		},
		{
			name:    "non-string type",
			raw:     `{"type":7}`,
			wantErr: ErrMissingType,
		},
		{
			name:    "songs with wrong element type",
			raw:     `{"type":"SONG_LIST","songs":[1,2]}`,
			wantErr: ErrInvalidFields,
		},
		{
			name:    "song playing without name",
			raw:     `{"type":"SONG_PLAYING"}`,
			wantErr: ErrInvalidFields,
		},
		{
			name:    "metadata size as string",
			raw:     `{"type":"SONG_METADATA","name":"a","size":"big"}`,
			wantErr: ErrInvalidFields,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Classify(transport.Text(tt.raw))

			assert.Equal(t, KindMalformed, f.Kind)
			assert.Equal(t, tt.raw, f.Raw)
			assert.True(t, errors.Is(f.Err, tt.wantErr), "got %v", f.Err)
		})
	}
}

func TestCredentials(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		expected string
		wantErr  error
	}{
		{
			name:     "plain credentials",
			username: "alice",
			password: "pw",
			expected: "alice:pw",
		},
		{
			name:     "empty password allowed",
			username: "alice",
			password: "",
			expected: "alice:",
		},
		{
			name:     "empty username",
			username: "",
			password: "pw",
			wantErr:  ErrEmptyUsername,
		},
		{
			name:     "colon in password",
			username: "alice",
			password: "p:w",
			wantErr:  ErrColonInCredential,
		},
		{
			name:     "colon in username",
			username: "al:ice",
			password: "pw",
			wantErr:  ErrColonInCredential,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := Credentials(tt.username, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, line)
		})
	}
}

func TestCommands(t *testing.T) {
	var play map[string]any
	require.NoError(t, json.Unmarshal([]byte(PlaySong("one.mp3")), &play))
	assert.Equal(t, map[string]any{"type": "PLAY_SONG", "name": "one.mp3"}, play)

	assert.JSONEq(t, `{"type":"RESUME"}`, Resume())
	assert.JSONEq(t, `{"type":"PAUSE"}`, Pause())
}
