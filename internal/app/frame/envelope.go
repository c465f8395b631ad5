// Package frame classifies inbound socket messages and encodes outbound commands.
package frame

// Type is the discriminator of a control envelope.
type Type string

// Server → client envelope types.
const (
	TypeAuthRequired Type = "AUTH_REQUIRED"
	TypeAuthSuccess  Type = "AUTH_SUCCESS"
	TypeAuthFailed   Type = "AUTH_FAILED"
	TypeSongList     Type = "SONG_LIST"
	TypeSongPlaying  Type = "SONG_PLAYING"
	TypeSongMetadata Type = "SONG_METADATA"
	TypeSongEnded    Type = "SONG_ENDED"
	TypeStreamError  Type = "STREAM_ERROR"
)

// Client → server envelope types.
const (
	TypePlaySong Type = "PLAY_SONG"
	TypeResume   Type = "RESUME"
	TypePause    Type = "PAUSE"
)

// Known reports whether the client understands the envelope type.
func (t Type) Known() bool {
	switch t {
	case TypeAuthRequired, TypeAuthSuccess, TypeAuthFailed, TypeSongList,
		TypeSongPlaying, TypeSongMetadata, TypeSongEnded, TypeStreamError:
		return true
	default:
		return false
	}
}

// CatalogPayload is carried by AUTH_SUCCESS and SONG_LIST.
type CatalogPayload struct {
	Songs []string `mapstructure:"songs"`
}

// SongPayload is carried by SONG_PLAYING.
type SongPayload struct {
	Name string `mapstructure:"name"`
}

// MetadataPayload is carried by SONG_METADATA. Size is a hint only.
type MetadataPayload struct {
	Name string `mapstructure:"name"`
	Size int64  `mapstructure:"size"`
}

// ErrorPayload is carried by STREAM_ERROR and AUTH_FAILED.
type ErrorPayload struct {
	Error string `mapstructure:"error"`
}

// Envelope is a decoded control message.
// Exactly one payload pointer is set for types that carry one.
type Envelope struct {
	Type     Type
	Catalog  *CatalogPayload
	Song     *SongPayload
	Metadata *MetadataPayload
	Error    *ErrorPayload
}

// Known reports whether the envelope type is understood.
func (e Envelope) Known() bool {
	return e.Type.Known()
}

// Songs returns the attached catalog, or nil.
func (e Envelope) Songs() []string {
	if e.Catalog == nil {
		return nil
	}
	return e.Catalog.Songs
}

// Name returns the track name of SONG_PLAYING / SONG_METADATA.
func (e Envelope) Name() string {
	switch {
	case e.Song != nil:
		return e.Song.Name
	case e.Metadata != nil:
		return e.Metadata.Name
	default:
		return ""
	}
}

// Message returns the error text of STREAM_ERROR / AUTH_FAILED.
func (e Envelope) Message() string {
	if e.Error == nil {
		return ""
	}
	return e.Error.Error
}
