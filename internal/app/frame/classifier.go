package frame

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/bytebeats/internal/infra/transport"
)

// Errors
var (
	ErrNotJSON       = errors.New("control message is not a JSON object")
	ErrMissingType   = errors.New("control message has no type")
	ErrInvalidFields = errors.New("control message payload has invalid fields")
)

// Kind tags a classified frame.
type Kind int

const (
	KindFragment  Kind = iota // Binary media fragment
	KindEnvelope              // Decoded control envelope
	KindMalformed             // Undecodable text, dropped
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindFragment:
		return "fragment"
	case KindEnvelope:
		return "envelope"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Frame is the classified form of one inbound message.
type Frame struct {
	Kind     Kind
	Data     []byte   // KindFragment
	Envelope Envelope // KindEnvelope
	Raw      string   // KindMalformed
	Err      error    // KindMalformed
}

// Classify tags an inbound payload as a fragment, an envelope or malformed.
// It never fails: malformed control data is returned as KindMalformed and logged.
func Classify(p transport.Payload) Frame {
	if p.Binary {
		return Frame{Kind: KindFragment, Data: p.Data}
	}

	env, err := Decode(p.Data)
	if err != nil {
		raw := string(p.Data)
		zlog.Warn().Msgf("frame: dropping malformed control message: err=%v raw=%q", err, truncate(raw, 120))
		return Frame{Kind: KindMalformed, Raw: raw, Err: err}
	}

	if !env.Known() {
		zlog.Debug().Msgf("frame: unrecognized envelope type: type=%s", env.Type)
	}
	return Frame{Kind: KindEnvelope, Envelope: env}
}

// Decode parses a JSON control envelope.
// The type field selects the payload shape, which is then decoded with mapstructure.
// Unknown types decode successfully with no payload.
func Decode(data []byte) (Envelope, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return Envelope{}, ErrNotJSON
	}

	typ, ok := fields["type"].(string)
	if !ok || typ == "" {
		return Envelope{}, ErrMissingType
	}

	env := Envelope{Type: Type(typ)}
	var err error
	switch env.Type {
	case TypeAuthSuccess, TypeSongList:
		env.Catalog = &CatalogPayload{}
		err = decodePayload(fields, env.Catalog)
	case TypeSongPlaying:
		env.Song = &SongPayload{}
		err = decodePayload(fields, env.Song)
		if err == nil && env.Song.Name == "" {
			err = errors.New("name is required")
		}
	case TypeSongMetadata:
		env.Metadata = &MetadataPayload{}
		err = decodePayload(fields, env.Metadata)
	case TypeStreamError, TypeAuthFailed:
		env.Error = &ErrorPayload{}
		err = decodePayload(fields, env.Error)
	}
	if err != nil {
		return Envelope{}, errors.Wrapf(ErrInvalidFields, "%s: %v", typ, err)
	}

	return env, nil
}

func decodePayload(fields map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "mapstructure",
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}
	return decoder.Decode(fields)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
