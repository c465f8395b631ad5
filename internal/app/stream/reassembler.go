// Package stream provides reassembly of a track's binary fragments.
package stream

import (
	"fmt"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/bytebeats/internal/domain/track"
)

// Errors
var (
	ErrNoActiveStream = errors.New("no active stream")
	ErrEmptyStream    = errors.New("stream ended without media data")
	ErrStreamAborted  = errors.New("stream aborted by server")
)

// AbortedError carries the server's reason for aborting a stream.
type AbortedError struct {
	Track  string
	Detail string
}

func (e *AbortedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("stream of %q aborted", e.Track)
	}
	return fmt.Sprintf("stream of %q aborted: %s", e.Track, e.Detail)
}

// Is makes errors.Is(err, ErrStreamAborted) hold.
func (e *AbortedError) Is(target error) bool {
	return target == ErrStreamAborted
}

// active is the in-flight transfer of one track.
type active struct {
	track        track.Track
	fragments    [][]byte
	bytes        int64
	receiving    bool
	expectedSize int64
}

// Snapshot describes the in-flight stream for display.
type Snapshot struct {
	Track        string // Empty when no stream is active
	Receiving    bool
	Fragments    int
	Bytes        int64
	ExpectedSize int64 // 0 when unknown
}

// Progress returns the received fraction in [0,1], or -1 if the size is unknown.
func (s Snapshot) Progress() float64 {
	if s.ExpectedSize <= 0 {
		return -1
	}
	p := float64(s.Bytes) / float64(s.ExpectedSize)
	if p > 1 {
		return 1
	}
	return p
}

// Reassembler accumulates the fragments of the single active stream.
// It is not safe for concurrent use; the session loop is its only caller.
type Reassembler struct {
	current *active
	dropped int
}

// NewReassembler creates an idle reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{}
}

// Start opens a new stream for name, discarding any previous stream,
// complete or not.
func (r *Reassembler) Start(name string) {
	if r.current != nil && (r.current.receiving || len(r.current.fragments) > 0) {
		zlog.Warn().Msgf("stream: superseding unfinished stream: track=%s fragments=%d bytes=%d",
			r.current.track.Name, len(r.current.fragments), r.current.bytes)
	}

	r.current = &active{
		track:     track.New(name),
		fragments: make([][]byte, 0, 16),
		receiving: true,
	}
	zlog.Debug().Msgf("stream: started: track=%s", name)
}

// Append adds a fragment to the active stream in arrival order.
// Fragments outside a receiving stream are dropped and counted.
func (r *Reassembler) Append(data []byte) bool {
	if r.current == nil || !r.current.receiving {
		r.dropped++
		zlog.Warn().Msgf("stream: dropping unexpected fragment: bytes=%d dropped_total=%d", len(data), r.dropped)
		return false
	}

	// The transport may reuse its read buffer.
	frag := make([]byte, len(data))
	copy(frag, data)

	r.current.fragments = append(r.current.fragments, frag)
	r.current.bytes += int64(len(frag))
	return true
}

// SetExpectedSize records the server's size hint for the active stream.
func (r *Reassembler) SetExpectedSize(name string, size int64) {
	if r.current == nil || r.current.track.Name != name {
		zlog.Debug().Msgf("stream: ignoring metadata for inactive track: track=%s", name)
		return
	}
	r.current.expectedSize = size
}

// End finalizes the active stream and returns its bytes concatenated in
// arrival order. The buffer is released either way.
func (r *Reassembler) End() (track.Asset, error) {
	cur := r.current
	r.current = nil

	if cur == nil {
		return track.Asset{}, ErrNoActiveStream
	}
	if cur.bytes == 0 {
		return track.Asset{}, errors.Wrapf(ErrEmptyStream, "track %s", cur.track.Name)
	}

	data := make([]byte, 0, cur.bytes)
	for _, frag := range cur.fragments {
		data = append(data, frag...)
	}

	if cur.expectedSize > 0 && cur.expectedSize != cur.bytes {
		zlog.Warn().Msgf("stream: size differs from metadata: track=%s expected=%d received=%d",
			cur.track.Name, cur.expectedSize, cur.bytes)
	}
	zlog.Info().Msgf("stream: completed: track=%s fragments=%d bytes=%d", cur.track.Name, len(cur.fragments), cur.bytes)

	return track.Asset{Track: cur.track, Data: data}, nil
}

// Abort discards the active stream. No partial asset is produced.
func (r *Reassembler) Abort(detail string) error {
	cur := r.current
	r.current = nil

	name := ""
	if cur != nil {
		name = cur.track.Name
		zlog.Warn().Msgf("stream: aborted: track=%s discarded_bytes=%d detail=%s", name, cur.bytes, detail)
	}
	return &AbortedError{Track: name, Detail: detail}
}

// Reset discards any active stream silently.
func (r *Reassembler) Reset() {
	if r.current != nil {
		zlog.Debug().Msgf("stream: reset: track=%s discarded_bytes=%d", r.current.track.Name, r.current.bytes)
	}
	r.current = nil
}

// Active reports whether a stream is receiving.
func (r *Reassembler) Active() bool {
	return r.current != nil && r.current.receiving
}

// Dropped returns the number of fragments dropped for lack of an active stream.
func (r *Reassembler) Dropped() int {
	return r.dropped
}

// Snapshot returns the state of the active stream.
func (r *Reassembler) Snapshot() Snapshot {
	if r.current == nil {
		return Snapshot{}
	}
	return Snapshot{
		Track:        r.current.track.Name,
		Receiving:    r.current.receiving,
		Fragments:    len(r.current.fragments),
		Bytes:        r.current.bytes,
		ExpectedSize: r.current.expectedSize,
	}
}
