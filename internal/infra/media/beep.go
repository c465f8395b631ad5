//go:build (linux && cgo) || windows || darwin

package media

import (
	"bytes"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	zlog "github.com/rs/zerolog/log"
)

// AudioAvailable indicates whether the beep backend is compiled in.
const AudioAvailable = true

const outputSampleRate = beep.SampleRate(44100)

// Beep plays MP3 assets through the system speaker.
type Beep struct {
	mu sync.Mutex

	initialized bool
	closed      bool
	gen         uint64 // Incremented on every Load; stale callbacks compare against it

	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	muted    bool

	listener Listener
}

// NewBeep creates a speaker-backed player. The speaker is opened on first Load.
func NewBeep() (*Beep, error) {
	return &Beep{}, nil
}

// SetListener registers the event listener.
func (b *Beep) SetListener(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listener = l
}

// Load decodes an MP3 asset and queues it paused.
func (b *Beep) Load(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyAsset
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	b.releaseLocked()

	streamer, format, err := mp3.Decode(nopCloser{bytes.NewReader(data)})
	if err != nil {
		return errors.Wrap(err, "failed to decode mp3")
	}

	if !b.initialized {
		if err := speaker.Init(outputSampleRate, outputSampleRate.N(time.Second/10)); err != nil {
			streamer.Close()
			return errors.Wrap(err, "failed to open speaker")
		}
		b.initialized = true
	}

	b.gen++
	gen := b.gen
	b.streamer = streamer
	b.format = format
	b.ctrl = &beep.Ctrl{
		Streamer: beep.Resample(4, format.SampleRate, outputSampleRate, streamer),
		Paused:   true,
	}
	b.volume = &effects.Volume{
		Streamer: b.ctrl,
		Base:     2,
		Silent:   b.muted,
	}

	speaker.Play(beep.Seq(b.volume, beep.Callback(func() {
		// Runs on the speaker goroutine with the speaker lock held.
		go b.emit(gen, Event{Type: EventEnded})
	})))

	zlog.Debug().Msgf("media: loaded: bytes=%d rate=%d length=%s",
		len(data), format.SampleRate, format.SampleRate.D(streamer.Len()))

	go b.emit(gen, Event{Type: EventMetadata})
	return nil
}

// Play resumes the loaded asset.
func (b *Beep) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	if b.ctrl == nil {
		return ErrNoAsset
	}

	speaker.Lock()
	b.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

// Pause pauses output.
func (b *Beep) Pause() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctrl != nil {
		speaker.Lock()
		b.ctrl.Paused = true
		speaker.Unlock()
	}
}

// SetMuted silences output without pausing it.
func (b *Beep) SetMuted(muted bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.muted = muted
	if b.volume != nil {
		speaker.Lock()
		b.volume.Silent = muted
		speaker.Unlock()
	}
}

// Position returns the playback position of the loaded asset.
func (b *Beep) Position() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer == nil {
		return 0
	}

	speaker.Lock()
	pos := b.streamer.Position()
	speaker.Unlock()

	return b.format.SampleRate.D(pos)
}

// Duration returns the length of the loaded asset.
func (b *Beep) Duration() (time.Duration, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer == nil {
		return 0, false
	}
	return b.format.SampleRate.D(b.streamer.Len()), true
}

// Close releases the asset. The speaker stays initialized for the process lifetime.
func (b *Beep) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseLocked()
	b.closed = true
	return nil
}

func (b *Beep) releaseLocked() {
	if b.initialized {
		speaker.Clear()
	}
	if b.streamer != nil {
		if err := b.streamer.Close(); err != nil {
			zlog.Warn().Msgf("media: failed to release asset: %v", err)
		}
	}
	b.gen++
	b.streamer = nil
	b.ctrl = nil
	b.volume = nil
}

func (b *Beep) emit(gen uint64, e Event) {
	b.mu.Lock()
	l := b.listener
	current := gen == b.gen
	b.mu.Unlock()

	if !current {
		zlog.Debug().Msgf("media: dropping stale event: type=%s", e.Type)
		return
	}
	if l != nil {
		l(e)
	}
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
