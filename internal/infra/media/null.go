package media

import (
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"
)

// Null accepts assets without producing sound and keeps a virtual clock.
// With a zero length the duration stays unknown and the asset never ends.
type Null struct {
	mu sync.Mutex

	length  time.Duration
	loaded  bool
	closed  bool
	playing bool
	muted   bool
	gen     uint64

	elapsed   time.Duration // Accumulated before the current run
	startedAt time.Time
	endTimer  *time.Timer

	listener Listener
	now      func() time.Time
}

// NewNull creates a silent player that reports every asset as lasting length.
func NewNull(length time.Duration) *Null {
	return &Null{
		length: length,
		now:    time.Now,
	}
}

// SetListener registers the event listener.
func (n *Null) SetListener(l Listener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listener = l
}

// Load replaces the current asset.
func (n *Null) Load(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyAsset
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return ErrClosed
	}
	n.stopTimerLocked()
	n.gen++
	gen := n.gen
	n.loaded = true
	n.playing = false
	n.elapsed = 0
	n.mu.Unlock()

	zlog.Debug().Msgf("media: null output loaded: bytes=%d", len(data))
	if n.length > 0 {
		go n.emit(gen, Event{Type: EventMetadata})
	}
	return nil
}

// Play starts the virtual clock.
func (n *Null) Play() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrClosed
	}
	if !n.loaded {
		return ErrNoAsset
	}
	if n.playing {
		return nil
	}

	n.playing = true
	n.startedAt = n.now()
	if n.length > 0 {
		gen := n.gen
		remaining := n.length - n.elapsed
		if remaining < 0 {
			remaining = 0
		}
		n.endTimer = time.AfterFunc(remaining, func() {
			n.mu.Lock()
			ended := gen == n.gen && n.playing
			if ended {
				n.elapsed = n.length
				n.playing = false
				n.endTimer = nil
			}
			n.mu.Unlock()
			if ended {
				n.emit(gen, Event{Type: EventEnded})
			}
		})
	}
	return nil
}

// Pause stops the virtual clock.
func (n *Null) Pause() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.playing {
		return
	}
	n.stopTimerLocked()
	n.elapsed += n.now().Sub(n.startedAt)
	n.playing = false
}

// SetMuted records the mute flag.
func (n *Null) SetMuted(muted bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.muted = muted
}

// Muted reports the mute flag.
func (n *Null) Muted() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.muted
}

// Position returns the virtual clock.
func (n *Null) Position() time.Duration {
	n.mu.Lock()
	defer n.mu.Unlock()

	pos := n.elapsed
	if n.playing {
		pos += n.now().Sub(n.startedAt)
	}
	if n.length > 0 && pos > n.length {
		pos = n.length
	}
	return pos
}

// Duration returns the configured length when set.
func (n *Null) Duration() (time.Duration, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.loaded || n.length <= 0 {
		return 0, false
	}
	return n.length, true
}

// Close releases the asset.
func (n *Null) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.stopTimerLocked()
	n.gen++
	n.loaded = false
	n.playing = false
	n.closed = true
	return nil
}

func (n *Null) stopTimerLocked() {
	if n.endTimer != nil {
		n.endTimer.Stop()
		n.endTimer = nil
	}
}

func (n *Null) emit(gen uint64, e Event) {
	n.mu.Lock()
	l := n.listener
	current := gen == n.gen
	n.mu.Unlock()

	if current && l != nil {
		l(e)
	}
}
