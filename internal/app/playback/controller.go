package playback

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/bytebeats/internal/domain/catalog"
	"github.com/osa030/bytebeats/internal/domain/track"
	"github.com/osa030/bytebeats/internal/infra/media"
)

// Errors
var (
	ErrNoTrack         = errors.New("no track loaded")
	ErrPlaybackBlocked = errors.New("playback blocked")
	ErrClosed          = errors.New("controller is closed")
)

// DefaultSampleInterval is the position sampling period while playing.
const DefaultSampleInterval = 250 * time.Millisecond

// Config holds controller configuration.
type Config struct {
	SampleInterval time.Duration // Position sampling period; 0 uses the default
	EventBuffer    int           // Event channel capacity; 0 uses 64
}

// Controller owns the playback state of one media output.
type Controller struct {
	mu sync.RWMutex

	media media.Player

	state           State
	loaded          track.Track
	muted           bool
	loading         bool
	pending         bool // Prepared track not yet loaded; loading belongs to it
	needsManualPlay bool
	started         bool // Loaded asset has played at least once
	position        time.Duration
	duration        time.Duration
	durationKnown   bool

	samplerCancel func()

	config Config

	eventCh chan Event
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewController creates a controller around a media output.
func NewController(m media.Player, config Config) *Controller {
	if config.SampleInterval <= 0 {
		config.SampleInterval = DefaultSampleInterval
	}
	if config.EventBuffer <= 0 {
		config.EventBuffer = 64
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		media:   m,
		state:   StateIdle,
		config:  config,
		eventCh: make(chan Event, config.EventBuffer),
		ctx:     ctx,
		cancel:  cancel,
	}
	m.SetListener(c.onMedia)
	return c
}

// Events returns the event channel. It is closed by Close.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// Prepare marks a track as requested: loading is set and the clock reset.
// The current asset keeps playing until a new one is loaded.
func (c *Controller) Prepare() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loading = true
	c.pending = true
	c.needsManualPlay = false
	c.position = 0
	c.duration = 0
	c.durationKnown = false
	if !c.isPlayingLocked() {
		c.state = StateLoading
	}
	c.sendEventLocked(Event{Type: EventStateChanged})
}

// CancelLoading clears the loading flag after a failed or aborted transfer.
func (c *Controller) CancelLoading() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loading {
		return
	}
	c.loading = false
	c.pending = false
	if c.state == StateLoading {
		c.state = StateIdle
	}
	c.sendEventLocked(Event{Type: EventStateChanged})
}

// Load hands a reassembled asset to media, replacing the previous one.
// Loading stays set until Play reports a result.
func (c *Controller) Load(asset track.Asset) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.stopSamplerLocked()
	if err := c.media.Load(asset.Data); err != nil {
		c.loading = false
		c.pending = false
		c.state = StateIdle
		c.loaded = track.Track{}
		c.sendEventLocked(Event{Type: EventMediaError, Err: err})
		return errors.Wrapf(err, "failed to load %s", asset.Track.Name)
	}

	c.loaded = asset.Track
	c.loading = true
	c.pending = false
	c.started = false
	c.needsManualPlay = false
	c.position = 0
	c.duration, c.durationKnown = c.media.Duration()
	c.state = StateLoading

	zlog.Info().Msgf("playback: loaded: track=%s bytes=%d", asset.Track.Name, asset.Size())
	c.sendEventLocked(Event{Type: EventTrackLoaded})
	return nil
}

// Play asks media to play the loaded asset.
// A rejection leaves playing false and sets NeedsManualPlay; it is not retried.
// While a prepared track is still in transfer, loading stays set.
func (c *Controller) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.loaded.IsZero() {
		return ErrNoTrack
	}
	if c.state == StatePlaying {
		return nil
	}

	if err := c.media.Play(); err != nil {
		c.loading = c.pending
		c.needsManualPlay = true
		c.state = StateBlocked
		zlog.Warn().Msgf("playback: play rejected: track=%s err=%v", c.loaded.Name, err)
		err = errors.Mark(errors.Wrapf(err, "play %s", c.loaded.Name), ErrPlaybackBlocked)
		c.sendEventLocked(Event{Type: EventPlayBlocked, Err: err})
		return err
	}

	first := !c.started
	c.started = true
	c.loading = c.pending
	c.needsManualPlay = false
	c.state = StatePlaying
	c.startSamplerLocked()

	if first {
		zlog.Info().Msgf("playback: started: track=%s", c.loaded.Name)
		c.sendEventLocked(Event{Type: EventTrackStarted})
	} else {
		c.sendEventLocked(Event{Type: EventStateChanged})
	}
	return nil
}

// Pause pauses media. It returns false when nothing was playing.
func (c *Controller) Pause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePlaying {
		return false
	}

	c.media.Pause()
	c.stopSamplerLocked()
	c.position = c.media.Position()
	c.state = StatePaused
	c.sendEventLocked(Event{Type: EventStateChanged})
	return true
}

// SetMuted sets the mute flag without touching playing. It reports a change.
func (c *Controller) SetMuted(muted bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.muted == muted {
		return false
	}
	c.muted = muted
	c.media.SetMuted(muted)
	c.sendEventLocked(Event{Type: EventStateChanged})
	return true
}

// ToggleMute flips the mute flag and returns the new value.
func (c *Controller) ToggleMute() bool {
	c.mu.RLock()
	next := !c.muted
	c.mu.RUnlock()

	c.SetMuted(next)
	return next
}

// Next returns the catalog successor of current with wraparound.
func (c *Controller) Next(cat catalog.Catalog, current string) (track.Track, bool) {
	return cat.Next(current)
}

// Sample refreshes position and duration from media.
func (c *Controller) Sample() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sampleLocked()
	return c.snapshotLocked()
}

// Snapshot returns a copy of the playback state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// Close releases media and closes the event channel.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.cancel()
	c.stopSamplerLocked()
	c.state = StateIdle
	close(c.eventCh)
	return c.media.Close()
}

func (c *Controller) onMedia(e media.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	switch e.Type {
	case media.EventMetadata:
		c.duration, c.durationKnown = c.media.Duration()
		zlog.Debug().Msgf("playback: duration known: track=%s duration=%s", c.loaded.Name, c.duration)
		c.sendEventLocked(Event{Type: EventDuration})
	case media.EventEnded:
		if c.state != StatePlaying {
			return
		}
		c.stopSamplerLocked()
		c.sampleLocked()
		c.state = StateIdle
		zlog.Info().Msgf("playback: ended: track=%s", c.loaded.Name)
		c.sendEventLocked(Event{Type: EventTrackEnded})
	case media.EventError:
		c.stopSamplerLocked()
		c.loading = false
		c.state = StateIdle
		zlog.Error().Msgf("playback: media error: track=%s err=%v", c.loaded.Name, e.Err)
		c.sendEventLocked(Event{Type: EventMediaError, Err: e.Err})
	}
}

func (c *Controller) isPlayingLocked() bool {
	return c.state == StatePlaying
}

func (c *Controller) sampleLocked() {
	if c.loaded.IsZero() {
		return
	}
	c.position = c.media.Position()
	if d, ok := c.media.Duration(); ok {
		c.duration, c.durationKnown = d, true
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:           c.state,
		Loaded:          c.loaded,
		Playing:         c.state == StatePlaying,
		Muted:           c.muted,
		Loading:         c.loading,
		NeedsManualPlay: c.needsManualPlay,
		Position:        c.position,
		Duration:        c.duration,
		DurationKnown:   c.durationKnown,
	}
}

// startSamplerLocked emits progress events while playing.
func (c *Controller) startSamplerLocked() {
	c.stopSamplerLocked()

	ctx, cancel := context.WithCancel(c.ctx)
	c.samplerCancel = cancel

	go func() {
		ticker := time.NewTicker(c.config.SampleInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.mu.Lock()
				if ctx.Err() == nil && c.state == StatePlaying {
					c.sampleLocked()
					c.sendEventLocked(Event{Type: EventProgress})
				}
				c.mu.Unlock()
			}
		}
	}()
}

func (c *Controller) stopSamplerLocked() {
	if c.samplerCancel != nil {
		c.samplerCancel()
		c.samplerCancel = nil
	}
}

// sendEventLocked sends an event without blocking.
// Must be called with lock held.
func (c *Controller) sendEventLocked(e Event) {
	if c.closed {
		return
	}
	e.State = c.snapshotLocked()
	select {
	case c.eventCh <- e:
	case <-c.ctx.Done():
	default:
		zlog.Warn().Msgf("playback: event channel full, dropping: type=%s", e.Type)
	}
}
