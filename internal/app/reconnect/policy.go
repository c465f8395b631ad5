// Package reconnect decides when a dropped connection is re-dialed.
package reconnect

import (
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"
)

// Mode selects automatic or manual reconnection.
type Mode int

const (
	ModeAuto   Mode = iota // Re-dial after a fixed delay
	ModeManual             // Wait for an explicit connect
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeManual:
		return "manual"
	default:
		return "unknown"
	}
}

// ParseMode maps a config value to a Mode. Unknown values mean auto.
func ParseMode(s string) Mode {
	if s == "manual" {
		return ModeManual
	}
	return ModeAuto
}

// DefaultDelay is the wait before an automatic re-dial.
const DefaultDelay = 5 * time.Second

// Config holds policy configuration.
type Config struct {
	Mode        Mode
	Delay       time.Duration // 0 uses DefaultDelay
	MaxAttempts int           // Consecutive failed attempts allowed; 0 is unlimited
}

// Decision describes the outcome of Schedule.
type Decision int

const (
	Scheduled      Decision = iota // Timer armed
	AlreadyPending                 // A timer is in flight; nothing armed
	Disabled                       // Manual mode
	Exhausted                      // MaxAttempts reached
)

// String returns the string representation of the decision.
func (d Decision) String() string {
	switch d {
	case Scheduled:
		return "scheduled"
	case AlreadyPending:
		return "already_pending"
	case Disabled:
		return "disabled"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// stopper is satisfied by *time.Timer.
type stopper interface {
	Stop() bool
}

// Policy arms at most one reconnect timer at a time.
type Policy struct {
	mu sync.Mutex

	config   Config
	attempts int
	timer    stopper
	gen      uint64

	afterFunc func(time.Duration, func()) stopper
}

// New creates a policy.
func New(config Config) *Policy {
	if config.Delay <= 0 {
		config.Delay = DefaultDelay
	}
	if config.MaxAttempts < 0 {
		config.MaxAttempts = 0
	}
	return &Policy{
		config: config,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
	}
}

// Schedule arms a timer that calls dial after the configured delay.
func (p *Policy) Schedule(dial func()) Decision {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.config.Mode == ModeManual {
		return Disabled
	}
	if p.timer != nil {
		return AlreadyPending
	}
	if p.config.MaxAttempts > 0 && p.attempts >= p.config.MaxAttempts {
		zlog.Warn().Msgf("reconnect: giving up: attempts=%d", p.attempts)
		return Exhausted
	}

	p.attempts++
	p.gen++
	gen := p.gen
	zlog.Info().Msgf("reconnect: scheduled: attempt=%d delay=%s", p.attempts, p.config.Delay)

	p.timer = p.afterFunc(p.config.Delay, func() {
		p.mu.Lock()
		if gen != p.gen {
			p.mu.Unlock()
			return
		}
		p.timer = nil
		p.mu.Unlock()

		dial()
	})
	return Scheduled
}

// Cancel stops a pending timer. It reports whether one was pending.
func (p *Policy) Cancel() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelLocked()
}

// Reset cancels any pending timer and clears the attempt count.
// Called when a connection opens.
func (p *Policy) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cancelLocked()
	p.attempts = 0
}

// Pending reports whether a timer is armed.
func (p *Policy) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timer != nil
}

// Attempts returns the number of consecutive scheduled attempts.
func (p *Policy) Attempts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}

// Mode returns the configured mode.
func (p *Policy) Mode() Mode {
	return p.config.Mode
}

func (p *Policy) cancelLocked() bool {
	if p.timer == nil {
		return false
	}
	p.timer.Stop()
	p.timer = nil
	p.gen++
	return true
}
