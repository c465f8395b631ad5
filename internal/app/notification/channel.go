package notification

import (
	"sync"

	"github.com/osa030/bytebeats/internal/app/session/state"
)

// ChannelStream delivers statuses on a buffered channel.
// A full buffer blocks Send until the manager's timeout or Close.
type ChannelStream struct {
	ch   chan state.Status
	done chan struct{}
	once sync.Once
}

// NewChannelStream creates a stream with the given buffer size.
func NewChannelStream(buffer int) *ChannelStream {
	return &ChannelStream{
		ch:   make(chan state.Status, buffer),
		done: make(chan struct{}),
	}
}

// C returns the receive side.
func (c *ChannelStream) C() <-chan state.Status {
	return c.ch
}

// Done is closed by Close.
func (c *ChannelStream) Done() <-chan struct{} {
	return c.done
}

// Send implements Stream.
func (c *ChannelStream) Send(s state.Status) error {
	select {
	case <-c.done:
		return ErrSubscriberGone
	default:
	}

	select {
	case c.ch <- s:
		return nil
	case <-c.done:
		return ErrSubscriberGone
	}
}

// Close stops delivery. Later sends report ErrSubscriberGone.
func (c *ChannelStream) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}
