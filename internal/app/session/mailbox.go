package session

import "sync"

// mailbox is an unbounded FIFO of loop events.
// Producers never block, so callbacks may push while the loop is busy.
type mailbox struct {
	mu     sync.Mutex
	items  []Event
	signal chan struct{}
	closed bool
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

// push appends an event. It reports false once the mailbox is closed.
func (b *mailbox) push(e Event) bool {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return false
	}
	b.items = append(b.items, e)
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
	return true
}

// drain removes and returns all queued events in arrival order.
func (b *mailbox) drain() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.items
	b.items = nil
	return items
}

// ready is signalled after a push.
func (b *mailbox) ready() <-chan struct{} {
	return b.signal
}

func (b *mailbox) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}
