// Package notification provides the notification manager for broadcasting status updates.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/bytebeats/internal/app/session/state"
)

// DefaultSendTimeout bounds a single subscriber send.
const DefaultSendTimeout = 500 * time.Millisecond

// ErrSubscriberGone is returned by streams whose reader has left.
var ErrSubscriberGone = errors.New("subscriber gone")

// Stream represents a notification stream for a subscriber.
type Stream interface {
	Send(state.Status) error
}

// subscription represents a subscriber's subscription.
type subscription struct {
	id     string
	stream Stream
}

// Manager manages notification subscriptions and broadcasting.
type Manager struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
	sequenceNo    uint64
	sequenceNoMu  sync.Mutex
	sendTimeout   time.Duration
}

// NewManager creates a new notification manager.
func NewManager() *Manager {
	return &Manager{
		subscriptions: make(map[string]*subscription),
		sendTimeout:   DefaultSendTimeout,
	}
}

// SetSendTimeout overrides the per-subscriber send timeout.
func (m *Manager) SetSendTimeout(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendTimeout = d
}

// Subscribe adds a new subscription and returns the subscription ID.
func (m *Manager) Subscribe(stream Stream) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	m.subscriptions[id] = &subscription{
		id:     id,
		stream: stream,
	}
	return id
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscriptions, subscriptionID)
}

// SequenceNo returns the last assigned sequence number.
func (m *Manager) SequenceNo() uint64 {
	m.sequenceNoMu.Lock()
	defer m.sequenceNoMu.Unlock()
	return m.sequenceNo
}

// Broadcast stamps the status with the next sequence number and sends it to all subscribers.
// Each send runs in its own goroutine bounded by the send timeout.
// Subscribers whose stream reports ErrSubscriberGone are removed.
func (m *Manager) Broadcast(status state.Status) uint64 {
	m.sequenceNoMu.Lock()
	m.sequenceNo++
	status.SequenceNo = m.sequenceNo
	m.sequenceNoMu.Unlock()

	m.mu.RLock()
	subs := make([]*subscription, 0, len(m.subscriptions))
	for _, sub := range m.subscriptions {
		subs = append(subs, sub)
	}
	timeout := m.sendTimeout
	m.mu.RUnlock()

	var (
		wg   sync.WaitGroup
		gone sync.Map
	)
	for _, sub := range subs {
		wg.Add(1)
		go func(s *subscription) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			done := make(chan error, 1)
			go func() {
				// Each subscriber gets its own copy of the slices.
				done <- s.stream.Send(status.Clone())
			}()

			select {
			case err := <-done:
				if errors.Is(err, ErrSubscriberGone) {
					gone.Store(s.id, true)
				} else if err != nil {
					zlog.Debug().Msgf("notification: send failed: subscription=%s err=%v", s.id, err)
				}
			case <-ctx.Done():
				zlog.Debug().Msgf("notification: send timed out: subscription=%s seq=%d", s.id, status.SequenceNo)
			}
		}(sub)
	}

	wg.Wait()

	gone.Range(func(key, _ any) bool {
		m.Unsubscribe(key.(string))
		return true
	})
	return status.SequenceNo
}

// Send sends a status to a specific subscriber without assigning a sequence number.
func (m *Manager) Send(subscriptionID string, status state.Status) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sub, ok := m.subscriptions[subscriptionID]
	if !ok {
		return nil
	}

	return sub.stream.Send(status.Clone())
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close closes the manager and removes all subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions = make(map[string]*subscription)
}
