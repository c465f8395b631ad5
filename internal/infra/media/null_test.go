package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1700000000, 0)}
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func collect(p Player) chan Event {
	ch := make(chan Event, 8)
	p.SetListener(func(e Event) { ch <- e })
	return ch
}

func TestNull_PlayRequiresAsset(t *testing.T) {
	n := NewNull(0)

	assert.ErrorIs(t, n.Play(), ErrNoAsset)
	assert.ErrorIs(t, n.Load(nil), ErrEmptyAsset)

	require.NoError(t, n.Load([]byte{1, 2, 3}))
	assert.NoError(t, n.Play())
}

func TestNull_VirtualClock(t *testing.T) {
	clock := newFakeClock()
	n := NewNull(0)
	n.now = clock.now

	require.NoError(t, n.Load([]byte{1}))
	require.NoError(t, n.Play())
	clock.advance(3 * time.Second)
	assert.Equal(t, 3*time.Second, n.Position())

	n.Pause()
	clock.advance(10 * time.Second)
	assert.Equal(t, 3*time.Second, n.Position(), "clock stops while paused")

	require.NoError(t, n.Play())
	clock.advance(2 * time.Second)
	assert.Equal(t, 5*time.Second, n.Position())

	_, known := n.Duration()
	assert.False(t, known)

	require.NoError(t, n.Load([]byte{2}))
	assert.Zero(t, n.Position(), "load resets the clock")
}

func TestNull_MuteDoesNotPause(t *testing.T) {
	clock := newFakeClock()
	n := NewNull(0)
	n.now = clock.now

	require.NoError(t, n.Load([]byte{1}))
	require.NoError(t, n.Play())
	n.SetMuted(true)
	clock.advance(time.Second)

	assert.True(t, n.Muted())
	assert.Equal(t, time.Second, n.Position())
}

func TestNull_LengthEmitsMetadataAndEnded(t *testing.T) {
	n := NewNull(20 * time.Millisecond)
	events := collect(n)

	require.NoError(t, n.Load([]byte{1}))
	select {
	case e := <-events:
		assert.Equal(t, EventMetadata, e.Type)
	case <-time.After(time.Second):
		t.Fatal("no metadata event")
	}

	d, known := n.Duration()
	assert.True(t, known)
	assert.Equal(t, 20*time.Millisecond, d)

	require.NoError(t, n.Play())
	select {
	case e := <-events:
		assert.Equal(t, EventEnded, e.Type)
	case <-time.After(time.Second):
		t.Fatal("no ended event")
	}
	assert.Equal(t, 20*time.Millisecond, n.Position())
}

func TestNull_ReloadSuppressesStaleEnd(t *testing.T) {
	n := NewNull(30 * time.Millisecond)
	events := collect(n)

	require.NoError(t, n.Load([]byte{1}))
	<-events
	require.NoError(t, n.Play())

	require.NoError(t, n.Load([]byte{2}))
	<-events

	select {
	case e := <-events:
		t.Fatalf("unexpected event %s", e.Type)
	case <-time.After(80 * time.Millisecond):
	}
}

func TestNull_Close(t *testing.T) {
	n := NewNull(0)
	require.NoError(t, n.Load([]byte{1}))
	require.NoError(t, n.Close())

	assert.ErrorIs(t, n.Play(), ErrClosed)
	assert.ErrorIs(t, n.Load([]byte{1}), ErrClosed)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		wantErr bool
	}{
		{name: "null", backend: "null"},
		{name: "case insensitive", backend: "NULL"},
		{name: "auto", backend: "auto"},
		{name: "empty means auto", backend: ""},
		{name: "unknown", backend: "alsa", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.backend)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, p)
		})
	}
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "metadata", EventMetadata.String())
	assert.Equal(t, "ended", EventEnded.String())
	assert.Equal(t, "error", EventError.String())
	assert.Equal(t, "unknown", EventType(99).String())
}
