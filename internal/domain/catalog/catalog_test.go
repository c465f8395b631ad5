package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/bytebeats/internal/domain/track"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		names    []string
		expected []string
	}{
		{
			name:     "empty catalog",
			names:    nil,
			expected: []string{},
		},
		{
			name:     "order preserved",
			names:    []string{"b.mp3", "a.mp3", "c.mp3"},
			expected: []string{"b.mp3", "a.mp3", "c.mp3"},
		},
		{
			name:     "duplicates keep first position",
			names:    []string{"a.mp3", "b.mp3", "a.mp3"},
			expected: []string{"a.mp3", "b.mp3"},
		},
		{
			name:     "empty names dropped",
			names:    []string{"", "a.mp3"},
			expected: []string{"a.mp3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.names)
			assert.Equal(t, tt.expected, c.Names())
			assert.Equal(t, len(tt.expected), c.Len())
		})
	}
}

func TestCatalog_TracksHaveUnresolvedDuration(t *testing.T) {
	c := New([]string{"one.mp3", "two.mp3"})

	for _, trk := range c.Tracks() {
		assert.Equal(t, track.UnresolvedDuration, trk.DurationLabel)
	}
}

func TestCatalog_Tracks_ReturnsCopy(t *testing.T) {
	c := New([]string{"one.mp3"})

	tracks := c.Tracks()
	tracks[0].Name = "changed"

	assert.Equal(t, []string{"one.mp3"}, c.Names())
}

func TestCatalog_Get(t *testing.T) {
	c := New([]string{"one.mp3", "two.mp3"})

	trk, ok := c.Get("two.mp3")
	require.True(t, ok)
	assert.Equal(t, "two.mp3", trk.Name)

	_, ok = c.Get("three.mp3")
	assert.False(t, ok)
	assert.False(t, c.Contains("three.mp3"))
	assert.True(t, c.Contains("one.mp3"))
}

func TestCatalog_Next(t *testing.T) {
	tests := []struct {
		name     string
		names    []string
		current  string
		wantOK   bool
		wantNext string
	}{
		{
			name:     "middle advances",
			names:    []string{"A", "B", "C"},
			current:  "A",
			wantOK:   true,
			wantNext: "B",
		},
		{
			name:     "last wraps to first",
			names:    []string{"A", "B", "C"},
			current:  "C",
			wantOK:   true,
			wantNext: "A",
		},
		{
			name:    "current not in catalog",
			names:   []string{"A", "B", "C"},
			current: "Z",
			wantOK:  false,
		},
		{
			name:    "no current track",
			names:   []string{"A", "B"},
			current: "",
			wantOK:  false,
		},
		{
			name:    "single entry catalog",
			names:   []string{"A"},
			current: "A",
			wantOK:  false,
		},
		{
			name:    "empty catalog",
			names:   nil,
			current: "A",
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.names)

			next, ok := c.Next(tt.current)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantNext, next.Name)
			} else {
				assert.True(t, next.IsZero())
			}
		})
	}
}
