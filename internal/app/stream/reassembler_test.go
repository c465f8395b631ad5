package stream

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(n int, b byte) []byte {
	return bytes.Repeat([]byte{b}, n)
}

func TestReassembler_PreservesFragmentOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 20; round++ {
		r := NewReassembler()
		r.Start("one.mp3")

		var expected []byte
		count := rng.Intn(30) + 1
		for i := 0; i < count; i++ {
			frag := make([]byte, rng.Intn(512)+1)
			rng.Read(frag)
			expected = append(expected, frag...)
			require.True(t, r.Append(frag))
		}

		asset, err := r.End()
		require.NoError(t, err)
		assert.Equal(t, expected, asset.Data, "round %d", round)
		assert.Equal(t, "one.mp3", asset.Track.Name)
	}
}

func TestReassembler_EndToEndSizes(t *testing.T) {
	r := NewReassembler()
	r.Start("one.mp3")
	r.Append(fill(10, 'a'))
	r.Append(fill(20, 'b'))
	r.Append(fill(30, 'c'))

	snap := r.Snapshot()
	assert.Equal(t, 3, snap.Fragments)
	assert.Equal(t, int64(60), snap.Bytes)
	assert.True(t, snap.Receiving)

	asset, err := r.End()
	require.NoError(t, err)
	assert.Equal(t, 60, asset.Size())
	assert.Equal(t, append(append(fill(10, 'a'), fill(20, 'b')...), fill(30, 'c')...), asset.Data)
	assert.False(t, r.Active())
}

func TestReassembler_NewStreamDiscardsPrevious(t *testing.T) {
	r := NewReassembler()
	r.Start("A")
	r.Append(fill(8, 'A'))
	r.Append(fill(8, 'A'))

	r.Start("B")
	r.Append(fill(4, 'B'))

	asset, err := r.End()
	require.NoError(t, err)
	assert.Equal(t, "B", asset.Track.Name)
	assert.Equal(t, fill(4, 'B'), asset.Data)
	assert.NotContains(t, string(asset.Data), "A")
}

func TestReassembler_EmptyStream(t *testing.T) {
	tests := []struct {
		name      string
		fragments [][]byte
	}{
		{name: "no fragments"},
		{name: "only zero-length fragments", fragments: [][]byte{{}, {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReassembler()
			r.Start("one.mp3")
			for _, f := range tt.fragments {
				r.Append(f)
			}

			asset, err := r.End()
			assert.True(t, errors.Is(err, ErrEmptyStream))
			assert.Nil(t, asset.Data)
			assert.False(t, r.Active())
		})
	}
}

func TestReassembler_EndWithoutStream(t *testing.T) {
	r := NewReassembler()

	_, err := r.End()
	assert.True(t, errors.Is(err, ErrNoActiveStream))
}

func TestReassembler_DropsFragmentsWithoutStream(t *testing.T) {
	r := NewReassembler()

	assert.False(t, r.Append([]byte{1, 2, 3}))
	assert.Equal(t, 1, r.Dropped())

	r.Start("one.mp3")
	r.Append([]byte{9})
	_, err := r.End()
	require.NoError(t, err)

	assert.False(t, r.Append([]byte{4}), "fragments after SONG_ENDED are dropped")
	assert.Equal(t, 2, r.Dropped())
}

func TestReassembler_Abort(t *testing.T) {
	r := NewReassembler()
	r.Start("one.mp3")
	r.Append(fill(100, 'x'))

	err := r.Abort("disk error")

	assert.True(t, errors.Is(err, ErrStreamAborted))
	var aborted *AbortedError
	require.True(t, errors.As(err, &aborted))
	assert.Equal(t, "one.mp3", aborted.Track)
	assert.Equal(t, "disk error", aborted.Detail)
	assert.Contains(t, err.Error(), "disk error")

	assert.False(t, r.Active())
	assert.Equal(t, Snapshot{}, r.Snapshot())
	assert.False(t, r.Append([]byte{1}))
}

func TestReassembler_CopiesFragments(t *testing.T) {
	r := NewReassembler()
	r.Start("one.mp3")

	buf := []byte{1, 2, 3}
	r.Append(buf)
	buf[0] = 99

	asset, err := r.End()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, asset.Data)
}

func TestReassembler_ExpectedSize(t *testing.T) {
	r := NewReassembler()
	r.Start("one.mp3")

	r.SetExpectedSize("other.mp3", 500)
	assert.Equal(t, int64(0), r.Snapshot().ExpectedSize, "hint for another track ignored")
	assert.Equal(t, -1.0, r.Snapshot().Progress())

	r.SetExpectedSize("one.mp3", 200)
	r.Append(fill(50, 'x'))
	assert.InDelta(t, 0.25, r.Snapshot().Progress(), 0.0001)

	r.Append(fill(300, 'x'))
	assert.Equal(t, 1.0, r.Snapshot().Progress())

	asset, err := r.End()
	require.NoError(t, err, "size mismatch is not an error")
	assert.Equal(t, 350, asset.Size())
}

func TestReassembler_Reset(t *testing.T) {
	r := NewReassembler()
	r.Start("one.mp3")
	r.Append(fill(10, 'x'))

	r.Reset()

	assert.False(t, r.Active())
	_, err := r.End()
	assert.True(t, errors.Is(err, ErrNoActiveStream))
}
