//go:build !((linux && cgo) || windows || darwin)

package media

// AudioAvailable indicates whether the beep backend is compiled in.
// Linux audio output requires cgo.
const AudioAvailable = false

// NewBeep is unavailable without cgo.
func NewBeep() (Player, error) {
	return nil, ErrUnavailable
}
