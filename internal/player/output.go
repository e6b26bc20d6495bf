package player

import (
	"time"

	"github.com/rmarin/voznota/internal/wavio"
)

// Output is the audio device abstraction behind the engine. Exactly one clip
// is bound at a time; binding a new clip replaces the previous one.
type Output interface {
	// Play binds a clip and starts producing audio from the given offset.
	Play(clip *wavio.Clip, at time.Duration, speed float64) error
	// Pause suspends audio without losing the position.
	Pause()
	// Resume continues from the paused position.
	Resume()
	// Seek jumps to an absolute offset within the bound clip.
	Seek(at time.Duration)
	// Position reports the current offset within the bound clip.
	Position() time.Duration
	// Done reports whether the bound clip has been played to the end.
	Done() bool
	// SetSpeed changes the playback rate of the bound clip.
	SetSpeed(speed float64)
	// Level reports the recent output amplitude in [0, 1] for meters.
	Level() float64
	// Stop unbinds the clip and silences the device.
	Stop()
	// Close releases the device.
	Close() error
}
