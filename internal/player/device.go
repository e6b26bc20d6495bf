package player

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/rmarin/voznota/internal/wavio"
)

const framesPerBuffer = 1024

// Device plays clips through the default output via PortAudio. It satisfies
// Output; the stream callback runs on the audio thread, so all shared state
// sits behind the mutex.
type Device struct {
	mu     sync.Mutex
	stream *portaudio.Stream
	clip   *wavio.Clip
	cursor float64 // fractional sample index; speed advances it non-integrally
	speed  float64
	paused bool
	done   bool
	level  float64
}

// NewDevice initializes PortAudio and returns a playback device.
func NewDevice() (*Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize audio: %w", err)
	}
	return &Device{speed: 1.0}, nil
}

// Play binds a clip and starts a fresh stream at the clip's sample rate.
func (d *Device) Play(clip *wavio.Clip, at time.Duration, speed float64) error {
	d.Stop()

	d.mu.Lock()
	d.clip = clip
	d.cursor = float64(clip.At(at))
	d.speed = speed
	d.paused = false
	d.done = false
	d.level = 0
	d.mu.Unlock()

	stream, err := portaudio.OpenDefaultStream(0, 1, float64(clip.SampleRate), framesPerBuffer, d.fill)
	if err != nil {
		return fmt.Errorf("open playback stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("start playback stream: %w", err)
	}

	d.mu.Lock()
	d.stream = stream
	d.mu.Unlock()
	return nil
}

// fill is the stream callback: resamples the clip at the configured speed
// and tracks the peak amplitude for the level meter.
func (d *Device) fill(out []int16) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var peak float64
	for i := range out {
		if d.clip == nil || d.paused || d.done {
			out[i] = 0
			continue
		}
		idx := int(d.cursor)
		if idx >= len(d.clip.Samples) {
			d.done = true
			out[i] = 0
			continue
		}
		s := d.clip.Samples[idx]
		out[i] = s
		if a := math.Abs(float64(s)) / 32768.0; a > peak {
			peak = a
		}
		d.cursor += d.speed
	}
	d.level = peak
}

// Pause silences output while keeping the stream and position.
func (d *Device) Pause() {
	d.mu.Lock()
	d.paused = true
	d.level = 0
	d.mu.Unlock()
}

// Resume continues output from the held position.
func (d *Device) Resume() {
	d.mu.Lock()
	d.paused = false
	d.mu.Unlock()
}

// Seek jumps to an absolute offset within the bound clip.
func (d *Device) Seek(at time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.clip == nil {
		return
	}
	d.cursor = float64(d.clip.At(at))
	if int(d.cursor) < len(d.clip.Samples) {
		d.done = false
	}
}

// Position reports the current offset within the bound clip.
func (d *Device) Position() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.clip == nil || d.clip.SampleRate <= 0 {
		return 0
	}
	return time.Duration(d.cursor / float64(d.clip.SampleRate) * float64(time.Second))
}

// Done reports whether the bound clip has played to the end.
func (d *Device) Done() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.done
}

// SetSpeed changes the playback rate of the bound clip.
func (d *Device) SetSpeed(speed float64) {
	d.mu.Lock()
	if speed > 0 {
		d.speed = speed
	}
	d.mu.Unlock()
}

// Level reports the most recent peak amplitude in [0, 1].
func (d *Device) Level() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.level
}

// Stop tears down the stream and unbinds the clip.
func (d *Device) Stop() {
	d.mu.Lock()
	stream := d.stream
	d.stream = nil
	d.clip = nil
	d.cursor = 0
	d.done = false
	d.level = 0
	d.mu.Unlock()

	if stream != nil {
		stream.Stop()
		stream.Close()
	}
}

// Close stops playback and releases PortAudio.
func (d *Device) Close() error {
	d.Stop()
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("terminate audio: %w", err)
	}
	return nil
}
