// Package capture turns microphone input or on-disk files into finished WAV
// blobs ready to append to the recording store.
package capture

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/rmarin/voznota/internal/wavio"
)

const (
	captureRate   = 16000 // mono 16 kHz, plenty for speech
	captureFrames = 1024
)

// Recorder captures microphone audio until stopped, then finalizes one WAV
// blob. The stream callback runs on the audio thread; shared state sits
// behind the mutex.
type Recorder struct {
	mu        sync.Mutex
	stream    *portaudio.Stream
	samples   []int16
	paused    bool
	level     float64
	startedAt time.Time
	held      time.Duration // accumulated time before the latest resume
}

// NewRecorder returns an idle recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Start requests the default input device and begins capturing. Device or
// permission failures surface as an error and leave the recorder idle.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stream != nil {
		return fmt.Errorf("already recording")
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialize audio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(captureRate), captureFrames, r.collect)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("open microphone: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("start microphone: %w", err)
	}

	r.stream = stream
	r.samples = r.samples[:0]
	r.paused = false
	r.held = 0
	r.startedAt = time.Now()
	return nil
}

// collect is the input stream callback.
func (r *Recorder) collect(in []int16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.paused {
		r.level = 0
		return
	}
	r.samples = append(r.samples, in...)

	var peak float64
	for _, s := range in {
		if a := math.Abs(float64(s)) / 32768.0; a > peak {
			peak = a
		}
	}
	r.level = peak
}

// Pause suspends capture without finalizing.
func (r *Recorder) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stream == nil || r.paused {
		return
	}
	r.paused = true
	r.held += time.Since(r.startedAt)
}

// Resume continues a paused capture.
func (r *Recorder) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stream == nil || !r.paused {
		return
	}
	r.paused = false
	r.startedAt = time.Now()
}

// Stop finalizes the capture and returns the recording as a WAV blob.
func (r *Recorder) Stop() ([]byte, time.Duration, error) {
	r.mu.Lock()
	stream := r.stream
	r.stream = nil
	samples := r.samples
	r.samples = nil
	r.level = 0
	r.mu.Unlock()

	if stream == nil {
		return nil, 0, fmt.Errorf("not recording")
	}
	stream.Stop()
	stream.Close()
	portaudio.Terminate()

	if len(samples) == 0 {
		return nil, 0, fmt.Errorf("no audio captured")
	}
	data, err := wavio.Encode(samples, captureRate)
	if err != nil {
		return nil, 0, fmt.Errorf("finalize recording: %w", err)
	}
	dur := time.Duration(float64(len(samples)) / captureRate * float64(time.Second))
	return data, dur, nil
}

// Recording reports whether a capture is in progress (paused or not).
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stream != nil
}

// Paused reports whether the capture is suspended.
func (r *Recorder) Paused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

// Elapsed returns the captured time so far, excluding paused stretches.
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stream == nil {
		return 0
	}
	if r.paused {
		return r.held
	}
	return r.held + time.Since(r.startedAt)
}

// Level reports the recent input amplitude in [0, 1].
func (r *Recorder) Level() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.level
}
