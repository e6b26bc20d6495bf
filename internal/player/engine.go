// Package player owns the single shared playback engine: one audio output,
// bound to at most one recording at a time, driven entirely by the UI event
// loop.
package player

import (
	"time"

	"github.com/rmarin/voznota/internal/store"
	"github.com/rmarin/voznota/internal/wavio"
)

// State is the engine's transport state.
type State int

const (
	Idle    State = iota // nothing bound
	Loading              // a recording was selected, waiting for its clip
	Playing
	Paused
	Ended // natural end of the bound recording
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Ended:
		return "ended"
	}
	return "unknown"
}

// Engine binds one recording at a time to the shared Output and keeps the
// store's resume positions in sync with transport commands.
//
// Loads are asynchronous: SelectAndPlay reports that a clip is needed, the
// caller decodes it off the event loop and hands it back via CompleteLoad.
// Every load is tagged with the target recording id; a completion whose id no
// longer matches the in-flight target is discarded, so a rapid sequence of
// selections always resolves to the last one.
type Engine struct {
	out  Output
	recs *store.Store

	state    State
	activeID int64
	pending  int64 // load tag; 0 when no load is in flight
	clip     *wavio.Clip
	speed    float64

	// Deferred seek, as a fraction of the duration, tagged with the
	// recording it was queued for. Applied once, on that recording's load
	// completion, then cleared; selecting any other recording cancels it so
	// a stale value never replays on a later unrelated load.
	seekFrac    float64
	seekID      int64
	seekPending bool
}

// New creates an engine over the given output and recording store.
func New(out Output, recs *store.Store) *Engine {
	return &Engine{out: out, recs: recs, speed: 1.0}
}

// State returns the transport state.
func (e *Engine) State() State { return e.state }

// ActiveID returns the bound recording id, 0 when idle.
func (e *Engine) ActiveID() int64 { return e.activeID }

// Playing reports whether audio is currently advancing.
func (e *Engine) Playing() bool { return e.state == Playing }

// Position returns the current offset within the bound recording.
func (e *Engine) Position() time.Duration {
	if e.clip == nil {
		return 0
	}
	return e.out.Position()
}

// Duration returns the bound clip's duration, 0 while loading or idle.
func (e *Engine) Duration() time.Duration {
	if e.clip == nil {
		return 0
	}
	return e.clip.Duration()
}

// Level returns the output amplitude for the visualizer observer.
func (e *Engine) Level() float64 { return e.out.Level() }

// snapshot saves the current position as the bound recording's resume point.
func (e *Engine) snapshot() {
	if e.activeID != 0 && e.clip != nil && (e.state == Playing || e.state == Paused) {
		e.recs.SetLastPos(e.activeID, e.out.Position())
	}
}

// SelectAndPlay binds the recording and starts (or resumes) playback.
// Returns true when the caller must decode the recording's clip and report
// back through CompleteLoad. An unknown id is ignored.
func (e *Engine) SelectAndPlay(id int64) (needLoad bool) {
	rec := e.recs.Get(id)
	if rec == nil {
		return false
	}

	if id == e.activeID && e.clip != nil {
		switch e.state {
		case Paused:
			// Same recording, just paused: resume in place instead of
			// reloading and losing the in-progress position.
			e.out.Resume()
			e.state = Playing
			return false
		case Playing:
			return false
		}
	}

	// Switching targets cancels any deferred seek queued for a different
	// recording.
	if e.seekPending && e.seekID != id {
		e.seekPending = false
	}

	e.snapshot()
	e.out.Stop()
	e.clip = nil
	e.activeID = id
	e.pending = id
	e.state = Loading
	return true
}

// CompleteLoad delivers a decoded clip (or a decode failure) for a load
// started by SelectAndPlay. Completions that no longer match the in-flight
// target are discarded and applied reports false. On failure the engine
// returns to Idle; the error is the caller's to surface, and no repeat
// policy applies.
func (e *Engine) CompleteLoad(id int64, clip *wavio.Clip, err error) (applied bool) {
	if e.state != Loading || id != e.pending {
		return false
	}
	e.pending = 0

	if err != nil {
		e.state = Idle
		e.activeID = 0
		e.clip = nil
		e.seekPending = false
		return true
	}

	e.clip = clip
	e.recs.SetDuration(id, clip.Duration())

	start := time.Duration(0)
	if rec := e.recs.Get(id); rec != nil {
		start = rec.LastPos
	}
	if e.seekPending && e.seekID == id {
		start = time.Duration(e.seekFrac * float64(clip.Duration()))
		e.seekPending = false
	}

	if err := e.out.Play(clip, start, e.speed); err != nil {
		e.state = Idle
		e.activeID = 0
		e.clip = nil
		return true
	}
	e.state = Playing
	return true
}

// TogglePlayPause toggles the given recording between playing and paused.
// With id 0 it acts on the active recording, or on fallback (the caller's
// notion of "first in display order") when nothing is bound. Returns whether
// a load is now needed and for which id.
func (e *Engine) TogglePlayPause(id, fallback int64) (needLoad bool, target int64) {
	if id == 0 {
		if e.activeID != 0 {
			id = e.activeID
		} else if fallback != 0 {
			id = fallback
		} else {
			return false, 0
		}
	}

	if id == e.activeID {
		switch e.state {
		case Playing:
			e.snapshot()
			e.out.Pause()
			e.state = Paused
			return false, id
		case Paused:
			e.out.Resume()
			e.state = Playing
			return false, id
		case Loading:
			return false, id
		}
	}
	return e.SelectAndPlay(id), id
}

// Pause suspends the active recording, recording its resume position.
func (e *Engine) Pause() {
	if e.state != Playing {
		return
	}
	e.snapshot()
	e.out.Pause()
	e.state = Paused
}

// Stop pauses the targeted recording and resets its position to zero. With
// id 0 it targets the active recording.
func (e *Engine) Stop(id int64) {
	if id == 0 {
		id = e.activeID
	}
	rec := e.recs.Get(id)
	if rec == nil {
		return
	}
	e.recs.SetLastPos(id, 0)

	if id != e.activeID {
		return
	}
	switch e.state {
	case Loading:
		// Cancel interest in the pending load.
		e.pending = 0
		e.seekPending = false
		e.state = Idle
		e.activeID = 0
	case Playing, Paused, Ended:
		e.out.Pause()
		e.out.Seek(0)
		e.state = Paused
	}
}

// Seek jumps to a fraction of the recording's duration. Seeking a recording
// that is not active selects it first and applies the seek once its clip
// arrives. Returns whether a load is now needed.
func (e *Engine) Seek(id int64, frac float64) (needLoad bool) {
	rec := e.recs.Get(id)
	if rec == nil {
		return false
	}
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}

	if id == e.activeID && e.clip != nil {
		e.out.Seek(time.Duration(frac * float64(e.clip.Duration())))
		if e.state == Ended {
			e.state = Paused
		}
		return false
	}

	e.seekFrac = frac
	e.seekID = id
	e.seekPending = true
	return e.SelectAndPlay(id)
}

// Rewind moves the active recording back by step, clamped at the start.
// No-op when nothing is active.
func (e *Engine) Rewind(step time.Duration) {
	if e.clip == nil || (e.state != Playing && e.state != Paused) {
		return
	}
	pos := e.out.Position() - step
	if pos < 0 {
		pos = 0
	}
	e.out.Seek(pos)
}

// Forward moves the active recording ahead by step, clamped at the end.
func (e *Engine) Forward(step time.Duration) {
	if e.clip == nil || (e.state != Playing && e.state != Paused) {
		return
	}
	pos := e.out.Position() + step
	if d := e.clip.Duration(); pos > d {
		pos = d
	}
	e.out.Seek(pos)
}

// SetSpeed changes the playback rate, applied immediately to the bound clip.
func (e *Engine) SetSpeed(speed float64) {
	if speed <= 0 {
		return
	}
	e.speed = speed
	e.out.SetSpeed(speed)
}

// Speed returns the configured playback rate.
func (e *Engine) Speed() float64 { return e.speed }

// Tick advances end-of-content detection. When the bound recording has
// played to its natural end, its position resets to zero and the engine
// moves to Ended; the finished id is returned so the caller can apply the
// repeat policy.
func (e *Engine) Tick() (endedID int64, ended bool) {
	if e.state != Playing || !e.out.Done() {
		return 0, false
	}
	e.recs.SetLastPos(e.activeID, 0)
	e.state = Ended
	return e.activeID, true
}

// Deactivate unbinds the engine and returns it to Idle. Used when the
// repeat policy is none, or when the active recording goes away.
func (e *Engine) Deactivate() {
	e.out.Stop()
	e.state = Idle
	e.activeID = 0
	e.pending = 0
	e.clip = nil
	e.seekPending = false
}

// Close releases the output device.
func (e *Engine) Close() error {
	return e.out.Close()
}
