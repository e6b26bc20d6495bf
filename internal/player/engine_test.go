package player

import (
	"errors"
	"testing"
	"time"

	"github.com/rmarin/voznota/internal/store"
	"github.com/rmarin/voznota/internal/wavio"
)

// fakeOutput is an Output that advances only when told to, so tests control
// time completely.
type fakeOutput struct {
	clip    *wavio.Clip
	pos     time.Duration
	speed   float64
	playing bool
	done    bool
	failOn  bool
}

func (f *fakeOutput) Play(clip *wavio.Clip, at time.Duration, speed float64) error {
	if f.failOn {
		return errors.New("device failure")
	}
	f.clip = clip
	f.pos = at
	f.speed = speed
	f.playing = true
	f.done = false
	return nil
}

func (f *fakeOutput) Pause()                  { f.playing = false }
func (f *fakeOutput) Resume()                 { f.playing = true }
func (f *fakeOutput) Seek(at time.Duration)   { f.pos = at; f.done = false }
func (f *fakeOutput) Position() time.Duration { return f.pos }
func (f *fakeOutput) Done() bool              { return f.done }
func (f *fakeOutput) SetSpeed(s float64)      { f.speed = s }
func (f *fakeOutput) Level() float64          { return 0 }
func (f *fakeOutput) Stop()                   { f.clip = nil; f.playing = false; f.pos = 0 }
func (f *fakeOutput) Close() error            { return nil }

// advance simulates playback progressing to an absolute position.
func (f *fakeOutput) advance(to time.Duration) {
	f.pos = to
	if f.clip != nil && to >= f.clip.Duration() {
		f.done = true
	}
}

func clipOf(seconds int) *wavio.Clip {
	return &wavio.Clip{Samples: make([]int16, seconds*1000), SampleRate: 1000}
}

func setup(t *testing.T) (*Engine, *fakeOutput, *store.Store) {
	t.Helper()
	out := &fakeOutput{}
	recs := store.New()
	return New(out, recs), out, recs
}

func TestSelectAndPlayUnknownIDIsNoop(t *testing.T) {
	e, _, _ := setup(t)
	if e.SelectAndPlay(42) {
		t.Error("unknown id should not request a load")
	}
	if e.State() != Idle {
		t.Errorf("state = %v, want Idle", e.State())
	}
}

func TestLoadLifecycle(t *testing.T) {
	e, out, recs := setup(t)
	rec := recs.Add("a", nil, "audio/wav")

	if !e.SelectAndPlay(rec.ID) {
		t.Fatal("expected a load request")
	}
	if e.State() != Loading || e.ActiveID() != rec.ID {
		t.Fatalf("state = %v, active = %d", e.State(), e.ActiveID())
	}

	if !e.CompleteLoad(rec.ID, clipOf(10), nil) {
		t.Fatal("matching load should apply")
	}
	if e.State() != Playing {
		t.Errorf("state = %v, want Playing", e.State())
	}
	if rec.Duration != 10*time.Second {
		t.Errorf("duration = %v, want 10s", rec.Duration)
	}
	if !out.playing {
		t.Error("output should be playing")
	}
}

func TestRapidSwitchLastTargetWins(t *testing.T) {
	e, _, recs := setup(t)
	a := recs.Add("a", nil, "audio/wav")
	b := recs.Add("b", nil, "audio/wav")

	e.SelectAndPlay(a.ID)
	e.SelectAndPlay(b.ID) // before a's load completes

	if e.CompleteLoad(a.ID, clipOf(10), nil) {
		t.Error("stale load for a should be discarded")
	}
	if a.Duration != 0 {
		t.Error("stale load must not touch a's duration")
	}
	if !e.CompleteLoad(b.ID, clipOf(20), nil) {
		t.Error("current load for b should apply")
	}
	if e.ActiveID() != b.ID || e.State() != Playing {
		t.Errorf("active = %d, state = %v, want b playing", e.ActiveID(), e.State())
	}
}

func TestResumeInPlaceWhenPaused(t *testing.T) {
	e, out, recs := setup(t)
	rec := recs.Add("a", nil, "audio/wav")

	e.SelectAndPlay(rec.ID)
	e.CompleteLoad(rec.ID, clipOf(10), nil)
	out.advance(4 * time.Second)
	e.Pause()

	if e.SelectAndPlay(rec.ID) {
		t.Error("selecting the paused active recording must not reload")
	}
	if e.State() != Playing {
		t.Errorf("state = %v, want Playing", e.State())
	}
	if out.pos != 4*time.Second {
		t.Errorf("position = %v, want 4s preserved", out.pos)
	}
}

func TestSwitchAwayAndBackResumesSavedPosition(t *testing.T) {
	e, out, recs := setup(t)
	a := recs.Add("a", nil, "audio/wav")
	b := recs.Add("b", nil, "audio/wav")

	e.SelectAndPlay(a.ID)
	e.CompleteLoad(a.ID, clipOf(10), nil)
	out.advance(4 * time.Second)
	e.Pause()

	e.SelectAndPlay(b.ID)
	e.CompleteLoad(b.ID, clipOf(20), nil)
	if a.LastPos != 4*time.Second {
		t.Fatalf("a.LastPos = %v, want 4s snapshotted on switch", a.LastPos)
	}

	e.SelectAndPlay(a.ID)
	e.CompleteLoad(a.ID, clipOf(10), nil)
	if out.pos != 4*time.Second {
		t.Errorf("resumed at %v, want 4s", out.pos)
	}
}

func TestStopResetsPosition(t *testing.T) {
	e, out, recs := setup(t)
	rec := recs.Add("a", nil, "audio/wav")

	e.SelectAndPlay(rec.ID)
	e.CompleteLoad(rec.ID, clipOf(10), nil)
	out.advance(7 * time.Second)

	e.Stop(rec.ID)
	if rec.LastPos != 0 {
		t.Errorf("LastPos = %v, want 0", rec.LastPos)
	}
	if e.State() != Paused {
		t.Errorf("state = %v, want Paused", e.State())
	}
	if out.pos != 0 {
		t.Errorf("output position = %v, want 0", out.pos)
	}
}

func TestStopInactiveRecordingOnlyResetsIt(t *testing.T) {
	e, _, recs := setup(t)
	a := recs.Add("a", nil, "audio/wav")
	b := recs.Add("b", nil, "audio/wav")
	b.LastPos = 5 * time.Second

	e.SelectAndPlay(a.ID)
	e.CompleteLoad(a.ID, clipOf(10), nil)

	e.Stop(b.ID)
	if b.LastPos != 0 {
		t.Errorf("b.LastPos = %v, want 0", b.LastPos)
	}
	if e.ActiveID() != a.ID || e.State() != Playing {
		t.Error("stopping an inactive recording must not disturb the active one")
	}
}

func TestSeekActive(t *testing.T) {
	e, out, recs := setup(t)
	rec := recs.Add("a", nil, "audio/wav")

	e.SelectAndPlay(rec.ID)
	e.CompleteLoad(rec.ID, clipOf(10), nil)

	if e.Seek(rec.ID, 0.5) {
		t.Error("seeking the active recording must not reload")
	}
	if out.pos != 5*time.Second {
		t.Errorf("position = %v, want 5s", out.pos)
	}
}

func TestDeferredSeekAppliedOnceThenCleared(t *testing.T) {
	e, out, recs := setup(t)
	a := recs.Add("a", nil, "audio/wav")
	b := recs.Add("b", nil, "audio/wav")

	if !e.Seek(b.ID, 0.5) {
		t.Fatal("seeking an unbound recording should request a load")
	}
	e.CompleteLoad(b.ID, clipOf(20), nil)
	if out.pos != 10*time.Second {
		t.Fatalf("deferred seek landed at %v, want 10s", out.pos)
	}

	// A later unrelated load must start from the recording's own resume
	// position, not replay the old seek.
	e.SelectAndPlay(a.ID)
	e.CompleteLoad(a.ID, clipOf(10), nil)
	if out.pos != 0 {
		t.Errorf("stale seek replayed: position = %v, want 0", out.pos)
	}
}

func TestSwitchCancelsDeferredSeekForOtherRecording(t *testing.T) {
	e, out, recs := setup(t)
	b := recs.Add("b", nil, "audio/wav")
	c := recs.Add("c", nil, "audio/wav")

	// Queue a deferred seek for b, then switch to c before b's load
	// completes. The seek belonged to b and must not carry over.
	e.Seek(b.ID, 0.5)
	e.SelectAndPlay(c.ID)

	if e.CompleteLoad(b.ID, clipOf(20), nil) {
		t.Error("stale load for b should be discarded")
	}
	if !e.CompleteLoad(c.ID, clipOf(10), nil) {
		t.Fatal("current load for c should apply")
	}
	if out.pos != 0 {
		t.Errorf("c started at %v, want 0: b's deferred seek leaked", out.pos)
	}
}

func TestRewindClampsAtZero(t *testing.T) {
	e, out, recs := setup(t)
	rec := recs.Add("a", nil, "audio/wav")

	e.SelectAndPlay(rec.ID)
	e.CompleteLoad(rec.ID, clipOf(10), nil)
	out.advance(3 * time.Second)

	e.Rewind(10 * time.Second)
	if out.pos != 0 {
		t.Errorf("position = %v, want clamped 0", out.pos)
	}
}

func TestRewindWithNothingActiveIsNoop(t *testing.T) {
	e, _, _ := setup(t)
	e.Rewind(5 * time.Second) // must not panic or change state
	if e.State() != Idle {
		t.Errorf("state = %v, want Idle", e.State())
	}
}

func TestNaturalEndResetsPosition(t *testing.T) {
	e, out, recs := setup(t)
	rec := recs.Add("a", nil, "audio/wav")

	e.SelectAndPlay(rec.ID)
	e.CompleteLoad(rec.ID, clipOf(10), nil)
	out.advance(10 * time.Second)

	id, ended := e.Tick()
	if !ended || id != rec.ID {
		t.Fatalf("Tick = %d, %v, want ended %d", id, ended, rec.ID)
	}
	if rec.LastPos != 0 {
		t.Errorf("LastPos = %v, want 0 after natural end", rec.LastPos)
	}
	if e.State() != Ended {
		t.Errorf("state = %v, want Ended", e.State())
	}

	// Repeat one: selecting the same recording replays from the start.
	e.SelectAndPlay(rec.ID)
	e.CompleteLoad(rec.ID, clipOf(10), nil)
	if out.pos != 0 {
		t.Errorf("replay started at %v, want 0", out.pos)
	}
}

func TestLoadFailureReturnsToIdleNotEnded(t *testing.T) {
	e, _, recs := setup(t)
	rec := recs.Add("a", nil, "audio/wav")

	e.SelectAndPlay(rec.ID)
	if !e.CompleteLoad(rec.ID, nil, errors.New("corrupt blob")) {
		t.Fatal("matching failed load should be acknowledged")
	}
	if e.State() != Idle {
		t.Errorf("state = %v, want Idle after load failure", e.State())
	}
	if e.ActiveID() != 0 {
		t.Errorf("active = %d, want unbound", e.ActiveID())
	}
	if _, ended := e.Tick(); ended {
		t.Error("load failure must not look like a natural end")
	}
}

func TestTogglePlayPause(t *testing.T) {
	e, out, recs := setup(t)
	rec := recs.Add("a", nil, "audio/wav")

	// Nothing active, no fallback: no-op.
	if need, target := e.TogglePlayPause(0, 0); need || target != 0 {
		t.Error("toggle with empty store should be a no-op")
	}
	if e.State() != Idle {
		t.Errorf("state = %v, want Idle", e.State())
	}

	// Nothing active, fallback provided: selects it.
	need, target := e.TogglePlayPause(0, rec.ID)
	if !need || target != rec.ID {
		t.Fatalf("toggle fallback = %v, %d", need, target)
	}
	e.CompleteLoad(rec.ID, clipOf(10), nil)

	// Toggle on active: pause, then resume.
	out.advance(2 * time.Second)
	e.TogglePlayPause(rec.ID, 0)
	if e.State() != Paused {
		t.Errorf("state = %v, want Paused", e.State())
	}
	if rec.LastPos != 2*time.Second {
		t.Errorf("LastPos = %v, want 2s snapshotted on pause", rec.LastPos)
	}
	e.TogglePlayPause(rec.ID, 0)
	if e.State() != Playing {
		t.Errorf("state = %v, want Playing", e.State())
	}
}

func TestSetSpeedAppliesToOutput(t *testing.T) {
	e, out, recs := setup(t)
	rec := recs.Add("a", nil, "audio/wav")

	e.SelectAndPlay(rec.ID)
	e.CompleteLoad(rec.ID, clipOf(10), nil)

	e.SetSpeed(1.5)
	if out.speed != 1.5 {
		t.Errorf("output speed = %v, want 1.5", out.speed)
	}
	e.SetSpeed(0) // rejected
	if e.Speed() != 1.5 {
		t.Errorf("speed = %v, want 1.5 after rejecting 0", e.Speed())
	}
}

func TestDeactivateUnbinds(t *testing.T) {
	e, _, recs := setup(t)
	rec := recs.Add("a", nil, "audio/wav")

	e.SelectAndPlay(rec.ID)
	e.CompleteLoad(rec.ID, clipOf(10), nil)
	e.Deactivate()

	if e.State() != Idle || e.ActiveID() != 0 {
		t.Errorf("state = %v, active = %d, want idle unbound", e.State(), e.ActiveID())
	}
}
