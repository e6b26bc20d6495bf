// Package store holds the session's recordings: an ordered, in-memory
// collection that lives exactly as long as the program run.
package store

import (
	"sort"
	"time"
)

// Recording is a single captured or imported audio item.
type Recording struct {
	ID         int64  // unique, monotonically increasing, time-of-creation based
	Name       string // display label
	Data       []byte // raw WAV bytes; owned by the store, nil once released
	MIME       string
	Duration   time.Duration // 0 until metadata has been probed
	Transcript *string       // nil = never requested or in flight
	LastPos    time.Duration // resume position for the next playback
	CreatedAt  time.Time
}

// Store is the ordered collection of recordings for the session.
type Store struct {
	recs   map[int64]*Recording
	order  []int64 // current display order
	desc   bool    // insertion sort direction
	lastID int64
}

// New returns an empty store sorted by insertion, oldest first.
func New() *Store {
	return &Store{recs: make(map[int64]*Recording)}
}

// Add appends a new recording and returns it. The id is derived from the
// creation time and forced strictly above every id handed out before, so
// rapid additions stay unique.
func (s *Store) Add(name string, data []byte, mime string) *Recording {
	now := time.Now()
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id

	rec := &Recording{
		ID:        id,
		Name:      name,
		Data:      data,
		MIME:      mime,
		CreatedAt: now,
	}
	s.recs[id] = rec
	if s.desc {
		s.order = append([]int64{id}, s.order...)
	} else {
		s.order = append(s.order, id)
	}
	return rec
}

// Get returns the recording with the given id, or nil.
func (s *Store) Get(id int64) *Recording {
	return s.recs[id]
}

// Len returns the number of recordings.
func (s *Store) Len() int {
	return len(s.order)
}

// Order returns the ids in current display order. The slice is a copy.
func (s *Store) Order() []int64 {
	out := make([]int64, len(s.order))
	copy(out, s.order)
	return out
}

// IndexOf returns the display position of id, or -1.
func (s *Store) IndexOf(id int64) int {
	for i, v := range s.order {
		if v == id {
			return i
		}
	}
	return -1
}

// At returns the recording at display position i, or nil.
func (s *Store) At(i int) *Recording {
	if i < 0 || i >= len(s.order) {
		return nil
	}
	return s.recs[s.order[i]]
}

// First returns the first recording in display order, or nil.
func (s *Store) First() *Recording {
	return s.At(0)
}

// Next returns the id following id in display order. With wrap set, running
// off the end comes back to the first element; otherwise ok is false there.
func (s *Store) Next(id int64, wrap bool) (int64, bool) {
	i := s.IndexOf(id)
	if i < 0 {
		return 0, false
	}
	if i+1 < len(s.order) {
		return s.order[i+1], true
	}
	if wrap && len(s.order) > 0 {
		return s.order[0], true
	}
	return 0, false
}

// Prev returns the id preceding id in display order. Never wraps.
func (s *Store) Prev(id int64) (int64, bool) {
	i := s.IndexOf(id)
	if i <= 0 {
		return 0, false
	}
	return s.order[i-1], true
}

// SortInsertion reorders the display by creation id, oldest first unless
// desc is set. New additions keep following the chosen direction.
func (s *Store) SortInsertion(desc bool) {
	s.desc = desc
	sort.Slice(s.order, func(i, j int) bool {
		if desc {
			return s.order[i] > s.order[j]
		}
		return s.order[i] < s.order[j]
	})
}

// SortDesc reports the current insertion sort direction.
func (s *Store) SortDesc() bool {
	return s.desc
}

// Move shifts the recording at display position i by delta rows, clamped to
// the list, and returns the new position.
func (s *Store) Move(i, delta int) int {
	j := i + delta
	if i < 0 || i >= len(s.order) {
		return i
	}
	if j < 0 {
		j = 0
	}
	if j >= len(s.order) {
		j = len(s.order) - 1
	}
	if i == j {
		return i
	}
	id := s.order[i]
	s.order = append(s.order[:i], s.order[i+1:]...)
	rest := append([]int64{id}, s.order[j:]...)
	s.order = append(s.order[:j], rest...)
	return j
}

// Remove deletes a recording and releases its audio bytes.
func (s *Store) Remove(id int64) {
	rec := s.recs[id]
	if rec == nil {
		return
	}
	rec.Data = nil
	delete(s.recs, id)
	if i := s.IndexOf(id); i >= 0 {
		s.order = append(s.order[:i], s.order[i+1:]...)
	}
}

// Clear deletes every recording and releases all audio bytes.
func (s *Store) Clear() {
	for _, rec := range s.recs {
		rec.Data = nil
	}
	s.recs = make(map[int64]*Recording)
	s.order = s.order[:0]
}

// SetDuration records the probed duration for id and clamps any stale resume
// position into range.
func (s *Store) SetDuration(id int64, d time.Duration) {
	rec := s.recs[id]
	if rec == nil {
		return
	}
	rec.Duration = d
	if rec.LastPos > d {
		rec.LastPos = d
	}
}

// SetLastPos stores the resume position for id, clamped to [0, duration]
// once the duration is known.
func (s *Store) SetLastPos(id int64, pos time.Duration) {
	rec := s.recs[id]
	if rec == nil {
		return
	}
	if pos < 0 {
		pos = 0
	}
	if rec.Duration > 0 && pos > rec.Duration {
		pos = rec.Duration
	}
	rec.LastPos = pos
}

// SetTranscript stores a completed transcription. A transcript only ever
// moves from unset to set; repeat calls are ignored.
func (s *Store) SetTranscript(id int64, text string) bool {
	rec := s.recs[id]
	if rec == nil || rec.Transcript != nil {
		return false
	}
	rec.Transcript = &text
	return true
}

// ClearTranscripts drops every transcript, the one bulk operation allowed to
// reset them.
func (s *Store) ClearTranscripts() {
	for _, rec := range s.recs {
		rec.Transcript = nil
	}
}
