package store

import (
	"testing"
	"time"
)

func addN(s *Store, n int) []int64 {
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		rec := s.Add("rec", []byte{1, 2, 3}, "audio/wav")
		ids = append(ids, rec.ID)
	}
	return ids
}

func TestAddAssignsUniqueIncreasingIDs(t *testing.T) {
	s := New()
	ids := addN(s, 10)
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Fatalf("ids[%d] = %d not greater than ids[%d] = %d", i, ids[i], i-1, ids[i-1])
		}
	}
}

func TestOrderFollowsSortDirection(t *testing.T) {
	s := New()
	ids := addN(s, 3)

	order := s.Order()
	if order[0] != ids[0] || order[2] != ids[2] {
		t.Errorf("ascending order = %v, want %v", order, ids)
	}

	s.SortInsertion(true)
	order = s.Order()
	if order[0] != ids[2] || order[2] != ids[0] {
		t.Errorf("descending order = %v", order)
	}

	// New items respect the current direction: descending puts them first.
	rec := s.Add("new", nil, "audio/wav")
	if s.Order()[0] != rec.ID {
		t.Error("descending store should place new recording first")
	}
}

func TestNextPrev(t *testing.T) {
	s := New()
	ids := addN(s, 3)

	if next, ok := s.Next(ids[0], false); !ok || next != ids[1] {
		t.Errorf("Next(first) = %d, %v", next, ok)
	}
	if _, ok := s.Next(ids[2], false); ok {
		t.Error("Next(last) without wrap should fail")
	}
	if next, ok := s.Next(ids[2], true); !ok || next != ids[0] {
		t.Errorf("Next(last) with wrap = %d, %v, want first", next, ok)
	}
	if _, ok := s.Prev(ids[0]); ok {
		t.Error("Prev(first) should never wrap")
	}
	if prev, ok := s.Prev(ids[2]); !ok || prev != ids[1] {
		t.Errorf("Prev(last) = %d, %v", prev, ok)
	}
}

func TestMove(t *testing.T) {
	s := New()
	ids := addN(s, 3)

	got := s.Move(0, 1)
	if got != 1 {
		t.Errorf("Move(0, +1) = %d, want 1", got)
	}
	order := s.Order()
	if order[0] != ids[1] || order[1] != ids[0] {
		t.Errorf("order after move = %v", order)
	}

	// Clamped at the edges.
	if got := s.Move(2, 5); got != 2 {
		t.Errorf("Move past end = %d, want 2", got)
	}
	if got := s.Move(0, -5); got != 0 {
		t.Errorf("Move past start = %d, want 0", got)
	}
}

func TestRemoveReleasesAudio(t *testing.T) {
	s := New()
	rec := s.Add("rec", []byte{9, 9, 9}, "audio/wav")

	s.Remove(rec.ID)
	if rec.Data != nil {
		t.Error("Remove should release the audio bytes")
	}
	if s.Get(rec.ID) != nil {
		t.Error("removed recording still retrievable")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d after remove", s.Len())
	}
}

func TestClear(t *testing.T) {
	s := New()
	addN(s, 4)
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len = %d after clear", s.Len())
	}
}

func TestTranscriptOnlyTransitionsOnce(t *testing.T) {
	s := New()
	rec := s.Add("rec", nil, "audio/wav")

	if rec.Transcript != nil {
		t.Fatal("new recording should have no transcript")
	}
	if !s.SetTranscript(rec.ID, "hola") {
		t.Fatal("first SetTranscript should succeed")
	}
	if s.SetTranscript(rec.ID, "otra") {
		t.Error("second SetTranscript should be ignored")
	}
	if *rec.Transcript != "hola" {
		t.Errorf("transcript = %q, want hola", *rec.Transcript)
	}

	s.ClearTranscripts()
	if rec.Transcript != nil {
		t.Error("bulk clear should reset the transcript")
	}
	if !s.SetTranscript(rec.ID, "otra") {
		t.Error("SetTranscript should work again after bulk clear")
	}
}

func TestLastPosClamped(t *testing.T) {
	s := New()
	rec := s.Add("rec", nil, "audio/wav")

	s.SetLastPos(rec.ID, -time.Second)
	if rec.LastPos != 0 {
		t.Errorf("negative position not clamped: %v", rec.LastPos)
	}

	s.SetLastPos(rec.ID, 90*time.Second) // duration unknown, anything goes
	s.SetDuration(rec.ID, 10*time.Second)
	if rec.LastPos != 10*time.Second {
		t.Errorf("position not clamped to duration: %v", rec.LastPos)
	}

	s.SetLastPos(rec.ID, 30*time.Second)
	if rec.LastPos != 10*time.Second {
		t.Errorf("position beyond duration not clamped: %v", rec.LastPos)
	}
}
