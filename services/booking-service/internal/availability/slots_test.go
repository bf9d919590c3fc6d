package availability

import (
	"testing"
	"time"
)

func TestEnumerateSlotsExactDuration(t *testing.T) {
	free := map[string][]Interval{
		"r1": {iv(t, 9, 0, 12, 30)},
	}
	slots := EnumerateSlots(free, 60*time.Minute, 60*time.Minute, 0)
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	for _, s := range slots {
		if s.Interval.Duration() != 60*time.Minute {
			t.Errorf("slot %v has duration %v, want 60m", s.Interval.Start, s.Interval.Duration())
		}
	}
	// The trailing 12:00-13:00 window would spill past 12:30 and must not be emitted.
	last := slots[len(slots)-1]
	if !last.Interval.Start.Equal(at(t, 11, 0)) {
		t.Fatalf("last slot starts %v, want 11:00", last.Interval.Start)
	}
}

func TestEnumerateSlotsMergesEligibleArtists(t *testing.T) {
	free := map[string][]Interval{
		"r2": {iv(t, 9, 0, 10, 0)},
		"r1": {iv(t, 9, 0, 10, 0)},
	}
	slots := EnumerateSlots(free, 60*time.Minute, 60*time.Minute, 0)
	if len(slots) != 1 {
		t.Fatalf("expected a single merged slot, got %d", len(slots))
	}
	ids := slots[0].ArtistIDs
	if len(ids) != 2 || ids[0] != "r1" || ids[1] != "r2" {
		t.Fatalf("expected sorted artist ids [r1 r2], got %v", ids)
	}
}

func TestEnumerateSlotsChronologicalOrder(t *testing.T) {
	free := map[string][]Interval{
		"r2": {iv(t, 14, 0, 15, 0)},
		"r1": {iv(t, 9, 0, 10, 0)},
	}
	slots := EnumerateSlots(free, 60*time.Minute, 60*time.Minute, 0)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if !slots[0].Interval.Start.Before(slots[1].Interval.Start) {
		t.Fatal("slots are not in chronological order")
	}
}

func TestEnumerateSlotsMaxResultsTruncates(t *testing.T) {
	free := map[string][]Interval{
		"r1": {iv(t, 9, 0, 17, 0)},
	}
	slots := EnumerateSlots(free, 60*time.Minute, 60*time.Minute, 3)
	if len(slots) != 3 {
		t.Fatalf("expected truncation to 3 slots, got %d", len(slots))
	}
	if !slots[0].Interval.Start.Equal(at(t, 9, 0)) {
		t.Fatal("truncation must keep the earliest slots")
	}
}

func TestEnumerateSlotsBufferStep(t *testing.T) {
	free := map[string][]Interval{
		"r1": {iv(t, 9, 0, 12, 0)},
	}
	slots := EnumerateSlots(free, 60*time.Minute, 75*time.Minute, 0)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots with 75m step, got %d", len(slots))
	}
	if !slots[1].Interval.Start.Equal(at(t, 10, 15)) {
		t.Fatalf("second slot starts %v, want 10:15", slots[1].Interval.Start)
	}
}

func TestEnumerateSlotsNonPositiveDuration(t *testing.T) {
	free := map[string][]Interval{"r1": {iv(t, 9, 0, 17, 0)}}
	if slots := EnumerateSlots(free, 0, 0, 0); slots != nil {
		t.Fatalf("expected nil for zero duration, got %v", slots)
	}
}
