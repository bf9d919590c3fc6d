package availability

import (
	"testing"
	"time"
)

func at(t *testing.T, hour, min int) time.Time {
	t.Helper()
	return time.Date(2024, 1, 15, hour, min, 0, 0, time.UTC)
}

func iv(t *testing.T, startHour, startMin, endHour, endMin int) Interval {
	t.Helper()
	return Interval{Start: at(t, startHour, startMin), End: at(t, endHour, endMin)}
}

func TestOverlapsSymmetry(t *testing.T) {
	cases := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"disjoint", iv(t, 9, 0, 10, 0), iv(t, 11, 0, 12, 0), false},
		{"partial", iv(t, 9, 0, 10, 30), iv(t, 10, 0, 11, 0), true},
		{"contained", iv(t, 9, 0, 12, 0), iv(t, 10, 0, 11, 0), true},
		{"identical", iv(t, 9, 0, 10, 0), iv(t, 9, 0, 10, 0), true},
	}
	for _, tc := range cases {
		if got := tc.a.Overlaps(tc.b); got != tc.want {
			t.Errorf("%s: a.Overlaps(b) = %v, want %v", tc.name, got, tc.want)
		}
		if tc.a.Overlaps(tc.b) != tc.b.Overlaps(tc.a) {
			t.Errorf("%s: overlap is not symmetric", tc.name)
		}
	}
}

func TestOverlapsHalfOpenBoundary(t *testing.T) {
	ending := iv(t, 9, 0, 10, 0)
	starting := iv(t, 10, 0, 11, 0)
	if ending.Overlaps(starting) || starting.Overlaps(ending) {
		t.Fatal("back-to-back intervals must not overlap")
	}
}

func TestNewIntervalRejectsInverted(t *testing.T) {
	if _, err := NewInterval(at(t, 10, 0), at(t, 9, 0)); err == nil {
		t.Fatal("expected error for inverted interval")
	}
	if _, err := NewInterval(at(t, 10, 0), at(t, 10, 0)); err == nil {
		t.Fatal("expected error for empty interval")
	}
}

func TestCoalesceMergesOverlapping(t *testing.T) {
	// Two mutually overlapping bookings must merge so subtraction cannot
	// open a phantom free gap between them.
	merged := coalesce([]Interval{iv(t, 11, 0, 13, 0), iv(t, 10, 0, 12, 0)})
	if len(merged) != 1 {
		t.Fatalf("expected 1 merged interval, got %d", len(merged))
	}
	want := iv(t, 10, 0, 13, 0)
	if !merged[0].Start.Equal(want.Start) || !merged[0].End.Equal(want.End) {
		t.Fatalf("merged = %v-%v, want %v-%v", merged[0].Start, merged[0].End, want.Start, want.End)
	}
}

func TestCoalesceKeepsTouchingAsOne(t *testing.T) {
	merged := coalesce([]Interval{iv(t, 9, 0, 10, 0), iv(t, 10, 0, 11, 0)})
	if len(merged) != 1 {
		t.Fatalf("expected touching intervals to merge, got %d", len(merged))
	}
}

func TestSubtract(t *testing.T) {
	window := iv(t, 9, 0, 17, 0)
	busy := []Interval{iv(t, 10, 0, 11, 0), iv(t, 13, 0, 14, 0)}

	free := subtract(window, busy)
	want := []Interval{iv(t, 9, 0, 10, 0), iv(t, 11, 0, 13, 0), iv(t, 14, 0, 17, 0)}
	if len(free) != len(want) {
		t.Fatalf("expected %d free intervals, got %d: %v", len(want), len(free), free)
	}
	for i := range want {
		if !free[i].Start.Equal(want[i].Start) || !free[i].End.Equal(want[i].End) {
			t.Errorf("free[%d] = %v-%v, want %v-%v", i, free[i].Start, free[i].End, want[i].Start, want[i].End)
		}
	}
}

func TestSubtractSpanningBooking(t *testing.T) {
	window := iv(t, 9, 0, 12, 0)
	free := subtract(window, []Interval{iv(t, 8, 0, 13, 0)})
	if len(free) != 0 {
		t.Fatalf("expected no free intervals, got %v", free)
	}
}

func TestSubtractBoundaryOverlap(t *testing.T) {
	window := iv(t, 9, 0, 12, 0)
	free := subtract(window, []Interval{iv(t, 8, 0, 10, 0)})
	if len(free) != 1 {
		t.Fatalf("expected 1 free interval, got %d", len(free))
	}
	if !free[0].Start.Equal(at(t, 10, 0)) || !free[0].End.Equal(at(t, 12, 0)) {
		t.Fatalf("free = %v-%v, want 10:00-12:00", free[0].Start, free[0].End)
	}
}
