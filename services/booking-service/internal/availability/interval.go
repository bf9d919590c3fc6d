package availability

import (
	"fmt"
	"sort"
	"time"
)

// Interval is a half-open time range [Start, End). Two intervals that touch
// at a boundary do not overlap.
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start, end time.Time) (Interval, error) {
	if !end.After(start) {
		return Interval{}, fmt.Errorf("%w: interval end %s is not after start %s", ErrInvalidArgument, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether the two half-open intervals share any instant.
// This single symmetric predicate is the only overlap test in the engine.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Contains reports whether other lies entirely within iv.
func (iv Interval) Contains(other Interval) bool {
	return !other.Start.Before(iv.Start) && !other.End.After(iv.End)
}

// Intersect returns the shared sub-interval, if any.
func (iv Interval) Intersect(other Interval) (Interval, bool) {
	start := iv.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := iv.End
	if other.End.Before(end) {
		end = other.End
	}
	if !end.After(start) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// inflate widens the interval by pad on both sides.
func (iv Interval) inflate(pad time.Duration) Interval {
	if pad <= 0 {
		return iv
	}
	return Interval{Start: iv.Start.Add(-pad), End: iv.End.Add(pad)}
}

// coalesce sorts intervals by start and merges any that overlap, so a pair of
// mutually overlapping bookings cannot double-subtract and open a phantom gap.
func coalesce(ivs []Interval) []Interval {
	if len(ivs) <= 1 {
		return ivs
	}
	sorted := make([]Interval, len(ivs))
	copy(sorted, ivs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	merged := sorted[:1]
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// subtract removes busy time from window. busy must be coalesced and sorted;
// the remaining sub-intervals are returned in chronological order.
func subtract(window Interval, busy []Interval) []Interval {
	var free []Interval
	cursor := window.Start
	for _, b := range busy {
		if !b.Overlaps(window) {
			continue
		}
		if b.Start.After(cursor) {
			free = append(free, Interval{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(window.End) {
		free = append(free, Interval{Start: cursor, End: window.End})
	}
	return free
}
