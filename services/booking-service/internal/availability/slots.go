package availability

import (
	"sort"
	"time"
)

// Slot is a candidate bookable interval of exact duration. ArtistIDs lists
// every artist free for the whole interval, sorted, so callers can defer
// artist assignment.
type Slot struct {
	Interval  Interval
	ArtistIDs []string
}

// EnumerateSlots slices per-artist free intervals into discrete slots of
// exactly duration, advancing by step within each free interval. Artists free
// for the identical interval are merged into one slot. Results are ordered
// chronologically; maxResults is a hard global cap and truncation is silent.
func EnumerateSlots(free map[string][]Interval, duration, step time.Duration, maxResults int) []Slot {
	if duration <= 0 {
		return nil
	}
	if step <= 0 {
		step = duration
	}

	byStart := make(map[int64][]string)
	for artistID, intervals := range free {
		for _, iv := range intervals {
			for t := iv.Start; !t.Add(duration).After(iv.End); t = t.Add(step) {
				key := t.UnixNano()
				byStart[key] = append(byStart[key], artistID)
			}
		}
	}
	if len(byStart) == 0 {
		return nil
	}

	slots := make([]Slot, 0, len(byStart))
	for key, artists := range byStart {
		sort.Strings(artists)
		start := time.Unix(0, key).UTC()
		slots = append(slots, Slot{
			Interval:  Interval{Start: start, End: start.Add(duration)},
			ArtistIDs: dedupe(artists),
		})
	}
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Interval.Start.Before(slots[j].Interval.Start)
	})

	if maxResults > 0 && len(slots) > maxResults {
		slots = slots[:maxResults]
	}
	return slots
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}
