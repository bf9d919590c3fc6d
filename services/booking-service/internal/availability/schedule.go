package availability

import (
	"context"
	"fmt"
	"time"
)

// ScheduleBuilder combines the business-hours catalog with existing bookings
// to produce, per artist, the free intervals within a range.
type ScheduleBuilder struct {
	Hours *Hours
	Store Store
}

// FreeIntervals returns the ordered free intervals for each requested artist
// over [rng.Start, rng.End). Bookings are fetched in one batched read; when
// buffer > 0 every booking claims that much clearance on both sides.
//
// A store failure fails the whole call — no partial per-artist results.
func (b *ScheduleBuilder) FreeIntervals(ctx context.Context, rng Interval, artistIDs []string, buffer time.Duration) (map[string][]Interval, error) {
	if !rng.End.After(rng.Start) {
		return nil, fmt.Errorf("%w: empty schedule range", ErrInvalidArgument)
	}
	if len(artistIDs) == 0 {
		return nil, fmt.Errorf("%w: no artists to schedule", ErrInvalidArgument)
	}

	windows := b.openWindows(rng)
	if len(windows) == 0 {
		free := make(map[string][]Interval, len(artistIDs))
		for _, id := range artistIDs {
			free[id] = nil
		}
		return free, nil
	}

	// Widen the read by the buffer so a booking just outside the range still
	// claims clearance inside it.
	bookings, err := b.Store.ListBookings(ctx, rng.Start.Add(-buffer), rng.End.Add(buffer), artistIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	free := make(map[string][]Interval, len(artistIDs))
	for _, id := range artistIDs {
		var busy []Interval
		for _, bk := range bookings {
			if !bk.blocks(id) {
				continue
			}
			busy = append(busy, bk.Interval.inflate(buffer))
		}
		busy = coalesce(busy)

		var artistFree []Interval
		for _, win := range windows {
			artistFree = append(artistFree, subtract(win, busy)...)
		}
		free[id] = artistFree
	}
	return free, nil
}

// openWindows intersects the business-open hours of each calendar day in the
// range with the range itself, skipping closed days.
func (b *ScheduleBuilder) openWindows(rng Interval) []Interval {
	var windows []Interval
	day := time.Date(rng.Start.Year(), rng.Start.Month(), rng.Start.Day(), 0, 0, 0, 0, rng.Start.Location())
	for day.Before(rng.End) {
		if win, open := b.Hours.windowOn(day); open {
			if clipped, ok := win.Intersect(rng); ok {
				windows = append(windows, clipped)
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return windows
}
