package availability

import (
	"context"
	"fmt"
	"sort"
)

// Conflict pairs a blocking booking with the portion of the proposed interval
// it overlaps.
type Conflict struct {
	Booking Booking
	Overlap Interval
}

// ConflictReport lists every existing booking that overlaps a proposed
// interval. An empty report means the interval is free.
type ConflictReport struct {
	Conflicts []Conflict
}

func (r ConflictReport) Empty() bool {
	return len(r.Conflicts) == 0
}

func (r ConflictReport) BookingIDs() []string {
	ids := make([]string, 0, len(r.Conflicts))
	for _, c := range r.Conflicts {
		ids = append(ids, c.Booking.ID)
	}
	return ids
}

// ConflictDetector answers whether a proposed interval collides with existing
// bookings. It is a pure query and never mutates anything.
type ConflictDetector struct {
	Store Store
}

// Detect returns the bookings overlapping iv for the artist (any artist when
// artistID is empty). excludeBookingID lets an update ignore the booking being
// moved. No conflict is an empty report, not an error.
func (d *ConflictDetector) Detect(ctx context.Context, iv Interval, artistID, excludeBookingID string) (ConflictReport, error) {
	if !iv.End.After(iv.Start) {
		return ConflictReport{}, fmt.Errorf("%w: empty conflict interval", ErrInvalidArgument)
	}

	var filter []string
	if artistID != "" {
		filter = []string{artistID}
	}
	bookings, err := d.Store.ListBookings(ctx, iv.Start, iv.End, filter)
	if err != nil {
		return ConflictReport{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return OverlapConflicts(bookings, iv, artistID, excludeBookingID), nil
}

// OverlapConflicts is the pure core of Detect. The write path reuses it inside
// its transaction to re-check against the latest committed rows before
// committing a new or moved booking.
func OverlapConflicts(bookings []Booking, iv Interval, artistID, excludeBookingID string) ConflictReport {
	var report ConflictReport
	for _, b := range bookings {
		if b.ID != "" && b.ID == excludeBookingID {
			continue
		}
		if !b.blocks(artistID) {
			continue
		}
		overlap, ok := b.Interval.Intersect(iv)
		if !ok {
			continue
		}
		report.Conflicts = append(report.Conflicts, Conflict{Booking: b, Overlap: overlap})
	}
	sort.Slice(report.Conflicts, func(i, j int) bool {
		a, b := report.Conflicts[i].Booking, report.Conflicts[j].Booking
		if !a.Interval.Start.Equal(b.Interval.Start) {
			return a.Interval.Start.Before(b.Interval.Start)
		}
		return a.ID < b.ID
	})
	return report
}
