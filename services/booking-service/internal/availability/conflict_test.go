package availability

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestDetectReportsOverlap(t *testing.T) {
	store := &fakeStore{bookings: []Booking{
		{ID: "b1", ArtistID: "r1", Interval: iv(t, 10, 0, 11, 0), Status: StatusBooked},
	}}
	d := &ConflictDetector{Store: store}

	report, err := d.Detect(context.Background(), iv(t, 10, 30, 11, 30), "r1", "")
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(report.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(report.Conflicts))
	}
	c := report.Conflicts[0]
	if c.Booking.ID != "b1" {
		t.Fatalf("conflicting booking = %s, want b1", c.Booking.ID)
	}
	if !c.Overlap.Start.Equal(at(t, 10, 30)) || !c.Overlap.End.Equal(at(t, 11, 0)) {
		t.Fatalf("overlap = %v-%v, want 10:30-11:00", c.Overlap.Start, c.Overlap.End)
	}
}

func TestDetectNoConflictIsEmptyReport(t *testing.T) {
	d := &ConflictDetector{Store: &fakeStore{}}
	report, err := d.Detect(context.Background(), iv(t, 9, 0, 10, 0), "r1", "")
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !report.Empty() {
		t.Fatal("expected empty report")
	}
}

func TestDetectIgnoresCancelled(t *testing.T) {
	store := &fakeStore{bookings: []Booking{
		{ID: "b1", ArtistID: "r1", Interval: iv(t, 10, 0, 11, 0), Status: StatusCancelled},
	}}
	d := &ConflictDetector{Store: store}

	report, err := d.Detect(context.Background(), iv(t, 10, 0, 11, 0), "r1", "")
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !report.Empty() {
		t.Fatal("cancelled booking must never conflict")
	}
}

func TestDetectExcludesOwnBooking(t *testing.T) {
	store := &fakeStore{bookings: []Booking{
		{ID: "b1", ArtistID: "r1", Interval: iv(t, 10, 0, 11, 0), Status: StatusBooked},
	}}
	d := &ConflictDetector{Store: store}

	report, err := d.Detect(context.Background(), iv(t, 10, 0, 11, 30), "r1", "b1")
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !report.Empty() {
		t.Fatal("a booking must not conflict with itself during reschedule checks")
	}
}

func TestDetectHalfOpenBoundary(t *testing.T) {
	store := &fakeStore{bookings: []Booking{
		{ID: "b1", ArtistID: "r1", Interval: iv(t, 9, 0, 10, 0), Status: StatusBooked},
	}}
	d := &ConflictDetector{Store: store}

	report, err := d.Detect(context.Background(), iv(t, 10, 0, 11, 0), "r1", "")
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !report.Empty() {
		t.Fatal("a booking ending at T must not conflict with one starting at T")
	}
}

func TestDetectOtherArtistDoesNotConflict(t *testing.T) {
	store := &fakeStore{bookings: []Booking{
		{ID: "b1", ArtistID: "r2", Interval: iv(t, 10, 0, 11, 0), Status: StatusBooked},
	}}
	d := &ConflictDetector{Store: store}

	report, err := d.Detect(context.Background(), iv(t, 10, 0, 11, 0), "r1", "")
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !report.Empty() {
		t.Fatal("another artist's booking must not conflict")
	}
}

func TestDetectStoreFailure(t *testing.T) {
	d := &ConflictDetector{Store: &fakeStore{err: errors.New("timeout")}}
	_, err := d.Detect(context.Background(), iv(t, 9, 0, 10, 0), "r1", "")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestOverlapConflictsSharedCalendarBooking(t *testing.T) {
	bookings := []Booking{
		{ID: "b1", Interval: iv(t, 10, 0, 11, 0), Status: StatusBooked},
	}
	report := OverlapConflicts(bookings, iv(t, 10, 0, 11, 0), "r1", "")
	if report.Empty() {
		t.Fatal("a booking without an artist blocks every artist")
	}
	if ids := report.BookingIDs(); len(ids) != 1 || ids[0] != "b1" {
		t.Fatalf("BookingIDs = %v, want [b1]", ids)
	}
}

func TestIsConflict(t *testing.T) {
	err := fmt.Errorf("create appointment: %w", &ConflictError{BookingIDs: []string{"b1"}})
	if !IsConflict(err) {
		t.Fatal("wrapped ConflictError should be detected")
	}
	if IsConflict(errors.New("boom")) {
		t.Fatal("unrelated error must not read as a conflict")
	}
}
