package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/inkflow/inkflow/services/booking-service/internal/availability"
)

type staticStore struct {
	bookings []availability.Booking
}

func (s *staticStore) ListBookings(_ context.Context, start, end time.Time, artistIDs []string) ([]availability.Booking, error) {
	var out []availability.Booking
	for _, b := range s.bookings {
		if !b.Interval.Start.Before(end) || !b.Interval.End.After(start) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func weekHours(t *testing.T) *availability.Hours {
	t.Helper()
	var rules []availability.BusinessHoursRule
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		rules = append(rules, availability.BusinessHoursRule{
			Weekday:     wd,
			OpenMinute:  9 * 60,
			CloseMinute: 17 * 60,
			Open:        true,
		})
	}
	hours, err := availability.NewHours(rules)
	if err != nil {
		t.Fatalf("NewHours failed: %v", err)
	}
	return hours
}

// nextWeekDay returns midnight UTC of a day at least a week out, so the
// coordinator's started-slot filter never interferes.
func nextWeekDay() time.Time {
	t := time.Now().UTC().AddDate(0, 0, 8)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func TestSlotsEndpoint(t *testing.T) {
	day := nextWeekDay()
	store := &staticStore{bookings: []availability.Booking{
		{
			ID:       "b1",
			ArtistID: "r1",
			Interval: availability.Interval{Start: day.Add(10 * time.Hour), End: day.Add(11 * time.Hour)},
			Status:   availability.StatusBooked,
		},
	}}
	coordinator := availability.NewCoordinator(weekHours(t), store, nil, availability.Policy{})
	h := NewAvailabilityHandler(coordinator, slog.Default())

	url := "http://example.com/api/v1/public/slots?artist_ids=r1&duration_minutes=60" +
		"&start=" + day.Format(time.RFC3339) +
		"&end=" + day.AddDate(0, 0, 1).Format(time.RFC3339)
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rw := httptest.NewRecorder()
	h.Slots(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rw.Code, rw.Body.String())
	}
	var items []slotItem
	if err := json.Unmarshal(rw.Body.Bytes(), &items); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if len(items) != 7 {
		t.Fatalf("expected 7 slots, got %d: %v", len(items), items)
	}
	booked := day.Add(10 * time.Hour).Format(time.RFC3339)
	for _, item := range items {
		if item.StartTime == booked {
			t.Fatalf("booked hour offered as a slot: %v", item)
		}
		if len(item.ArtistIDs) != 1 || item.ArtistIDs[0] != "r1" {
			t.Fatalf("unexpected artists on slot: %v", item.ArtistIDs)
		}
	}
}

func TestSlotsEndpointRejectsBadRange(t *testing.T) {
	coordinator := availability.NewCoordinator(weekHours(t), &staticStore{}, nil, availability.Policy{})
	h := NewAvailabilityHandler(coordinator, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/v1/public/slots?start=2024-06-03T17:00:00Z&end=2024-06-03T09:00:00Z", nil)
	rw := httptest.NewRecorder()
	h.Slots(rw, req)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
}

func TestNextSlotEndpoint(t *testing.T) {
	day := nextWeekDay()
	coordinator := availability.NewCoordinator(weekHours(t), &staticStore{}, nil, availability.Policy{})
	h := NewAvailabilityHandler(coordinator, slog.Default())

	url := "http://example.com/api/v1/public/slots/next?artist_ids=r1&duration_minutes=60&from=" + day.Format(time.RFC3339)
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rw := httptest.NewRecorder()
	h.NextSlot(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rw.Code, rw.Body.String())
	}
	var item suggestionItem
	if err := json.Unmarshal(rw.Body.Bytes(), &item); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	want := day.Add(9 * time.Hour).Format(time.RFC3339)
	if item.StartTime != want {
		t.Fatalf("expected first slot at %s, got %s", want, item.StartTime)
	}
}

func TestNextSlotEndpointZeroDays(t *testing.T) {
	coordinator := availability.NewCoordinator(weekHours(t), &staticStore{}, nil, availability.Policy{})
	h := NewAvailabilityHandler(coordinator, slog.Default())

	url := "http://example.com/api/v1/public/slots/next?artist_ids=r1&max_days=0&from=" + nextWeekDay().Format(time.RFC3339)
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rw := httptest.NewRecorder()
	h.NextSlot(rw, req)
	if rw.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for zero-day scan, got %d", rw.Code)
	}
}

func TestSuggestEndpointRequiresPreferredStart(t *testing.T) {
	coordinator := availability.NewCoordinator(weekHours(t), &staticStore{}, nil, availability.Policy{})
	h := NewAvailabilityHandler(coordinator, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/v1/public/slots/suggest?artist_id=r1", nil)
	rw := httptest.NewRecorder()
	h.Suggest(rw, req)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
}
