package availability

import (
	"context"
	"time"
)

// fakeStore serves bookings from memory, filtering the way the persistence
// layer's overlap query does. It counts reads so tests can assert the engine
// stayed off the store.
type fakeStore struct {
	bookings []Booking
	err      error
	reads    int
}

func (s *fakeStore) ListBookings(_ context.Context, start, end time.Time, artistIDs []string) ([]Booking, error) {
	s.reads++
	if s.err != nil {
		return nil, s.err
	}
	rng := Interval{Start: start, End: end}
	var out []Booking
	for _, b := range s.bookings {
		if !b.Interval.Overlaps(rng) {
			continue
		}
		if len(artistIDs) > 0 && b.ArtistID != "" && !containsString(artistIDs, b.ArtistID) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

type fakeRoster struct {
	ids []string
	err error
}

func (r *fakeRoster) ListArtistIDs(_ context.Context, _ string) ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.ids, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
