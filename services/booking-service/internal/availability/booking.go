package availability

import (
	"context"
	"time"
)

const (
	StatusBooked    = "booked"
	StatusCancelled = "cancelled"
)

// Booking is the engine's read projection of a persisted appointment.
// An empty ArtistID means the booking occupies the studio-wide calendar and
// blocks every artist.
type Booking struct {
	ID       string
	ArtistID string
	Interval Interval
	Status   string
}

// blocks reports whether the booking occupies calendar time for the artist.
// Cancelled bookings never block.
func (b Booking) blocks(artistID string) bool {
	if b.Status == StatusCancelled {
		return false
	}
	return b.ArtistID == "" || artistID == "" || b.ArtistID == artistID
}

// Store is the engine's only view of the persistence layer. Implementations
// must exclude cancelled bookings and return every booking overlapping
// [start, end) for the given artists (all artists when artistIDs is empty).
type Store interface {
	ListBookings(ctx context.Context, start, end time.Time, artistIDs []string) ([]Booking, error)
}

// Roster resolves which artists a search without explicit artist ids covers.
// locationID narrows the set when non-empty.
type Roster interface {
	ListArtistIDs(ctx context.Context, locationID string) ([]string, error)
}
