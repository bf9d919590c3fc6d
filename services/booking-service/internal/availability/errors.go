package availability

import (
	"errors"
	"strings"
)

// ErrInvalidArgument marks a malformed request: inverted range, negative
// duration, unknown weekday. It is always raised before any store access.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrStoreUnavailable wraps appointment store read failures. Queries never
// convert a failed read into "no availability".
var ErrStoreUnavailable = errors.New("appointment store unavailable")

// ConflictError is raised by the write path when an interval overlaps
// existing bookings at commit time. Pure queries never return it.
type ConflictError struct {
	BookingIDs []string
}

func (e *ConflictError) Error() string {
	if len(e.BookingIDs) == 0 {
		return "booking conflicts with an existing appointment"
	}
	return "booking conflicts with existing appointment(s): " + strings.Join(e.BookingIDs, ", ")
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
