package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/inkflow/inkflow/libs/db"
	"github.com/inkflow/inkflow/services/booking-service/internal/availability"
	"github.com/inkflow/inkflow/services/booking-service/internal/model"
)

// AppointmentRepository is the pgx-backed appointment store. It implements
// availability.Store and availability.Roster for the engine's read side and
// owns the transactional write path.
//
// The appointments table carries a gist exclusion constraint over
// (artist_id, tstzrange(start_time, end_time)) filtered to status = 'booked',
// so a double booking that slips past the advisory in-tx check still fails
// the INSERT with SQLSTATE 23P01.
type AppointmentRepository struct {
	pool *db.Pool
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

func (r *AppointmentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

const appointmentColumns = `id, artist_id, location_id, client_name, client_email, client_phone,
	COALESCE(service_notes, ''), start_time, end_time, status, cancelled_at,
	COALESCE(cancellation_reason, ''), COALESCE(rescheduled_to::text, ''), created_at`

// ListBookings satisfies availability.Store. Cancelled rows are excluded here
// so the engine never sees them; bookings with an empty artist_id occupy the
// shared studio calendar and are always returned.
func (r *AppointmentRepository) ListBookings(ctx context.Context, start, end time.Time, artistIDs []string) ([]availability.Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, artist_id, start_time, end_time, status
		FROM appointments
		WHERE status = 'booked'
			AND start_time < $2
			AND end_time > $1
			AND (cardinality($3::text[]) = 0 OR artist_id = '' OR artist_id = ANY($3))
		ORDER BY start_time ASC
	`, start, end, artistIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []availability.Booking
	for rows.Next() {
		var b availability.Booking
		if err := rows.Scan(&b.ID, &b.ArtistID, &b.Interval.Start, &b.Interval.End, &b.Status); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// ListArtistIDs satisfies availability.Roster.
func (r *AppointmentRepository) ListArtistIDs(ctx context.Context, locationID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text
		FROM artists
		WHERE active AND ($1 = '' OR location_id = $1)
		ORDER BY id
	`, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LockOverlapping loads and row-locks every booked appointment that overlaps
// [start, end) for the artist (plus shared-calendar rows), excluding the
// appointment being rescheduled when excludeID is set. Holding the locks until
// commit is what makes the caller's conflict re-check authoritative.
func (r *AppointmentRepository) LockOverlapping(ctx context.Context, tx pgx.Tx, artistID string, start, end time.Time, excludeID string) ([]availability.Booking, error) {
	rows, err := tx.Query(ctx, `
		SELECT id::text, artist_id, start_time, end_time, status
		FROM appointments
		WHERE status = 'booked'
			AND start_time < $3
			AND end_time > $2
			AND (artist_id = $1 OR artist_id = '')
			AND ($4 = '' OR id::text <> $4)
		ORDER BY start_time ASC
		FOR UPDATE
	`, artistID, start, end, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []availability.Booking
	for rows.Next() {
		var b availability.Booking
		if err := rows.Scan(&b.ID, &b.ArtistID, &b.Interval.Start, &b.Interval.End, &b.Status); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *AppointmentRepository) Create(ctx context.Context, tx pgx.Tx, appt *model.Appointment) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
		INSERT INTO appointments
			(artist_id, location_id, client_name, client_email, client_phone, service_notes, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, appt.ArtistID, appt.LocationID, appt.ClientName, appt.ClientEmail, appt.ClientPhone, appt.ServiceNotes,
		appt.StartTime, appt.EndTime, appt.Status).Scan(&id)
	if err != nil {
		return "", mapConflict(err)
	}
	return id, nil
}

func (r *AppointmentRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, appointmentID string) (model.Appointment, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
		FOR UPDATE
	`, appointmentID)
	return scanAppointment(row)
}

func (r *AppointmentRepository) Cancel(ctx context.Context, tx pgx.Tx, appointmentID, reason string) (time.Time, error) {
	var cancelledAt time.Time
	err := tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'cancelled',
			cancelled_at = now(),
			cancellation_reason = $2
		WHERE id = $1
		RETURNING cancelled_at
	`, appointmentID, reason).Scan(&cancelledAt)
	return cancelledAt, err
}

// Reschedule moves a booked appointment to the new interval in place. The
// exclusion constraint re-validates the new interval on UPDATE exactly as it
// does on INSERT.
func (r *AppointmentRepository) Reschedule(ctx context.Context, tx pgx.Tx, appointmentID string, start, end time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE appointments
		SET start_time = $2,
			end_time = $3
		WHERE id = $1 AND status = 'booked'
	`, appointmentID, start, end)
	if err != nil {
		return mapConflict(err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// List returns appointments for an artist (or all artists when artistID is
// empty) intersecting [start, end), newest first.
func (r *AppointmentRepository) List(ctx context.Context, artistID string, start, end time.Time, limit int) ([]model.Appointment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE ($1 = '' OR artist_id = $1)
			AND start_time < $3
			AND end_time > $2
		ORDER BY start_time DESC
		LIMIT $4
	`, artistID, start, end, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	return appts, rows.Err()
}

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var appt model.Appointment
	var cancelledAt *time.Time
	err := row.Scan(
		&appt.ID,
		&appt.ArtistID,
		&appt.LocationID,
		&appt.ClientName,
		&appt.ClientEmail,
		&appt.ClientPhone,
		&appt.ServiceNotes,
		&appt.StartTime,
		&appt.EndTime,
		&appt.Status,
		&cancelledAt,
		&appt.CancelReason,
		&appt.RescheduledTo,
		&appt.CreatedAt,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	appt.CancelledAt = cancelledAt
	return appt, nil
}

// mapConflict converts the exclusion constraint's rejection of an overlapping
// interval (SQLSTATE 23P01) into the engine's typed conflict error.
func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23P01" {
		return &availability.ConflictError{}
	}
	return err
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
