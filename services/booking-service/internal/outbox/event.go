package outbox

// Event is the envelope written to the outbox table inside the same
// transaction as the state change it describes. The Kafka topic equals
// EventType.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// Event types emitted by the booking service.
const (
	EventAppointmentBooked      = "booking.appointment.booked.v1"
	EventAppointmentCancelled   = "booking.appointment.cancelled.v1"
	EventAppointmentRescheduled = "booking.appointment.rescheduled.v1"
)
