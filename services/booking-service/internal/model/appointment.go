package model

import "time"

// Appointment is the persistence-facing record. The availability engine works
// on a narrower projection of it.
type Appointment struct {
	ID            string
	ArtistID      string
	LocationID    string
	ClientName    string
	ClientEmail   string
	ClientPhone   string
	ServiceNotes  string
	StartTime     time.Time
	EndTime       time.Time
	Status        string
	CancelledAt   *time.Time
	CancelReason  string
	RescheduledTo string
	CreatedAt     time.Time
}
