package domain

import "time"

// AppointmentSlot is a free instant on the external calendar, expressed in the
// calendar's reference timezone.
type AppointmentSlot struct {
	Start time.Time
}

// Appointment is the confirmed booking returned by the external calendar.
type Appointment struct {
	ID        string
	ContactID string
	Start     time.Time
	Title     string
}

// BookingStatus tracks the lifecycle of a local booking-log entry.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)
