package postgres

import (
	"time"

	"github.com/google/uuid"

	"github.com/acme/voice-squad/internal/repository"
)

type bookingRow struct {
	ID            uuid.UUID `db:"id"`
	ContactID     string    `db:"contact_id"`
	AppointmentID string    `db:"appointment_id"`
	StartsAt      time.Time `db:"starts_at"`
	Timezone      string    `db:"timezone"`
	Title         string    `db:"title"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r bookingRow) toRecord() repository.BookingRecord {
	return repository.BookingRecord{
		ID:            r.ID,
		ContactID:     r.ContactID,
		AppointmentID: r.AppointmentID,
		StartsAt:      r.StartsAt,
		Timezone:      r.Timezone,
		Title:         r.Title,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
	}
}
