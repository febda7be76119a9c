package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/acme/voice-squad/pkg/errors"
)

var (
	// ErrNotFound indicates the entity was not located.
	ErrNotFound = apperrors.ErrNotFound
	// ErrConflict indicates a unique constraint violation.
	ErrConflict = apperrors.ErrConflict
)

// CallJournal stores an append-only history of call outcomes per contact.
type CallJournal interface {
	Append(ctx context.Context, entry CallJournalEntry) error
	ListByContact(ctx context.Context, contactID string, limit int, pagingState []byte) ([]CallJournalEntry, []byte, error)
}

// BookingLog records appointments created or cancelled on behalf of contacts.
type BookingLog interface {
	Insert(ctx context.Context, record BookingRecord) error
	UpdateStatus(ctx context.Context, appointmentID, status string) error
	RecordReschedule(ctx context.Context, oldAppointmentID string, record BookingRecord) error
	ListByContact(ctx context.Context, contactID string, limit int) ([]BookingRecord, error)
}

// CallJournalEntry is the storage representation of one finished call.
type CallJournalEntry struct {
	EventID      uuid.UUID
	ContactID    string
	CallID       string
	PhoneNumber  string
	EndedReason  string
	Category     string
	Success      bool
	DurationMs   int64
	AttemptCount int
	NextCallAt   *time.Time
	CreatedAt    time.Time
}

// BookingRecord is the storage representation of one appointment action.
type BookingRecord struct {
	ID            uuid.UUID
	ContactID     string
	AppointmentID string
	StartsAt      time.Time
	Timezone      string
	Title         string
	Status        string
	CreatedAt     time.Time
}
