package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/acme/voice-squad/internal/repository"
)

// BookingLogRepository persists booking audit rows in PostgreSQL.
type BookingLogRepository struct {
	db *sqlx.DB
}

// NewBookingLogRepository constructs a new repository.
func NewBookingLogRepository(db *sqlx.DB) *BookingLogRepository {
	return &BookingLogRepository{db: db}
}

// Insert records a booking action.
func (r *BookingLogRepository) Insert(ctx context.Context, record repository.BookingRecord) error {
	q := `INSERT INTO booking_log (
		id, contact_id, appointment_id, starts_at, timezone, title, status, created_at
	) VALUES (
		:id, :contact_id, :appointment_id, :starts_at, :timezone, :title, :status, :created_at
	)`

	params := map[string]any{
		"id":             record.ID,
		"contact_id":     record.ContactID,
		"appointment_id": record.AppointmentID,
		"starts_at":      record.StartsAt,
		"timezone":       record.Timezone,
		"title":          record.Title,
		"status":         record.Status,
		"created_at":     record.CreatedAt,
	}

	if _, err := r.db.NamedExecContext(ctx, q, params); err != nil {
		return fmt.Errorf("booking log: insert: %w", err)
	}
	return nil
}

// UpdateStatus transitions the record for an appointment, e.g. to cancelled
// during a reschedule.
func (r *BookingLogRepository) UpdateStatus(ctx context.Context, appointmentID, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE booking_log SET status = $1 WHERE appointment_id = $2`, status, appointmentID)
	if err != nil {
		return fmt.Errorf("booking log: update status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("booking log: rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// RecordReschedule marks the old appointment cancelled and inserts the new
// booking in one transaction, so the audit trail never shows two live
// appointments for a contact.
func (r *BookingLogRepository) RecordReschedule(ctx context.Context, oldAppointmentID string, record repository.BookingRecord) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE booking_log SET status = $1 WHERE appointment_id = $2`,
			"cancelled", oldAppointmentID); err != nil {
			return fmt.Errorf("booking log: cancel old: %w", err)
		}

		q := `INSERT INTO booking_log (
			id, contact_id, appointment_id, starts_at, timezone, title, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		if _, err := tx.ExecContext(ctx, q,
			record.ID, record.ContactID, record.AppointmentID, record.StartsAt,
			record.Timezone, record.Title, record.Status, record.CreatedAt); err != nil {
			return fmt.Errorf("booking log: insert new: %w", err)
		}
		return nil
	})
}

// ListByContact returns the most recent booking actions for a contact.
func (r *BookingLogRepository) ListByContact(ctx context.Context, contactID string, limit int) ([]repository.BookingRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryxContext(ctx, `SELECT id, contact_id, appointment_id, starts_at, timezone, title, status, created_at
		FROM booking_log WHERE contact_id = $1 ORDER BY created_at DESC LIMIT $2`, contactID, limit)
	if err != nil {
		return nil, fmt.Errorf("booking log: query: %w", err)
	}
	defer rows.Close()

	var records []repository.BookingRecord
	for rows.Next() {
		var row bookingRow
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("booking log: scan: %w", err)
		}
		records = append(records, row.toRecord())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("booking log: rows err: %w", err)
	}

	return records, nil
}
