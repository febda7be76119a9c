package scylla

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"github.com/acme/voice-squad/internal/repository"
)

// CallJournal persists call outcome history in Scylla, partitioned by
// contact and date bucket so a contact's recent history is one partition.
type CallJournal struct {
	session *gocql.Session
}

// NewCallJournal creates a new journal.
func NewCallJournal(session *gocql.Session) *CallJournal {
	return &CallJournal{session: session}
}

// Append inserts one finished-call record.
func (j *CallJournal) Append(ctx context.Context, entry repository.CallJournalEntry) error {
	bucket := bucketDate(entry.CreatedAt)
	if err := j.session.Query(`INSERT INTO calls_by_contact (contact_id, bucket, event_id, call_id, phone_number, ended_reason, category, success, duration_ms, attempt_count, next_call_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ContactID, bucket, entry.EventID.String(), entry.CallID, entry.PhoneNumber,
		entry.EndedReason, entry.Category, entry.Success, entry.DurationMs, entry.AttemptCount,
		entry.NextCallAt, entry.CreatedAt,
	).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("call journal: insert: %w", err)
	}
	return nil
}

// ListByContact lists journal entries for a contact with paging.
func (j *CallJournal) ListByContact(ctx context.Context, contactID string, limit int, pagingState []byte) ([]repository.CallJournalEntry, []byte, error) {
	if limit <= 0 {
		limit = 50
	}

	query := j.session.Query(`SELECT bucket, event_id, call_id, phone_number, ended_reason, category, success, duration_ms, attempt_count, next_call_at, created_at
		FROM calls_by_contact WHERE contact_id = ?`, contactID).WithContext(ctx)
	query = query.PageSize(limit)
	if len(pagingState) > 0 {
		query = query.PageState(pagingState)
	}

	iter := query.Iter()
	entries := make([]repository.CallJournalEntry, 0, limit)

	var (
		bucket       time.Time
		eventIDStr   string
		callID       string
		phone        string
		endedReason  string
		category     string
		success      bool
		durationMs   int64
		attemptCount int
		nextCallAt   time.Time
		createdAt    time.Time
	)

	for iter.Scan(&bucket, &eventIDStr, &callID, &phone, &endedReason, &category, &success, &durationMs, &attemptCount, &nextCallAt, &createdAt) {
		eventID, err := uuid.Parse(eventIDStr)
		if err != nil {
			continue
		}

		entry := repository.CallJournalEntry{
			EventID:      eventID,
			ContactID:    contactID,
			CallID:       callID,
			PhoneNumber:  phone,
			EndedReason:  endedReason,
			Category:     category,
			Success:      success,
			DurationMs:   durationMs,
			AttemptCount: attemptCount,
			CreatedAt:    createdAt,
		}
		// Null timestamps come back as the zero time.
		if !nextCallAt.IsZero() {
			t := nextCallAt
			entry.NextCallAt = &t
		}
		entries = append(entries, entry)
	}

	if err := iter.Close(); err != nil {
		return nil, nil, fmt.Errorf("call journal: iter close: %w", err)
	}

	return entries, iter.PageState(), nil
}

func bucketDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
