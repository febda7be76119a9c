package queue

import "time"

// DialMessage instructs the dial worker to place an outbound call at or after
// the scheduled instant.
type DialMessage struct {
	ContactID    string    `json:"contact_id"`
	PhoneNumber  string    `json:"phone_number"`
	Timezone     string    `json:"timezone"`
	AttemptCount int       `json:"attempt_count"`
	ScheduledAt  time.Time `json:"scheduled_at"`
	EnqueuedAt   time.Time `json:"enqueued_at"`
}

// CallEventMessage records the outcome of a finished call together with the
// retry decision, published for downstream analytics.
type CallEventMessage struct {
	EventID      string     `json:"event_id"`
	CallID       string     `json:"call_id"`
	ContactID    string     `json:"contact_id"`
	PhoneNumber  string     `json:"phone_number"`
	EndedReason  string     `json:"ended_reason"`
	Category     string     `json:"category"`
	Success      bool       `json:"success"`
	DurationMs   int64      `json:"duration_ms"`
	AttemptCount int        `json:"attempt_count"`
	NextCallAt   *time.Time `json:"next_call_at,omitempty"`
	SMSSent      bool       `json:"sms_sent"`
	Tagged       bool       `json:"tagged"`
	OccurredAt   time.Time  `json:"occurred_at"`
}
