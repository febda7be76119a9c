package domain

import "time"

// CallStatus enumerates lifecycle states of the outreach process for a contact.
type CallStatus string

const (
	CallStatusCallingNow     CallStatus = "calling_now"
	CallStatusSuccess        CallStatus = "success"
	CallStatusRetryScheduled CallStatus = "retry_scheduled"
	CallStatusManualFollowUp CallStatus = "needs_manual_followup"
)

// OutcomeCategory is the coarse classification of a call termination.
type OutcomeCategory string

const (
	OutcomeBusy      OutcomeCategory = "busy"
	OutcomeNoAnswer  OutcomeCategory = "no_answer"
	OutcomeVoicemail OutcomeCategory = "voicemail"
	OutcomeAnswered  OutcomeCategory = "answered"
	OutcomeFailed    OutcomeCategory = "failed"
)

// ManualFollowUpTag is added to the contact once escalation is reached.
const ManualFollowUpTag = "Needs Manual Follow-Up"

// Contact mirrors the fields of the external CRM record that this service
// reads and writes. The CRM owns the record; only these fields are touched.
type Contact struct {
	ID           string
	PhoneNumber  string
	Timezone     string
	CallAttempts int
	CallStatus   CallStatus
	CallResult   OutcomeCategory
	NextCall     *time.Time
	SMSSent      bool
	SMSSentAt    *time.Time
	Tags         []string
}

// HasTag reports whether the contact already carries the tag.
func (c *Contact) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// CallEndedEvent is the normalized call-termination payload handed to the
// retry flow. The HTTP boundary flattens the platform's nested envelope into
// this shape before any core logic runs.
type CallEndedEvent struct {
	CallID          string
	ContactID       string
	PhoneNumber     string
	Timezone        string
	EndedReason     string
	DurationSeconds float64
	EndedAt         time.Time
}

// Directives is the set of escalation side effects a call outcome triggers.
type Directives struct {
	SendSMS           bool
	TagManualFollowUp bool
}

// Any reports whether at least one directive fired.
func (d Directives) Any() bool {
	return d.SendSMS || d.TagManualFollowUp
}
