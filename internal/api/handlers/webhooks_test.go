package handlers

import (
	"encoding/json"
	"testing"
	"time"
)

func TestToCallEndedEvent(t *testing.T) {
	payload := `{
		"message": {
			"type": "end-of-call-report",
			"endedReason": "customer-busy",
			"durationSeconds": 12.5,
			"endedAt": "2026-03-10T18:25:00Z",
			"call": {
				"id": "call-abc",
				"customer": {"number": "+14155550100"},
				"metadata": {"contactId": "contact-1", "timezone": "America/New_York"}
			}
		}
	}`

	var envelope callEndedEnvelope
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	event := toCallEndedEvent(envelope)
	if event.CallID != "call-abc" {
		t.Errorf("call id: got %q", event.CallID)
	}
	if event.ContactID != "contact-1" {
		t.Errorf("contact id: got %q", event.ContactID)
	}
	if event.PhoneNumber != "+14155550100" {
		t.Errorf("phone: got %q", event.PhoneNumber)
	}
	if event.Timezone != "America/New_York" {
		t.Errorf("timezone: got %q", event.Timezone)
	}
	if event.EndedReason != "customer-busy" {
		t.Errorf("ended reason: got %q", event.EndedReason)
	}
	if event.DurationSeconds != 12.5 {
		t.Errorf("duration: got %v", event.DurationSeconds)
	}
	want := time.Date(2026, 3, 10, 18, 25, 0, 0, time.UTC)
	if !event.EndedAt.Equal(want) {
		t.Errorf("ended at: got %v, want %v", event.EndedAt, want)
	}
}

func TestToCallEndedEventBadTimestampFallsBack(t *testing.T) {
	var envelope callEndedEnvelope
	envelope.Message.EndedAt = "not-a-time"

	before := time.Now().UTC()
	event := toCallEndedEvent(envelope)
	if event.EndedAt.Before(before.Add(-time.Minute)) {
		t.Fatalf("expected a recent fallback timestamp, got %v", event.EndedAt)
	}
}

func TestSpokenTimes(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	slots := []time.Time{time.Date(2026, 3, 16, 10, 0, 0, 0, loc)}

	got := spokenTimes(slots)
	if len(got) != 1 {
		t.Fatalf("expected one entry, got %d", len(got))
	}
	if got[0] != "Monday, March 16 at 10:00 AM" {
		t.Fatalf("unexpected phrasing %q", got[0])
	}
}
