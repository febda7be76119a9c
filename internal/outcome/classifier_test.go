package outcome

import (
	"testing"

	"github.com/acme/voice-squad/internal/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		reason string
		want   domain.OutcomeCategory
	}{
		{"customer-busy", domain.OutcomeBusy},
		{"user-busy", domain.OutcomeBusy},
		{"customer-did-not-answer", domain.OutcomeNoAnswer},
		{"no-answer-from-user", domain.OutcomeNoAnswer},
		{"voicemail", domain.OutcomeVoicemail},
		{"voicemail-reached", domain.OutcomeVoicemail},
		{"assistant-ended-call", domain.OutcomeAnswered},
		{"customer-ended-call", domain.OutcomeAnswered},
		{"pipeline-error", domain.OutcomeFailed},
		{"", domain.OutcomeFailed},
		{"Customer-Busy", domain.OutcomeFailed},
	}

	for _, tc := range cases {
		if got := Classify(tc.reason); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.reason, got, tc.want)
		}
	}
}

func TestIsSuccessful(t *testing.T) {
	cases := []struct {
		reason   string
		duration float64
		want     bool
	}{
		{"customer-ended-call", 31, true},
		{"assistant-ended-call", 120, true},
		{"customer-ended-call", 30, false},
		{"customer-ended-call", 29, false},
		{"customer-ended-call", 0, false},
		{"voicemail", 300, false},
		{"customer-busy", 45, false},
		{"unknown-reason", 45, false},
	}

	for _, tc := range cases {
		if got := IsSuccessful(tc.reason, tc.duration); got != tc.want {
			t.Errorf("IsSuccessful(%q, %v) = %v, want %v", tc.reason, tc.duration, got, tc.want)
		}
	}
}
