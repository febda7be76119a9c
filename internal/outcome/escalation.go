package outcome

import "github.com/acme/voice-squad/internal/domain"

// Attempt thresholds for escalation side effects.
const (
	smsAttemptThreshold    = 2
	manualAttemptThreshold = 3
)

// Escalate decides which follow-up side effects fire for the given cumulative
// attempt count (as persisted before this call, never incremented here) and
// outcome category. A first-attempt voicemail sends the SMS early: voicemail
// detection means the number is reachable but unattended. The smsAlreadySent
// flag is the idempotency guard for at-least-once webhook delivery; once set,
// no further SMS directive is ever produced.
func Escalate(attemptCount int, category domain.OutcomeCategory, smsAlreadySent bool) domain.Directives {
	var d domain.Directives

	if !smsAlreadySent {
		if attemptCount == smsAttemptThreshold {
			d.SendSMS = true
		}
		if attemptCount == 1 && category == domain.OutcomeVoicemail {
			d.SendSMS = true
		}
	}

	if attemptCount >= manualAttemptThreshold {
		d.TagManualFollowUp = true
	}

	return d
}
