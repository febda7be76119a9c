package outcome

import (
	"testing"

	"github.com/acme/voice-squad/internal/domain"
)

func TestEscalateSecondAttemptSendsSMS(t *testing.T) {
	d := Escalate(2, domain.OutcomeNoAnswer, false)
	if !d.SendSMS {
		t.Fatal("expected SMS directive on the second attempt")
	}
	if d.TagManualFollowUp {
		t.Fatal("did not expect manual follow-up on the second attempt")
	}
}

func TestEscalateFirstAttemptVoicemailSendsSMSEarly(t *testing.T) {
	d := Escalate(1, domain.OutcomeVoicemail, false)
	if !d.SendSMS {
		t.Fatal("expected early SMS after a first-attempt voicemail")
	}
}

func TestEscalateFirstAttemptOtherOutcomesDoNothing(t *testing.T) {
	for _, category := range []domain.OutcomeCategory{domain.OutcomeBusy, domain.OutcomeNoAnswer, domain.OutcomeFailed} {
		d := Escalate(1, category, false)
		if d.Any() {
			t.Errorf("expected no directives for first-attempt %q, got %+v", category, d)
		}
	}
}

func TestEscalateThirdAttemptTagsManualFollowUp(t *testing.T) {
	d := Escalate(3, domain.OutcomeNoAnswer, true)
	if !d.TagManualFollowUp {
		t.Fatal("expected manual follow-up at the third attempt")
	}
	if d.SendSMS {
		t.Fatal("SMS already sent, expected no SMS directive")
	}

	d = Escalate(5, domain.OutcomeBusy, true)
	if !d.TagManualFollowUp {
		t.Fatal("expected manual follow-up past the threshold")
	}
}

func TestEscalateSMSIdempotency(t *testing.T) {
	if d := Escalate(2, domain.OutcomeNoAnswer, true); d.SendSMS {
		t.Fatal("expected no SMS when one was already sent")
	}
	if d := Escalate(1, domain.OutcomeVoicemail, true); d.SendSMS {
		t.Fatal("expected no early SMS when one was already sent")
	}
}
