package outcome

import "github.com/acme/voice-squad/internal/domain"

// reasonCategories maps the platform's raw termination codes to coarse
// categories. Matching is case-sensitive and exact; anything unknown is a
// failure.
var reasonCategories = map[string]domain.OutcomeCategory{
	"customer-busy":           domain.OutcomeBusy,
	"user-busy":               domain.OutcomeBusy,
	"customer-did-not-answer": domain.OutcomeNoAnswer,
	"no-answer-from-user":     domain.OutcomeNoAnswer,
	"voicemail":               domain.OutcomeVoicemail,
	"voicemail-reached":       domain.OutcomeVoicemail,
	"assistant-ended-call":    domain.OutcomeAnswered,
	"customer-ended-call":     domain.OutcomeAnswered,
}

// minConversationSeconds separates a genuine conversation from an immediate
// hangup that still counts as answered. Strictly greater-than.
const minConversationSeconds = 30

// Classify maps a raw ended reason to its outcome category.
func Classify(endedReason string) domain.OutcomeCategory {
	if category, ok := reasonCategories[endedReason]; ok {
		return category
	}
	return domain.OutcomeFailed
}

// IsSuccessful reports whether the call counts as a completed conversation:
// an answered termination that lasted longer than the conversation threshold.
func IsSuccessful(endedReason string, durationSeconds float64) bool {
	return Classify(endedReason) == domain.OutcomeAnswered && durationSeconds > minConversationSeconds
}
