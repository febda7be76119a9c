package schedule

import (
	"time"

	"github.com/acme/voice-squad/internal/domain"
)

// Reason-specific delays before the next call attempt.
var retryDelays = map[domain.OutcomeCategory]time.Duration{
	domain.OutcomeBusy:      25 * time.Minute,
	domain.OutcomeNoAnswer:  120 * time.Minute,
	domain.OutcomeVoicemail: 240 * time.Minute,
}

// defaultRetryDelay applies to unrecognized outcomes, same as no-answer.
const defaultRetryDelay = 120 * time.Minute

// RetryDelay returns the backoff for the given outcome category.
func RetryDelay(category domain.OutcomeCategory) time.Duration {
	if d, ok := retryDelays[category]; ok {
		return d
	}
	return defaultRetryDelay
}

// NextRetryTime computes the next attempt instant: now plus the
// reason-specific delay in the contact's local time, clamped into calling
// hours. The hour clamp runs before the weekend walk, so a late Friday retry
// lands on Monday 10:00 rather than Saturday.
func NextRetryTime(now time.Time, category domain.OutcomeCategory, timezone string) time.Time {
	local := now.In(loadLocation(timezone))
	target := local.Add(RetryDelay(category))

	switch {
	case target.Hour() >= callWindowEndHour:
		target = time.Date(target.Year(), target.Month(), target.Day(), nextDayCallHour, 0, 0, 0, target.Location())
		target = target.AddDate(0, 0, 1)
	case target.Hour() < callWindowStartHour:
		target = time.Date(target.Year(), target.Month(), target.Day(), nextDayCallHour, 0, 0, 0, target.Location())
	}

	for isWeekend(target.Weekday()) {
		target = time.Date(target.Year(), target.Month(), target.Day(), nextDayCallHour, 0, 0, 0, target.Location())
		target = target.AddDate(0, 0, 1)
	}

	return target
}
