package booking

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/acme/voice-squad/pkg/errors"
)

// Time phrase layouts tried in order; the first successful parse wins.
var timeLayouts = []string{"3:04 PM", "3 PM", "3PM", "15:04"}

// Absolute date layouts accepted when the phrase is not a relative expression.
var dateLayouts = []string{"2006-01-02", "January 2, 2006", "Jan 2, 2006", "01/02/2006"}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ResolveDateTime turns a spoken date phrase ("today", "tomorrow", a weekday
// name, or an absolute date) plus a time phrase into an absolute instant in
// the given timezone. Missing parameters fail immediately with
// ErrInvalidInput before any parsing is attempted; unparseable text fails
// with the same sentinel but a distinct message.
//
// When a weekday name resolves to today and the combined instant has already
// passed, the date rolls forward a week; the caller said "Monday" on a Monday
// afternoon meaning next Monday, not this morning.
func ResolveDateTime(now time.Time, datePhrase, timePhrase, timezone string) (time.Time, error) {
	if strings.TrimSpace(datePhrase) == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", apperrors.ErrInvalidInput)
	}
	if strings.TrimSpace(timePhrase) == "" {
		return time.Time{}, fmt.Errorf("%w: time is required", apperrors.ErrInvalidInput)
	}
	if strings.TrimSpace(timezone) == "" {
		return time.Time{}, fmt.Errorf("%w: timezone is required", apperrors.ErrInvalidInput)
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: unknown timezone %q", apperrors.ErrInvalidInput, timezone)
	}

	local := now.In(loc)
	date, isWeekdayPhrase, err := resolveDate(local, datePhrase, loc)
	if err != nil {
		return time.Time{}, err
	}

	hour, minute, err := resolveTime(timePhrase)
	if err != nil {
		return time.Time{}, err
	}

	resolved := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc)
	if isWeekdayPhrase && resolved.Before(now) {
		resolved = resolved.AddDate(0, 0, 7)
	}
	return resolved, nil
}

func resolveDate(local time.Time, phrase string, loc *time.Location) (time.Time, bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(phrase))
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	switch normalized {
	case "today":
		return today, false, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), false, nil
	}

	if target, ok := weekdays[normalized]; ok {
		// Next occurrence at or after today; same weekday means today.
		offset := (int(target) - int(local.Weekday()) + 7) % 7
		return today.AddDate(0, 0, offset), true, nil
	}

	trimmed := strings.TrimSpace(phrase)
	for _, layout := range dateLayouts {
		if parsed, err := time.ParseInLocation(layout, trimmed, loc); err == nil {
			return parsed, false, nil
		}
	}

	return time.Time{}, false, fmt.Errorf("%w: could not understand date %q", apperrors.ErrInvalidInput, phrase)
}

func resolveTime(phrase string) (hour, minute int, err error) {
	trimmed := strings.TrimSpace(phrase)
	for _, layout := range timeLayouts {
		if parsed, perr := time.Parse(layout, trimmed); perr == nil {
			return parsed.Hour(), parsed.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("%w: could not understand time %q", apperrors.ErrInvalidInput, phrase)
}
