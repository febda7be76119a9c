package schedule

import "time"

// Calling window boundaries in the contact's local time.
const (
	callWindowStartHour = 9
	callWindowEndHour   = 19
	nextDayCallHour     = 10
)

// BlockReason explains why a call cannot be placed right now.
type BlockReason string

const (
	BlockWeekend  BlockReason = "weekend"
	BlockTooEarly BlockReason = "too_early"
	BlockTooLate  BlockReason = "too_late"
)

// WindowCheck is the result of evaluating the calling window.
type WindowCheck struct {
	CanCall      bool
	Reason       BlockReason
	NextCallTime time.Time
}

// CheckCallWindow determines whether now falls inside calling hours
// (Mon-Fri, 09:00-19:00 local) for the given timezone. Outside the window it
// reports the reason and the next valid instant. An unloadable timezone falls
// back to DefaultTimezone.
func CheckCallWindow(now time.Time, timezone string) WindowCheck {
	local := now.In(loadLocation(timezone))

	if isWeekend(local.Weekday()) {
		return WindowCheck{Reason: BlockWeekend, NextCallTime: nextBusinessDayAt(local, nextDayCallHour)}
	}

	switch {
	case local.Hour() < callWindowStartHour:
		next := time.Date(local.Year(), local.Month(), local.Day(), nextDayCallHour, 0, 0, 0, local.Location())
		return WindowCheck{Reason: BlockTooEarly, NextCallTime: next}
	case local.Hour() >= callWindowEndHour:
		return WindowCheck{Reason: BlockTooLate, NextCallTime: nextBusinessDayAt(local, nextDayCallHour)}
	}

	return WindowCheck{CanCall: true}
}

// nextBusinessDayAt walks forward from t one day at a time, skipping
// Saturday and Sunday, and returns the first business day at the given hour.
func nextBusinessDayAt(t time.Time, hour int) time.Time {
	next := t.AddDate(0, 0, 1)
	for isWeekend(next.Weekday()) {
		next = next.AddDate(0, 0, 1)
	}
	return time.Date(next.Year(), next.Month(), next.Day(), hour, 0, 0, 0, t.Location())
}

func isWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}

func loadLocation(timezone string) *time.Location {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc, _ = time.LoadLocation(DefaultTimezone)
	}
	return loc
}
