package booking

import "time"

// slotTolerance absorbs sub-minute rounding from the calendar API's slot
// granularity. A candidate matches a slot only when strictly closer than this.
const slotTolerance = time.Minute

// Bookable window on the calendar, local hours, end exclusive.
const (
	bookingStartHour = 9
	bookingEndHour   = 17
)

const maxAlternatives = 3

// MatchSlot reports whether the candidate instant matches one of the free
// slots within tolerance.
func MatchSlot(candidate time.Time, slots []time.Time) bool {
	for _, slot := range slots {
		delta := candidate.Sub(slot)
		if delta < 0 {
			delta = -delta
		}
		if delta < slotTolerance {
			return true
		}
	}
	return false
}

// InBookingWindow checks the candidate against the bookable window: Monday to
// Friday, 09:00-17:00 in the candidate's own location. Requests outside it
// are rejected before the calendar is consulted.
func InBookingWindow(candidate time.Time) bool {
	wd := candidate.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return candidate.Hour() >= bookingStartHour && candidate.Hour() < bookingEndHour
}

// Alternatives returns up to three free slots converted into the caller's
// location, preferring the slots nearest after the candidate.
func Alternatives(candidate time.Time, slots []time.Time, callerLoc *time.Location) []time.Time {
	var out []time.Time
	for _, slot := range slots {
		if !slot.Before(candidate) {
			out = append(out, slot.In(callerLoc))
			if len(out) == maxAlternatives {
				return out
			}
		}
	}
	// Not enough later slots; pad from the start of the day.
	for _, slot := range slots {
		if len(out) == maxAlternatives {
			break
		}
		if slot.Before(candidate) {
			out = append(out, slot.In(callerLoc))
		}
	}
	return out
}
