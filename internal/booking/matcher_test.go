package booking

import (
	"testing"
	"time"
)

func TestMatchSlotTolerance(t *testing.T) {
	base := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	slots := []time.Time{base}

	if !MatchSlot(base, slots) {
		t.Fatal("expected an exact match")
	}
	if !MatchSlot(base.Add(59*time.Second+999*time.Millisecond), slots) {
		t.Fatal("expected a match just inside the tolerance")
	}
	if MatchSlot(base.Add(time.Minute), slots) {
		t.Fatal("expected no match at exactly one minute")
	}
	if !MatchSlot(base.Add(-30*time.Second), slots) {
		t.Fatal("expected the tolerance to apply in both directions")
	}
	if MatchSlot(base, nil) {
		t.Fatal("expected no match against an empty slot list")
	}
}

func TestInBookingWindow(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	cases := []struct {
		at   time.Time
		want bool
	}{
		{time.Date(2026, 3, 10, 9, 0, 0, 0, loc), true},   // Tuesday at open
		{time.Date(2026, 3, 10, 16, 59, 0, 0, loc), true}, // just before close
		{time.Date(2026, 3, 10, 17, 0, 0, 0, loc), false}, // at close
		{time.Date(2026, 3, 10, 8, 59, 0, 0, loc), false}, // before open
		{time.Date(2026, 3, 14, 11, 0, 0, 0, loc), false}, // Saturday
		{time.Date(2026, 3, 15, 11, 0, 0, 0, loc), false}, // Sunday
	}

	for _, tc := range cases {
		if got := InBookingWindow(tc.at); got != tc.want {
			t.Errorf("InBookingWindow(%v) = %v, want %v", tc.at, got, tc.want)
		}
	}
}

func TestAlternativesPrefersLaterSlots(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	slots := []time.Time{
		day.Add(14 * time.Hour), // 09:00 NY
		day.Add(15 * time.Hour),
		day.Add(17 * time.Hour),
		day.Add(18 * time.Hour),
		day.Add(19 * time.Hour),
	}
	candidate := day.Add(16 * time.Hour)

	got := Alternatives(candidate, slots, loc)
	if len(got) != 3 {
		t.Fatalf("expected 3 alternatives, got %d", len(got))
	}
	for i, want := range []time.Time{day.Add(17 * time.Hour), day.Add(18 * time.Hour), day.Add(19 * time.Hour)} {
		if !got[i].Equal(want) {
			t.Errorf("alternative %d: expected %v, got %v", i, want, got[i])
		}
		if got[i].Location() != loc {
			t.Errorf("alternative %d not converted to caller location", i)
		}
	}
}

func TestAlternativesPadsWithEarlierSlots(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	slots := []time.Time{
		day.Add(14 * time.Hour),
		day.Add(15 * time.Hour),
		day.Add(20 * time.Hour),
	}
	candidate := day.Add(19 * time.Hour)

	got := Alternatives(candidate, slots, time.UTC)
	if len(got) != 3 {
		t.Fatalf("expected 3 alternatives, got %d", len(got))
	}
	if !got[0].Equal(day.Add(20 * time.Hour)) {
		t.Fatalf("expected the later slot first, got %v", got[0])
	}
}

func TestAlternativesCapsAtThree(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	var slots []time.Time
	for i := 0; i < 8; i++ {
		slots = append(slots, day.Add(time.Duration(9+i)*time.Hour))
	}

	got := Alternatives(day, slots, time.UTC)
	if len(got) != 3 {
		t.Fatalf("expected the alternative list capped at 3, got %d", len(got))
	}
}
