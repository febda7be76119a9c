package booking

import (
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "github.com/acme/voice-squad/pkg/errors"
)

func nyLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestResolveDateTimeRelativePhrases(t *testing.T) {
	loc := nyLocation(t)
	// Tuesday morning.
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, loc)

	got, err := ResolveDateTime(now, "today", "3:00 PM", "America/New_York")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 10, 15, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("today: expected %v, got %v", want, got)
	}

	got, err = ResolveDateTime(now, "tomorrow", "10:30 AM", "America/New_York")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want = time.Date(2026, 3, 11, 10, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("tomorrow: expected %v, got %v", want, got)
	}
}

func TestResolveDateTimeWeekdayName(t *testing.T) {
	loc := nyLocation(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, loc)

	got, err := ResolveDateTime(now, "Friday", "2 PM", "America/New_York")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 13, 14, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestResolveDateTimeSameWeekdayPastTimeRollsForward(t *testing.T) {
	loc := nyLocation(t)
	// Tuesday 16:00; "Tuesday at 2 PM" means next week.
	now := time.Date(2026, 3, 10, 16, 0, 0, 0, loc)

	got, err := ResolveDateTime(now, "tuesday", "2 PM", "America/New_York")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 17, 14, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestResolveDateTimeAbsoluteDates(t *testing.T) {
	loc := nyLocation(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, loc)

	cases := []string{"2026-03-20", "March 20, 2026", "Mar 20, 2026", "03/20/2026"}
	want := time.Date(2026, 3, 20, 11, 0, 0, 0, loc)

	for _, phrase := range cases {
		got, err := ResolveDateTime(now, phrase, "11:00 AM", "America/New_York")
		if err != nil {
			t.Errorf("phrase %q: unexpected error: %v", phrase, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("phrase %q: expected %v, got %v", phrase, want, got)
		}
	}
}

func TestResolveDateTimeTimeFormats(t *testing.T) {
	loc := nyLocation(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, loc)

	cases := []struct {
		phrase string
		hour   int
		minute int
	}{
		{"3:04 PM", 15, 4},
		{"3 PM", 15, 0},
		{"3PM", 15, 0},
		{"15:04", 15, 4},
	}

	for _, tc := range cases {
		got, err := ResolveDateTime(now, "tomorrow", tc.phrase, "America/New_York")
		if err != nil {
			t.Errorf("phrase %q: unexpected error: %v", tc.phrase, err)
			continue
		}
		if got.Hour() != tc.hour || got.Minute() != tc.minute {
			t.Errorf("phrase %q: expected %02d:%02d, got %02d:%02d", tc.phrase, tc.hour, tc.minute, got.Hour(), got.Minute())
		}
	}
}

func TestResolveDateTimeMissingParameters(t *testing.T) {
	loc := nyLocation(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, loc)

	cases := []struct {
		date, timePhrase, timezone string
		wantSubstr                 string
	}{
		{"", "3 PM", "America/New_York", "date is required"},
		{"today", "", "America/New_York", "time is required"},
		{"today", "3 PM", "", "timezone is required"},
	}

	for _, tc := range cases {
		_, err := ResolveDateTime(now, tc.date, tc.timePhrase, tc.timezone)
		if err == nil {
			t.Errorf("expected error for (%q, %q, %q)", tc.date, tc.timePhrase, tc.timezone)
			continue
		}
		if !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if !strings.Contains(err.Error(), tc.wantSubstr) {
			t.Errorf("expected message containing %q, got %q", tc.wantSubstr, err.Error())
		}
	}
}

func TestResolveDateTimeUnparseableInput(t *testing.T) {
	loc := nyLocation(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, loc)

	_, err := ResolveDateTime(now, "someday", "3 PM", "America/New_York")
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad date, got %v", err)
	}
	if !strings.Contains(err.Error(), "could not understand") {
		t.Fatalf("expected an understanding failure, got %q", err.Error())
	}

	_, err = ResolveDateTime(now, "today", "half past noon", "America/New_York")
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad time, got %v", err)
	}

	_, err = ResolveDateTime(now, "today", "3 PM", "Mars/Olympus")
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad timezone, got %v", err)
	}
}
