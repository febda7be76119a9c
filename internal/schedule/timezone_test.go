package schedule

import "testing"

func TestResolveTimezone(t *testing.T) {
	cases := []struct {
		number string
		want   string
	}{
		{"+14155552671", "America/New_York"},
		{"14155552671", "America/New_York"},
		{"+44 20 7946 0958", "Europe/London"},
		{"+49-30-901820", "Europe/Berlin"},
		{"+353 1 234 5678", "Europe/Dublin"},
		{"+351 21 123 4567", "Europe/Lisbon"},
		{"+972 3 123 4567", "Asia/Jerusalem"},
		{"+61 2 9374 4000", "Australia/Sydney"},
		{"+91 11 2301 7777", "Asia/Kolkata"},
	}

	for _, tc := range cases {
		if got := ResolveTimezone(tc.number); got != tc.want {
			t.Errorf("ResolveTimezone(%q) = %q, want %q", tc.number, got, tc.want)
		}
	}
}

func TestResolveTimezoneLongestPrefixWins(t *testing.T) {
	// 420 must not match the bare "4" country codes around it.
	if got := ResolveTimezone("+420 123 456 789"); got != "Europe/Prague" {
		t.Fatalf("expected Europe/Prague, got %q", got)
	}
}

func TestResolveTimezoneUnknownInput(t *testing.T) {
	cases := []string{"", "abc", "---", "+999999999", "+0123"}
	for _, number := range cases {
		if got := ResolveTimezone(number); got != DefaultTimezone {
			t.Errorf("ResolveTimezone(%q) = %q, want default %q", number, got, DefaultTimezone)
		}
	}
}
