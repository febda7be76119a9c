package schedule

import (
	"sort"
	"strings"
)

// DefaultTimezone is returned when a phone number matches no known calling code.
const DefaultTimezone = "America/New_York"

// countryZones maps country-calling-code prefixes to a representative IANA
// timezone. Prefixes are matched longest-first so three-digit codes win over
// their shorter siblings.
var countryZones = map[string]string{
	"1":   "America/New_York",
	"7":   "Europe/Moscow",
	"20":  "Africa/Cairo",
	"27":  "Africa/Johannesburg",
	"30":  "Europe/Athens",
	"31":  "Europe/Amsterdam",
	"32":  "Europe/Brussels",
	"33":  "Europe/Paris",
	"34":  "Europe/Madrid",
	"39":  "Europe/Rome",
	"41":  "Europe/Zurich",
	"44":  "Europe/London",
	"45":  "Europe/Copenhagen",
	"46":  "Europe/Stockholm",
	"47":  "Europe/Oslo",
	"48":  "Europe/Warsaw",
	"49":  "Europe/Berlin",
	"52":  "America/Mexico_City",
	"55":  "America/Sao_Paulo",
	"61":  "Australia/Sydney",
	"64":  "Pacific/Auckland",
	"65":  "Asia/Singapore",
	"81":  "Asia/Tokyo",
	"82":  "Asia/Seoul",
	"86":  "Asia/Shanghai",
	"91":  "Asia/Kolkata",
	"351": "Europe/Lisbon",
	"353": "Europe/Dublin",
	"358": "Europe/Helsinki",
	"420": "Europe/Prague",
	"971": "Asia/Dubai",
	"972": "Asia/Jerusalem",
}

var orderedPrefixes = func() []string {
	prefixes := make([]string, 0, len(countryZones))
	for p := range countryZones {
		prefixes = append(prefixes, p)
	}
	sort.Slice(prefixes, func(i, j int) bool {
		if len(prefixes[i]) != len(prefixes[j]) {
			return len(prefixes[i]) > len(prefixes[j])
		}
		return prefixes[i] < prefixes[j]
	})
	return prefixes
}()

// ResolveTimezone infers an IANA timezone from a phone number's country
// calling code. It is total: unknown or garbage input yields DefaultTimezone.
func ResolveTimezone(phoneNumber string) string {
	var digits strings.Builder
	for _, r := range phoneNumber {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	number := digits.String()
	if number == "" {
		return DefaultTimezone
	}

	for _, prefix := range orderedPrefixes {
		if strings.HasPrefix(number, prefix) {
			return countryZones[prefix]
		}
	}
	return DefaultTimezone
}
