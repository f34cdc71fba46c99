// Package validate holds the pure field predicates shared by the registration
// and loan workflows. Nothing here touches storage or the clock; callers pass
// "now" in so date rules stay deterministic under test.
package validate

import (
	"sort"
	"strings"
	"time"
)

func digits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// NationalID reports whether s is exactly 8 ASCII digits.
func NationalID(s string) bool { return digits(s, 8) }

// Phone reports whether s is exactly 8 ASCII digits.
func Phone(s string) bool { return digits(s, 8) }

// PostalCode reports whether s is empty or exactly 4 ASCII digits. The field
// is optional on registration forms, hence the empty case.
func PostalCode(s string) bool { return s == "" || digits(s, 4) }

// EmployeeID reports whether s is exactly 6 ASCII digits.
func EmployeeID(s string) bool { return digits(s, 6) }

// ParseDMY parses a DD/MM/YYYY date of birth. It rejects malformed input and
// any date after now, since birth dates cannot be in the future.
func ParseDMY(s string, now time.Time) (time.Time, bool) {
	parsed, err := time.Parse("02/01/2006", s)
	if err != nil {
		return time.Time{}, false
	}
	if parsed.After(now) {
		return time.Time{}, false
	}
	return parsed, true
}

// AgeAt computes whole years between dob and now using calendar arithmetic:
// the year difference is reduced by one when the birthday has not yet occurred
// this year. No day-count approximations.
func AgeAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// AgeAtLeast reports whether the person born on dob has reached the given age.
func AgeAtLeast(dob, now time.Time, years int) bool {
	return AgeAt(dob, now) >= years
}

// Required returns the keys whose trimmed value is empty, sorted so callers
// can build stable validation reports.
func Required(fields map[string]string) []string {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
