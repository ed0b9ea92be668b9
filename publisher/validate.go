package publisher

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidEmail reports whether s looks like a deliverable address.
func ValidEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

// NormalizePhone strips formatting from a phone number and keeps an optional
// leading "+". Numbers must have 7 to 15 digits.
func NormalizePhone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	var digits strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	n := digits.Len()
	if n < 7 || n > 15 {
		return "", false
	}
	if strings.HasPrefix(s, "+") {
		return "+" + digits.String(), true
	}
	return digits.String(), true
}
