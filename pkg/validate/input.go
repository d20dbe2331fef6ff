// Package validate provides input screening helpers that run before
// request payloads reach the validation layer or the database. Queries are
// always parameterized; the injection screen exists to flag probing
// attempts for the security log, not as the primary defense.
package validate

import (
	"regexp"
	"strings"
)

const (
	MinNameLen = 2
	MaxNameLen = 100

	MinEmailLen = 5
	MaxEmailLen = 254
)

var (
	nameRe       = regexp.MustCompile(`^[a-zA-ZÀ-ÿ\s'-]+$`)
	whitespaceRe = regexp.MustCompile(`\s`)
	eventAttrRe  = regexp.MustCompile(`(?i)on\w+\s*=`)

	injectionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|EXEC|EXECUTE)\b`),
		regexp.MustCompile(`(--|\*|;|'|"|\\)`),
		regexp.MustCompile(`(?i)\b(OR|AND)\b.*=.*=`),
		regexp.MustCompile(`1\s*=\s*1`),
	}
)

// SuspiciousInput reports whether a string matches known SQL injection
// probe patterns.
func SuspiciousInput(input string) bool {
	for _, pattern := range injectionPatterns {
		if pattern.MatchString(input) {
			return true
		}
	}
	return false
}

// SanitizeText trims a free-text field and strips characters usable for
// markup or script injection when the value is echoed back in a UI.
func SanitizeText(input string) string {
	s := strings.TrimSpace(input)
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	s = removeInsensitive(s, "javascript:")
	s = eventAttrRe.ReplaceAllString(s, "")
	return s
}

// SanitizeEmail lowercases an email address and removes all whitespace.
func SanitizeEmail(email string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(email)), "")
}

// ValidName checks the display-name policy: length bounds and letters,
// spaces, hyphens and apostrophes only. Accented characters are allowed.
func ValidName(name string) bool {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < MinNameLen || len(trimmed) > MaxNameLen {
		return false
	}
	return nameRe.MatchString(trimmed)
}

func removeInsensitive(s, substr string) string {
	lower := strings.ToLower(s)
	needle := strings.ToLower(substr)
	for {
		idx := strings.Index(lower, needle)
		if idx < 0 {
			return s
		}
		s = s[:idx] + s[idx+len(needle):]
		lower = lower[:idx] + lower[idx+len(needle):]
	}
}
