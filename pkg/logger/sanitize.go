package logger

import (
	"log/slog"
	"strings"
)

// SanitizedEmail masks an email address for log output, keeping the first
// character of the local part and the TLD ("a***@***.com").
func SanitizedEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "[invalid-email]"
	}

	local := email[:at]
	domain := email[at+1:]

	if len(local) > 1 {
		local = string(local[0]) + strings.Repeat("*", len(local)-1)
	}

	domainParts := strings.Split(domain, ".")
	if len(domainParts) > 1 {
		for i := 0; i < len(domainParts)-1; i++ {
			domainParts[i] = strings.Repeat("*", len(domainParts[i]))
		}
		domain = strings.Join(domainParts, ".")
	}

	return local + "@" + domain
}

// RedactedAttr hides a sensitive value in production logs while keeping it
// visible during development.
func RedactedAttr(key, value, env string) slog.Attr {
	if env == "production" {
		return slog.String(key, "[REDACTED]")
	}
	return slog.String(key, value)
}

// SensitiveQuery reports whether a raw query string mentions any parameter
// that must not be logged verbatim.
func SensitiveQuery(rawQuery string) bool {
	sensitive := []string{
		"password", "token", "secret", "api_key", "apikey",
		"email", "auth", "captcha", "session",
	}

	query := strings.ToLower(rawQuery)
	for _, param := range sensitive {
		if strings.Contains(query, param) {
			return true
		}
	}
	return false
}
