package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizedEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"typical address", "alice@example.com", "a****@*******.com"},
		{"single char local", "a@example.com", "a@*******.com"},
		{"subdomain", "bob@mail.example.org", "b**@****.*******.org"},
		{"no at sign", "not-an-email", "[invalid-email]"},
		{"empty local", "@example.com", "[invalid-email]"},
		{"empty domain", "alice@", "[invalid-email]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizedEmail(tt.email))
		})
	}
}

func TestRedactedAttr(t *testing.T) {
	prod := RedactedAttr("token", "abc123", "production")
	assert.Equal(t, "[REDACTED]", prod.Value.String())

	dev := RedactedAttr("token", "abc123", "development")
	assert.Equal(t, "abc123", dev.Value.String())
}

func TestSensitiveQuery(t *testing.T) {
	assert.True(t, SensitiveQuery("password=hunter2"))
	assert.True(t, SensitiveQuery("API_KEY=xyz"))
	assert.True(t, SensitiveQuery("email=a@b.com&page=2"))
	assert.False(t, SensitiveQuery("page=2&limit=50"))
	assert.False(t, SensitiveQuery(""))
}
