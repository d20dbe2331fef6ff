package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuspiciousInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain name", "Maria Silva", false},
		{"plain email", "user@example.com", false},
		{"select keyword", "SELECT * FROM accounts", true},
		{"drop statement", "x; DROP TABLE accounts", true},
		{"comment marker", "admin--", true},
		{"quote", "o'brien@example.com", true},
		{"classic tautology", "' OR 1=1", true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuspiciousInput(tt.input))
		})
	}
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "scriptalert(1)/script", SanitizeText("<script>alert(1)</script>"))
	assert.Equal(t, "alert(1)", SanitizeText("JavaScript:alert(1)"))
	assert.Equal(t, `img src=x "1"`, SanitizeText(`img src=x onerror="1"`))
	assert.Equal(t, "hello", SanitizeText("  hello  "))
}

func TestSanitizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", SanitizeEmail("  User@Example.COM "))
	assert.Equal(t, "ab@c.com", SanitizeEmail("a b@c.com"))
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("Maria Silva"))
	assert.True(t, ValidName("José-Luís d'Avila"))
	assert.False(t, ValidName("A"))
	assert.False(t, ValidName("user123"))
	assert.False(t, ValidName("<script>"))
}
