package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "Sup3rSecret", false},
		{"minimum length valid", "Abcdef12", false},
		{"too short", "Abc123", true},
		{"missing uppercase", "abcdefg1", true},
		{"missing lowercase", "ABCDEFG1", true},
		{"missing digit", "Abcdefgh", true},
		{"common password", "Password123", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
				var vErr *PasswordValidationError
				assert.True(t, errors.As(err, &vErr))
				assert.NotEmpty(t, vErr.Errors)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret")
	require.NoError(t, err)
	assert.NotEqual(t, "Sup3rSecret", hash)

	assert.NoError(t, ComparePassword(hash, "Sup3rSecret"))
	assert.Error(t, ComparePassword(hash, "WrongPassw0rd"))
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}
