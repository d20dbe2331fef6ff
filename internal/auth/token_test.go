package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macacolandia/dashboard-api/internal/models"
)

func testAccount() *models.Account {
	return &models.Account{
		ID:    uuid.New().String(),
		Email: "admin@example.com",
		Role:  models.RoleAdmin,
	}
}

func TestSessionManager_IssueAndValidate(t *testing.T) {
	sm := NewSessionManager("test-secret-key-with-enough-length", time.Hour)
	account := testAccount()

	token, err := sm.Issue(account)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := sm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.AccountID)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestSessionManager_RejectsWrongSecret(t *testing.T) {
	sm := NewSessionManager("test-secret-key-with-enough-length", time.Hour)
	other := NewSessionManager("a-completely-different-secret-key", time.Hour)

	token, err := sm.Issue(testAccount())
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestSessionManager_RejectsExpired(t *testing.T) {
	sm := NewSessionManager("test-secret-key-with-enough-length", -time.Minute)

	token, err := sm.Issue(testAccount())
	require.NoError(t, err)

	_, err = sm.Validate(token)
	assert.Error(t, err)
}

func TestSessionManager_RejectsGarbage(t *testing.T) {
	sm := NewSessionManager("test-secret-key-with-enough-length", time.Hour)

	_, err := sm.Validate("not.a.token")
	assert.Error(t, err)
}

func TestSessionCookieName(t *testing.T) {
	assert.Equal(t, "session_token", SessionCookieName(CookieConfig{Secure: false}))
	assert.Equal(t, "__Secure-session_token", SessionCookieName(CookieConfig{Secure: true}))
}
