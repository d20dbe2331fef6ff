package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macacolandia/dashboard-api/internal/models"
)

func newLockoutService(repo LockoutRepository) *LockoutService {
	return NewLockoutService(repo, LockoutConfig{
		Threshold:        5,
		FailureWindow:    15 * time.Minute,
		LockDuration:     15 * time.Minute,
		AttemptRetention: 24 * time.Hour,
	}, testLogger())
}

func TestLockoutService_BelowThresholdNoLock(t *testing.T) {
	repo := NewMockLockoutRepository()
	svc := newLockoutService(repo)

	for i := 0; i < 4; i++ {
		attempts, lockout, err := svc.RegisterFailure(context.Background(), "a@example.com", "1.2.3.4", nil, "wrong_password")
		require.NoError(t, err)
		assert.Equal(t, i+1, attempts)
		assert.Nil(t, lockout)
	}
}

func TestLockoutService_ThresholdTriggersLock(t *testing.T) {
	repo := NewMockLockoutRepository()
	svc := newLockoutService(repo)

	var lockout *models.AccountLockout
	for i := 0; i < 5; i++ {
		var err error
		_, lockout, err = svc.RegisterFailure(context.Background(), "a@example.com", "1.2.3.4", nil, "wrong_password")
		require.NoError(t, err)
	}

	require.NotNil(t, lockout)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), lockout.LockedUntil, time.Minute)

	active, err := svc.ActiveLockout(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.NotNil(t, active)
}

func TestLockoutService_RelockExtendsWindow(t *testing.T) {
	repo := NewMockLockoutRepository()
	svc := newLockoutService(repo)

	repo.Lockouts["a@example.com"] = &models.AccountLockout{
		Email:       "a@example.com",
		LockedUntil: time.Now().Add(2 * time.Minute),
	}
	for i := 0; i < 5; i++ {
		_, _, err := svc.RegisterFailure(context.Background(), "a@example.com", "1.2.3.4", nil, "wrong_password")
		require.NoError(t, err)
	}

	// Single row per email, window replaced rather than duplicated
	require.Len(t, repo.Lockouts, 1)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), repo.Lockouts["a@example.com"].LockedUntil, time.Minute)
}

func TestLockoutService_FailuresCountedPerEmail(t *testing.T) {
	repo := NewMockLockoutRepository()
	svc := newLockoutService(repo)

	for i := 0; i < 4; i++ {
		_, _, err := svc.RegisterFailure(context.Background(), "a@example.com", "1.2.3.4", nil, "wrong_password")
		require.NoError(t, err)
	}
	attempts, lockout, err := svc.RegisterFailure(context.Background(), "b@example.com", "1.2.3.4", nil, "wrong_password")
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Nil(t, lockout)
}

func TestLockoutService_ClearFailures(t *testing.T) {
	repo := NewMockLockoutRepository()
	svc := newLockoutService(repo)

	for i := 0; i < 5; i++ {
		_, _, _ = svc.RegisterFailure(context.Background(), "a@example.com", "1.2.3.4", nil, "wrong_password")
	}
	require.NoError(t, svc.ClearFailures(context.Background(), "a@example.com"))

	active, err := svc.ActiveLockout(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Nil(t, active)

	count, err := svc.RecentFailures(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLockoutService_ExpiredLockoutNotActive(t *testing.T) {
	repo := NewMockLockoutRepository()
	svc := newLockoutService(repo)

	repo.Lockouts["a@example.com"] = &models.AccountLockout{
		Email:       "a@example.com",
		LockedUntil: time.Now().Add(-time.Second),
	}

	active, err := svc.ActiveLockout(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestLockoutService_SweepExpired(t *testing.T) {
	repo := NewMockLockoutRepository()
	svc := newLockoutService(repo)

	repo.Attempts = append(repo.Attempts, &models.FailedAttempt{
		Email:       "old@example.com",
		AttemptTime: time.Now().Add(-48 * time.Hour),
	})
	repo.Lockouts["done@example.com"] = &models.AccountLockout{
		Email:       "done@example.com",
		LockedUntil: time.Now().Add(-time.Hour),
	}

	removed, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	assert.Empty(t, repo.Attempts)
	assert.Empty(t, repo.Lockouts)
}
