package ratelimit

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRules() map[Action]Rule {
	return map[Action]Rule{
		ActionLogin:    {MaxAttempts: 5, Window: 5 * time.Minute},
		ActionRegister: {MaxAttempts: 10, Window: 1 * time.Hour},
		ActionAPI:      {MaxAttempts: 100, Window: 1 * time.Minute},
	}
}

func testLimiter(store CounterStore) *Limiter {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	return NewLimiter(store, testRules(), logger)
}

func TestLimiter_FreshKeyAllowed(t *testing.T) {
	limiter := testLimiter(NewMemoryStore())
	ctx := context.Background()

	result, err := limiter.Check(ctx, "192.168.1.1", ActionLogin)

	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 4, result.Remaining, "fresh key remaining = maxAttempts - 1")
	assert.False(t, result.ResetAt.IsZero())
}

func TestLimiter_DeniesBeyondThreshold(t *testing.T) {
	limiter := testLimiter(NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		result, err := limiter.Check(ctx, "192.168.1.1", ActionLogin)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "attempt %d should be allowed", i+1)
	}

	result, err := limiter.Check(ctx, "192.168.1.1", ActionLogin)
	require.NoError(t, err)
	assert.False(t, result.Allowed, "6th attempt within window should be denied")
	assert.NotEmpty(t, result.Message)
	assert.Contains(t, result.Message, "minute")
}

func TestLimiter_ActionsCountedSeparately(t *testing.T) {
	limiter := testLimiter(NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := limiter.Check(ctx, "192.168.1.1", ActionLogin)
		require.NoError(t, err)
	}

	result, err := limiter.Check(ctx, "192.168.1.1", ActionRegister)
	require.NoError(t, err)
	assert.True(t, result.Allowed, "register counter is independent of login")
	assert.Equal(t, 9, result.Remaining)
}

func TestLimiter_ClientsCountedSeparately(t *testing.T) {
	limiter := testLimiter(NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		_, err := limiter.Check(ctx, "10.0.0.1", ActionLogin)
		require.NoError(t, err)
	}

	result, err := limiter.Check(ctx, "10.0.0.2", ActionLogin)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestLimiter_ClearResetsCounter(t *testing.T) {
	limiter := testLimiter(NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := limiter.Check(ctx, "192.168.1.1", ActionLogin)
		require.NoError(t, err)
	}

	require.NoError(t, limiter.Clear(ctx, "192.168.1.1", ActionLogin))

	result, err := limiter.Check(ctx, "192.168.1.1", ActionLogin)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 4, result.Remaining)
}

func TestLimiter_WindowElapsedStartsFresh(t *testing.T) {
	store := NewMemoryStore()
	current := time.Now()
	store.now = func() time.Time { return current }

	limiter := testLimiter(store)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		_, err := limiter.Check(ctx, "192.168.1.1", ActionLogin)
		require.NoError(t, err)
	}

	// Move past the 5-minute window.
	current = current.Add(6 * time.Minute)

	result, err := limiter.Check(ctx, "192.168.1.1", ActionLogin)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 4, result.Remaining, "elapsed window resets the counter to 1")
}

func TestLimiter_EmptyAddressSharesUnknownBucket(t *testing.T) {
	limiter := testLimiter(NewMemoryStore())
	ctx := context.Background()

	first, err := limiter.Check(ctx, "", ActionLogin)
	require.NoError(t, err)
	second, err := limiter.Check(ctx, "", ActionLogin)
	require.NoError(t, err)

	assert.Equal(t, first.Remaining-1, second.Remaining, "empty addresses share one bucket")
}

func TestLimiter_UnknownActionAllowed(t *testing.T) {
	limiter := testLimiter(NewMemoryStore())

	result, err := limiter.Check(context.Background(), "192.168.1.1", Action("unconfigured"))

	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestMemoryStore_SweepRemovesExpired(t *testing.T) {
	store := NewMemoryStore()
	current := time.Now()
	store.now = func() time.Time { return current }

	ctx := context.Background()
	_, _, err := store.Incr(ctx, "login:1.1.1.1", time.Minute)
	require.NoError(t, err)
	_, _, err = store.Incr(ctx, "login:2.2.2.2", time.Hour)
	require.NoError(t, err)

	current = current.Add(5 * time.Minute)

	removed, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}
