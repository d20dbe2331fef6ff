package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macacolandia/dashboard-api/internal/models"
	"github.com/macacolandia/dashboard-api/internal/repositories"
)

func setupRegistrationTest(t *testing.T) (*TestDB, *repositories.RegistrationRepository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	testDB, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testDB.Teardown(context.Background())
	})

	return testDB, repositories.NewRegistrationRepository(testDB.DB)
}

func TestRegistrationRepository_ApproveCreatesAccount(t *testing.T) {
	testDB, repo := setupRegistrationTest(t)
	ctx := context.Background()

	id, err := SeedPendingRegistration(ctx, testDB.Pool, "fresh@example.com")
	require.NoError(t, err)

	approved, err := repo.Approve(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "fresh@example.com", approved.Email)

	status, err := RegistrationStatus(ctx, testDB.Pool, id)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationApproved, status)

	count, err := CountAccountsByEmail(ctx, testDB.Pool, "fresh@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRegistrationRepository_ApproveConflictMarksRejected(t *testing.T) {
	testDB, repo := setupRegistrationTest(t)
	ctx := context.Background()

	// An account with the registrant's email already exists, as if a
	// concurrent approval won the race.
	_, err := SeedAccount(ctx, testDB.Pool, "taken@example.com", "Sup3rSecret")
	require.NoError(t, err)

	id, err := SeedPendingRegistration(ctx, testDB.Pool, "taken@example.com")
	require.NoError(t, err)

	_, err = repo.Approve(ctx, id)
	assert.ErrorIs(t, err, models.ErrConflict)

	// The rejected status must survive the conflict; a statement error
	// inside the transaction would roll it back and leave the row pending.
	status, err := RegistrationStatus(ctx, testDB.Pool, id)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationRejected, status)

	count, err := CountAccountsByEmail(ctx, testDB.Pool, "taken@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRegistrationRepository_DoubleApproveIsRejected(t *testing.T) {
	testDB, repo := setupRegistrationTest(t)
	ctx := context.Background()

	id, err := SeedPendingRegistration(ctx, testDB.Pool, "once@example.com")
	require.NoError(t, err)

	_, err = repo.Approve(ctx, id)
	require.NoError(t, err)

	_, err = repo.Approve(ctx, id)
	assert.ErrorIs(t, err, models.ErrNotFound)

	count, err := CountAccountsByEmail(ctx, testDB.Pool, "once@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRegistrationRepository_RejectedEmailCanReregister(t *testing.T) {
	testDB, repo := setupRegistrationTest(t)
	ctx := context.Background()

	id, err := SeedPendingRegistration(ctx, testDB.Pool, "retry@example.com")
	require.NoError(t, err)
	require.NoError(t, repo.Reject(ctx, id))

	// A rejected row does not hold the partial unique index, so the same
	// email can register again.
	created, err := repo.Create(ctx, &models.PendingRegistration{
		Name:         "Second Try",
		Email:        "retry@example.com",
		PasswordHash: "not-a-real-hash",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationPending, created.Status)

	pending, err := repo.GetPendingByEmail(ctx, "retry@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, pending.ID)
}
