package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macacolandia/dashboard-api/internal/models"
)

func userFixture(accounts *MockAccountRepository) (*UserService, *MockActivityLogRepository) {
	activity := &MockActivityLogRepository{}
	return NewUserService(accounts, activity, testLogger()), activity
}

func targetAccount(id string) *models.Account {
	return &models.Account{ID: id, Email: "target@example.com", Role: models.RoleUser, Approved: true}
}

func TestUserService_ApplyBlock(t *testing.T) {
	var blockedID string
	accounts := &MockAccountRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Account, error) {
			return targetAccount(id), nil
		},
		SetBlockedFunc: func(ctx context.Context, id string, blocked bool) error {
			require.True(t, blocked)
			blockedID = id
			return nil
		},
	}
	svc, activity := userFixture(accounts)

	err := svc.Apply(context.Background(), AccountAction{
		TargetID: "acc-2", Action: ActionBlock, AdminID: "acc-1", IPAddress: "1.2.3.4",
	})

	require.NoError(t, err)
	assert.Equal(t, "acc-2", blockedID)
	require.Len(t, activity.Entries, 1)
	assert.Equal(t, ActionBlock, activity.Entries[0].Action)
	assert.Equal(t, "acc-1", *activity.Entries[0].AccountID)
}

func TestUserService_CannotBlockSelf(t *testing.T) {
	accounts := &MockAccountRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Account, error) {
			return targetAccount(id), nil
		},
	}
	svc, activity := userFixture(accounts)

	err := svc.Apply(context.Background(), AccountAction{
		TargetID: "acc-1", Action: ActionBlock, AdminID: "acc-1",
	})

	var vErr *models.ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Empty(t, activity.Entries)
}

func TestUserService_CannotDeleteSelf(t *testing.T) {
	accounts := &MockAccountRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Account, error) {
			return targetAccount(id), nil
		},
	}
	svc, _ := userFixture(accounts)

	err := svc.Apply(context.Background(), AccountAction{
		TargetID: "acc-1", Action: ActionDelete, AdminID: "acc-1",
	})

	var vErr *models.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestUserService_CannotDemoteSelf(t *testing.T) {
	accounts := &MockAccountRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Account, error) {
			return targetAccount(id), nil
		},
	}
	svc, _ := userFixture(accounts)

	err := svc.Apply(context.Background(), AccountAction{
		TargetID: "acc-1", Action: ActionSetRole, Role: models.RoleUser, AdminID: "acc-1",
	})

	var vErr *models.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestUserService_SetRoleValidatesRole(t *testing.T) {
	accounts := &MockAccountRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Account, error) {
			return targetAccount(id), nil
		},
	}
	svc, _ := userFixture(accounts)

	err := svc.Apply(context.Background(), AccountAction{
		TargetID: "acc-2", Action: ActionSetRole, Role: "superuser", AdminID: "acc-1",
	})

	var vErr *models.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestUserService_UnknownAction(t *testing.T) {
	accounts := &MockAccountRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Account, error) {
			return targetAccount(id), nil
		},
	}
	svc, _ := userFixture(accounts)

	err := svc.Apply(context.Background(), AccountAction{
		TargetID: "acc-2", Action: "explode", AdminID: "acc-1",
	})

	var vErr *models.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestUserService_TargetNotFound(t *testing.T) {
	svc, _ := userFixture(&MockAccountRepository{})

	err := svc.Apply(context.Background(), AccountAction{
		TargetID: "missing", Action: ActionApprove, AdminID: "acc-1",
	})

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUserService_ActivityWriteFailureDoesNotFailAction(t *testing.T) {
	accounts := &MockAccountRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Account, error) {
			return targetAccount(id), nil
		},
	}
	activity := &MockActivityLogRepository{
		AppendFunc: func(ctx context.Context, entry *models.ActivityLogEntry) error {
			return errors.New("db down")
		},
	}
	svc := NewUserService(accounts, activity, testLogger())

	err := svc.Apply(context.Background(), AccountAction{
		TargetID: "acc-2", Action: ActionApprove, AdminID: "acc-1",
	})
	assert.NoError(t, err)
}
