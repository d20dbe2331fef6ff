package services

import (
	"context"
	"time"

	"github.com/macacolandia/dashboard-api/internal/models"
)

// Repository interfaces consumed by the service layer. The concrete
// implementations live in internal/repositories; services depend on these
// so tests can substitute mocks.

type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	SetApproved(ctx context.Context, id string, approved bool) error
	SetBlocked(ctx context.Context, id string, blocked bool) error
	SetRole(ctx context.Context, id, role string) error
	Delete(ctx context.Context, id string) error
}

type LockoutRepository interface {
	RecordFailedAttempt(ctx context.Context, attempt *models.FailedAttempt) error
	CountRecentFailures(ctx context.Context, email string, since time.Time) (int, error)
	UpsertLockout(ctx context.Context, lockout *models.AccountLockout) error
	GetActiveLockout(ctx context.Context, email string) (*models.AccountLockout, error)
	ClearForEmail(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context, attemptCutoff time.Time) (int64, error)
}

type SecurityLogRepository interface {
	Append(ctx context.Context, entry *models.SecurityLogEntry) error
	Query(ctx context.Context, filter models.SecurityLogFilter) ([]*models.SecurityLogEntry, error)
}

type ActivityLogRepository interface {
	Append(ctx context.Context, entry *models.ActivityLogEntry) error
	List(ctx context.Context, limit int) ([]*models.ActivityLogEntry, error)
}

type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.PendingRegistration) (*models.PendingRegistration, error)
	GetByID(ctx context.Context, id string) (*models.PendingRegistration, error)
	GetPendingByEmail(ctx context.Context, email string) (*models.PendingRegistration, error)
	ListPending(ctx context.Context) ([]*models.PendingRegistration, error)
	Approve(ctx context.Context, id string) (*models.PendingRegistration, error)
	Reject(ctx context.Context, id string) error
}

type EconomyRepository interface {
	GetPlayer(ctx context.Context, playerID string) (*models.Player, error)
	ListPlayers(ctx context.Context, limit, offset int) ([]*models.Player, error)
	AdjustCoins(ctx context.Context, playerID string, amount int64, txType string, description *string) (*models.Player, error)
	ListTransactions(ctx context.Context, playerID string, limit int) ([]*models.Transaction, error)
	ListGameHistory(ctx context.Context, playerID string, limit int) ([]*models.GameRound, error)
	GlobalStats(ctx context.Context) (*models.GlobalStats, error)
	GameTypeStats(ctx context.Context, gameType string) ([]*models.GameStats, error)
}
