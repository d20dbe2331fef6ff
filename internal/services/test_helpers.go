package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/macacolandia/dashboard-api/internal/models"
	pkglogger "github.com/macacolandia/dashboard-api/pkg/logger"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSecurityLog(repo SecurityLogRepository) *SecurityLogService {
	logger := testLogger()
	return NewSecurityLogService(repo, pkglogger.NewAlertLogger(logger), logger)
}

// MockAccountRepository implements AccountRepository for testing
type MockAccountRepository struct {
	GetByIDFunc     func(ctx context.Context, id string) (*models.Account, error)
	GetByEmailFunc  func(ctx context.Context, email string) (*models.Account, error)
	ListFunc        func(ctx context.Context) ([]*models.Account, error)
	CreateFunc      func(ctx context.Context, account *models.Account) (*models.Account, error)
	SetApprovedFunc func(ctx context.Context, id string, approved bool) error
	SetBlockedFunc  func(ctx context.Context, id string, blocked bool) error
	SetRoleFunc     func(ctx context.Context, id, role string) error
	DeleteFunc      func(ctx context.Context, id string) error
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Account{}, nil
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAccountRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	if m.SetApprovedFunc != nil {
		return m.SetApprovedFunc(ctx, id, approved)
	}
	return nil
}

func (m *MockAccountRepository) SetBlocked(ctx context.Context, id string, blocked bool) error {
	if m.SetBlockedFunc != nil {
		return m.SetBlockedFunc(ctx, id, blocked)
	}
	return nil
}

func (m *MockAccountRepository) SetRole(ctx context.Context, id, role string) error {
	if m.SetRoleFunc != nil {
		return m.SetRoleFunc(ctx, id, role)
	}
	return nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockLockoutRepository implements LockoutRepository for testing.
// The default behavior keeps in-memory state so lockout flows can be
// exercised end to end without a database.
type MockLockoutRepository struct {
	Attempts []*models.FailedAttempt
	Lockouts map[string]*models.AccountLockout

	RecordFailedAttemptFunc func(ctx context.Context, attempt *models.FailedAttempt) error
	CountRecentFailuresFunc func(ctx context.Context, email string, since time.Time) (int, error)
	UpsertLockoutFunc       func(ctx context.Context, lockout *models.AccountLockout) error
	GetActiveLockoutFunc    func(ctx context.Context, email string) (*models.AccountLockout, error)
	ClearForEmailFunc       func(ctx context.Context, email string) error
	DeleteExpiredFunc       func(ctx context.Context, attemptCutoff time.Time) (int64, error)
}

func NewMockLockoutRepository() *MockLockoutRepository {
	return &MockLockoutRepository{
		Lockouts: make(map[string]*models.AccountLockout),
	}
}

func (m *MockLockoutRepository) RecordFailedAttempt(ctx context.Context, attempt *models.FailedAttempt) error {
	if m.RecordFailedAttemptFunc != nil {
		return m.RecordFailedAttemptFunc(ctx, attempt)
	}
	attempt.AttemptTime = time.Now()
	m.Attempts = append(m.Attempts, attempt)
	return nil
}

func (m *MockLockoutRepository) CountRecentFailures(ctx context.Context, email string, since time.Time) (int, error) {
	if m.CountRecentFailuresFunc != nil {
		return m.CountRecentFailuresFunc(ctx, email, since)
	}
	count := 0
	for _, a := range m.Attempts {
		if a.Email == email && a.AttemptTime.After(since) {
			count++
		}
	}
	return count, nil
}

func (m *MockLockoutRepository) UpsertLockout(ctx context.Context, lockout *models.AccountLockout) error {
	if m.UpsertLockoutFunc != nil {
		return m.UpsertLockoutFunc(ctx, lockout)
	}
	m.Lockouts[lockout.Email] = lockout
	return nil
}

func (m *MockLockoutRepository) GetActiveLockout(ctx context.Context, email string) (*models.AccountLockout, error) {
	if m.GetActiveLockoutFunc != nil {
		return m.GetActiveLockoutFunc(ctx, email)
	}
	lockout, ok := m.Lockouts[email]
	if !ok || !lockout.Locked(time.Now()) {
		return nil, nil
	}
	return lockout, nil
}

func (m *MockLockoutRepository) ClearForEmail(ctx context.Context, email string) error {
	if m.ClearForEmailFunc != nil {
		return m.ClearForEmailFunc(ctx, email)
	}
	kept := m.Attempts[:0]
	for _, a := range m.Attempts {
		if a.Email != email {
			kept = append(kept, a)
		}
	}
	m.Attempts = kept
	delete(m.Lockouts, email)
	return nil
}

func (m *MockLockoutRepository) DeleteExpired(ctx context.Context, attemptCutoff time.Time) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx, attemptCutoff)
	}
	var removed int64
	kept := m.Attempts[:0]
	for _, a := range m.Attempts {
		if a.AttemptTime.After(attemptCutoff) {
			kept = append(kept, a)
		} else {
			removed++
		}
	}
	m.Attempts = kept
	now := time.Now()
	for email, lockout := range m.Lockouts {
		if !lockout.Locked(now) {
			delete(m.Lockouts, email)
			removed++
		}
	}
	return removed, nil
}

// MockSecurityLogRepository implements SecurityLogRepository for testing
type MockSecurityLogRepository struct {
	Entries []*models.SecurityLogEntry

	AppendFunc func(ctx context.Context, entry *models.SecurityLogEntry) error
	QueryFunc  func(ctx context.Context, filter models.SecurityLogFilter) ([]*models.SecurityLogEntry, error)
}

func (m *MockSecurityLogRepository) Append(ctx context.Context, entry *models.SecurityLogEntry) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, entry)
	}
	m.Entries = append(m.Entries, entry)
	return nil
}

func (m *MockSecurityLogRepository) Query(ctx context.Context, filter models.SecurityLogFilter) ([]*models.SecurityLogEntry, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, filter)
	}
	return m.Entries, nil
}

// EventTypes returns the recorded event types in order.
func (m *MockSecurityLogRepository) EventTypes() []string {
	types := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		types = append(types, e.EventType)
	}
	return types
}

// MockActivityLogRepository implements ActivityLogRepository for testing
type MockActivityLogRepository struct {
	Entries []*models.ActivityLogEntry

	AppendFunc func(ctx context.Context, entry *models.ActivityLogEntry) error
	ListFunc   func(ctx context.Context, limit int) ([]*models.ActivityLogEntry, error)
}

func (m *MockActivityLogRepository) Append(ctx context.Context, entry *models.ActivityLogEntry) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, entry)
	}
	m.Entries = append(m.Entries, entry)
	return nil
}

func (m *MockActivityLogRepository) List(ctx context.Context, limit int) ([]*models.ActivityLogEntry, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit)
	}
	return m.Entries, nil
}

// MockRegistrationRepository implements RegistrationRepository for testing
type MockRegistrationRepository struct {
	CreateFunc            func(ctx context.Context, reg *models.PendingRegistration) (*models.PendingRegistration, error)
	GetByIDFunc           func(ctx context.Context, id string) (*models.PendingRegistration, error)
	GetPendingByEmailFunc func(ctx context.Context, email string) (*models.PendingRegistration, error)
	ListPendingFunc       func(ctx context.Context) ([]*models.PendingRegistration, error)
	ApproveFunc           func(ctx context.Context, id string) (*models.PendingRegistration, error)
	RejectFunc            func(ctx context.Context, id string) error
}

func (m *MockRegistrationRepository) Create(ctx context.Context, reg *models.PendingRegistration) (*models.PendingRegistration, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, reg)
	}
	return reg, nil
}

func (m *MockRegistrationRepository) GetByID(ctx context.Context, id string) (*models.PendingRegistration, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockRegistrationRepository) GetPendingByEmail(ctx context.Context, email string) (*models.PendingRegistration, error) {
	if m.GetPendingByEmailFunc != nil {
		return m.GetPendingByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockRegistrationRepository) ListPending(ctx context.Context) ([]*models.PendingRegistration, error) {
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx)
	}
	return []*models.PendingRegistration{}, nil
}

func (m *MockRegistrationRepository) Approve(ctx context.Context, id string) (*models.PendingRegistration, error) {
	if m.ApproveFunc != nil {
		return m.ApproveFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockRegistrationRepository) Reject(ctx context.Context, id string) error {
	if m.RejectFunc != nil {
		return m.RejectFunc(ctx, id)
	}
	return models.ErrNotFound
}

// MockEconomyRepository implements EconomyRepository for testing
type MockEconomyRepository struct {
	GetPlayerFunc        func(ctx context.Context, playerID string) (*models.Player, error)
	ListPlayersFunc      func(ctx context.Context, limit, offset int) ([]*models.Player, error)
	AdjustCoinsFunc      func(ctx context.Context, playerID string, amount int64, txType string, description *string) (*models.Player, error)
	ListTransactionsFunc func(ctx context.Context, playerID string, limit int) ([]*models.Transaction, error)
	ListGameHistoryFunc  func(ctx context.Context, playerID string, limit int) ([]*models.GameRound, error)
	GlobalStatsFunc      func(ctx context.Context) (*models.GlobalStats, error)
	GameTypeStatsFunc    func(ctx context.Context, gameType string) ([]*models.GameStats, error)
}

func (m *MockEconomyRepository) GetPlayer(ctx context.Context, playerID string) (*models.Player, error) {
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(ctx, playerID)
	}
	return nil, models.ErrNotFound
}

func (m *MockEconomyRepository) ListPlayers(ctx context.Context, limit, offset int) ([]*models.Player, error) {
	if m.ListPlayersFunc != nil {
		return m.ListPlayersFunc(ctx, limit, offset)
	}
	return []*models.Player{}, nil
}

func (m *MockEconomyRepository) AdjustCoins(ctx context.Context, playerID string, amount int64, txType string, description *string) (*models.Player, error) {
	if m.AdjustCoinsFunc != nil {
		return m.AdjustCoinsFunc(ctx, playerID, amount, txType, description)
	}
	return nil, models.ErrNotFound
}

func (m *MockEconomyRepository) ListTransactions(ctx context.Context, playerID string, limit int) ([]*models.Transaction, error) {
	if m.ListTransactionsFunc != nil {
		return m.ListTransactionsFunc(ctx, playerID, limit)
	}
	return []*models.Transaction{}, nil
}

func (m *MockEconomyRepository) ListGameHistory(ctx context.Context, playerID string, limit int) ([]*models.GameRound, error) {
	if m.ListGameHistoryFunc != nil {
		return m.ListGameHistoryFunc(ctx, playerID, limit)
	}
	return []*models.GameRound{}, nil
}

func (m *MockEconomyRepository) GlobalStats(ctx context.Context) (*models.GlobalStats, error) {
	if m.GlobalStatsFunc != nil {
		return m.GlobalStatsFunc(ctx)
	}
	return &models.GlobalStats{}, nil
}

func (m *MockEconomyRepository) GameTypeStats(ctx context.Context, gameType string) ([]*models.GameStats, error) {
	if m.GameTypeStatsFunc != nil {
		return m.GameTypeStatsFunc(ctx, gameType)
	}
	return []*models.GameStats{}, nil
}

// MockNotifier implements AdminNotifier for testing
type MockNotifier struct {
	NewRegistrations []string
	Approvals        []string
	Err              error
}

func (m *MockNotifier) NotifyNewRegistration(ctx context.Context, name, email string) error {
	if m.Err != nil {
		return m.Err
	}
	m.NewRegistrations = append(m.NewRegistrations, email)
	return nil
}

func (m *MockNotifier) NotifyAccountApproved(ctx context.Context, name, email string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Approvals = append(m.Approvals, email)
	return nil
}
