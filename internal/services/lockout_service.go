package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/macacolandia/dashboard-api/internal/models"
	pkglogger "github.com/macacolandia/dashboard-api/pkg/logger"
)

// LockoutConfig tunes the failed-attempt tracker.
type LockoutConfig struct {
	Threshold        int           // failures within the window that trigger a lock
	FailureWindow    time.Duration // trailing window counted against the threshold
	LockDuration     time.Duration // how long a triggered lock holds
	AttemptRetention time.Duration // how long failed attempt rows are kept
}

// LockoutService tracks failed credential checks per email and manages the
// temporary lockouts they trigger. Lockout state is keyed by email, not
// account, so attempts against unknown addresses are throttled too.
type LockoutService struct {
	repo   LockoutRepository
	config LockoutConfig
	logger *slog.Logger

	now func() time.Time
}

func NewLockoutService(repo LockoutRepository, config LockoutConfig, logger *slog.Logger) *LockoutService {
	return &LockoutService{
		repo:   repo,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// ActiveLockout returns the current lockout for an email, or nil when none
// is in force. Expired rows are treated as absent; the sweeper removes
// them later.
func (s *LockoutService) ActiveLockout(ctx context.Context, email string) (*models.AccountLockout, error) {
	lockout, err := s.repo.GetActiveLockout(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check lockout: %w", err)
	}
	if lockout == nil || !lockout.Locked(s.now()) {
		return nil, nil
	}
	return lockout, nil
}

// RegisterFailure records a failed credential check and locks the email
// when the trailing-window failure count reaches the threshold. Returns
// the updated attempt count and the lockout created by this failure, if
// any.
func (s *LockoutService) RegisterFailure(ctx context.Context, email, ipAddress string, userAgent *string, reason string) (int, *models.AccountLockout, error) {
	attempt := &models.FailedAttempt{
		Email:     email,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Reason:    reason,
	}
	if err := s.repo.RecordFailedAttempt(ctx, attempt); err != nil {
		return 0, nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	since := s.now().Add(-s.config.FailureWindow)
	attempts, err := s.repo.CountRecentFailures(ctx, email, since)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to count attempts: %w", err)
	}

	if attempts < s.config.Threshold {
		return attempts, nil, nil
	}

	lockout := &models.AccountLockout{
		Email:       email,
		LockedUntil: s.now().Add(s.config.LockDuration),
		Reason:      fmt.Sprintf("%d failed attempts", attempts),
	}
	if err := s.repo.UpsertLockout(ctx, lockout); err != nil {
		return attempts, nil, fmt.Errorf("failed to lock account: %w", err)
	}

	s.logger.Warn("account locked after repeated failures",
		slog.String("email", pkglogger.SanitizedEmail(email)),
		slog.Int("attempts", attempts),
		slog.Time("locked_until", lockout.LockedUntil),
	)

	return attempts, lockout, nil
}

// RecentFailures returns how many failed attempts the email accumulated
// inside the trailing window.
func (s *LockoutService) RecentFailures(ctx context.Context, email string) (int, error) {
	return s.repo.CountRecentFailures(ctx, email, s.now().Add(-s.config.FailureWindow))
}

// ClearFailures drops all failed attempts and any lockout for the email.
// Called after a verified successful login.
func (s *LockoutService) ClearFailures(ctx context.Context, email string) error {
	if err := s.repo.ClearForEmail(ctx, email); err != nil {
		return fmt.Errorf("failed to clear lockout state: %w", err)
	}
	return nil
}

// SweepExpired removes expired lockouts and failed attempts older than the
// retention period. Invoked by the background cleanup loop.
func (s *LockoutService) SweepExpired(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.config.AttemptRetention)
	removed, err := s.repo.DeleteExpired(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("lockout sweep failed: %w", err)
	}
	return removed, nil
}
