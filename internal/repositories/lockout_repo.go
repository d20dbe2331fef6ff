package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/macacolandia/dashboard-api/internal/database"
	"github.com/macacolandia/dashboard-api/internal/models"
)

// LockoutRepository handles database operations for failed attempts and
// account lockouts.
type LockoutRepository struct {
	db *database.DB
}

func NewLockoutRepository(db *database.DB) *LockoutRepository {
	return &LockoutRepository{db: db}
}

// RecordFailedAttempt appends one failed-attempt row.
func (r *LockoutRepository) RecordFailedAttempt(ctx context.Context, attempt *models.FailedAttempt) error {
	query := `
		INSERT INTO failed_attempts (email, ip_address, user_agent, reason, attempt_time)
		VALUES ($1, $2, $3, $4, NOW())
	`

	_, err := r.db.Pool.Exec(ctx, query,
		strings.ToLower(attempt.Email),
		attempt.IPAddress,
		attempt.UserAgent,
		attempt.Reason,
	)

	return err
}

// CountRecentFailures returns the number of failed attempts for an email
// within the trailing window.
func (r *LockoutRepository) CountRecentFailures(ctx context.Context, email string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM failed_attempts
		WHERE email = $1 AND attempt_time >= $2
	`

	var count int
	err := r.db.Pool.QueryRow(ctx, query, strings.ToLower(email), since).Scan(&count)
	return count, err
}

// UpsertLockout creates or replaces the single lockout row for an email.
// Re-locking an already-locked account extends the window rather than
// stacking rows.
func (r *LockoutRepository) UpsertLockout(ctx context.Context, lockout *models.AccountLockout) error {
	query := `
		INSERT INTO account_lockouts (email, locked_until, locked_at, reason)
		VALUES ($1, $2, NOW(), $3)
		ON CONFLICT (email) DO UPDATE
		SET locked_until = EXCLUDED.locked_until,
		    locked_at = EXCLUDED.locked_at,
		    reason = EXCLUDED.reason
	`

	_, err := r.db.Pool.Exec(ctx, query,
		strings.ToLower(lockout.Email),
		lockout.LockedUntil,
		lockout.Reason,
	)

	return err
}

// GetActiveLockout returns the lockout row for an email if its locked_until
// is still in the future, nil otherwise.
func (r *LockoutRepository) GetActiveLockout(ctx context.Context, email string) (*models.AccountLockout, error) {
	query := `
		SELECT id, email, locked_until, locked_at, reason FROM account_lockouts
		WHERE email = $1 AND locked_until > NOW()
	`

	var l models.AccountLockout
	err := r.db.Pool.QueryRow(ctx, query, strings.ToLower(email)).Scan(
		&l.ID, &l.Email, &l.LockedUntil, &l.LockedAt, &l.Reason,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &l, nil
}

// ClearForEmail removes all failed attempts and any lockout row for an
// email, called after a successful authentication.
func (r *LockoutRepository) ClearForEmail(ctx context.Context, email string) error {
	email = strings.ToLower(email)

	if _, err := r.db.Pool.Exec(ctx,
		`DELETE FROM failed_attempts WHERE email = $1`, email); err != nil {
		return err
	}

	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM account_lockouts WHERE email = $1`, email)
	return err
}

// DeleteExpired removes expired lockouts and failed attempts older than the
// retention cutoff. Returns the number of rows removed.
func (r *LockoutRepository) DeleteExpired(ctx context.Context, attemptCutoff time.Time) (int64, error) {
	lockouts, err := r.db.Pool.Exec(ctx,
		`DELETE FROM account_lockouts WHERE locked_until < NOW()`)
	if err != nil {
		return 0, err
	}

	attempts, err := r.db.Pool.Exec(ctx,
		`DELETE FROM failed_attempts WHERE attempt_time < $1`, attemptCutoff)
	if err != nil {
		return lockouts.RowsAffected(), err
	}

	return lockouts.RowsAffected() + attempts.RowsAffected(), nil
}
