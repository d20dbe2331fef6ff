package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/macacolandia/dashboard-api/internal/models"
	pkgauth "github.com/macacolandia/dashboard-api/pkg/auth"
	pkglogger "github.com/macacolandia/dashboard-api/pkg/logger"
)

// Failure reasons recorded on failed_attempts rows.
const (
	failureReasonInvalidUser   = "invalid_user"
	failureReasonWrongPassword = "wrong_password"
)

// AuthService runs the credential check for dashboard logins. Every
// outcome writes exactly one security log event; throttling state is
// updated only for failures that exercise the credential path (unknown
// email, wrong password), not for account-state rejections.
type AuthService struct {
	accounts    AccountRepository
	lockouts    *LockoutService
	securityLog *SecurityLogService
	logger      *slog.Logger
	threshold   int
}

func NewAuthService(accounts AccountRepository, lockouts *LockoutService, securityLog *SecurityLogService, threshold int, logger *slog.Logger) *AuthService {
	return &AuthService{
		accounts:    accounts,
		lockouts:    lockouts,
		securityLog: securityLog,
		logger:      logger,
		threshold:   threshold,
	}
}

// LoginRequest carries the credential check inputs plus the client
// identity used for audit records.
type LoginRequest struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent *string
}

// Login authenticates a dashboard account. On success the lockout state
// for the email is cleared and the account is returned for session issue.
// Failure modes map to typed errors: LockedError (lockout active or
// freshly triggered), CredentialsError (unknown email or wrong password,
// with attempt counts), ErrAccountUnapproved and ErrAccountBlocked.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*models.Account, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, &models.ValidationError{Message: "email and password are required"}
	}

	lockout, err := s.lockouts.ActiveLockout(ctx, email)
	if err != nil {
		s.logger.Error("lockout check failed", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if lockout != nil {
		s.recordEvent(ctx, models.EventLoginLockedAccount, models.SeverityMedium, email, req,
			fmt.Sprintf("login rejected, account locked until %s", lockout.LockedUntil.UTC().Format("2006-01-02T15:04:05Z")))
		return nil, &models.LockedError{LockedUntil: lockout.LockedUntil}
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, s.failCredentials(ctx, email, req, failureReasonInvalidUser,
				models.EventLoginInvalidUser, models.SeverityLow, "login attempt for unknown email")
		}
		s.logger.Error("account lookup failed", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !account.Approved {
		s.recordEvent(ctx, models.EventLoginUnapproved, models.SeverityLow, email, req,
			"login attempt on account awaiting approval")
		return nil, models.ErrAccountUnapproved
	}

	if account.Blocked {
		s.recordEvent(ctx, models.EventLoginBlockedUser, models.SeverityMedium, email, req,
			"login attempt on blocked account")
		return nil, models.ErrAccountBlocked
	}

	if err := pkgauth.ComparePassword(account.PasswordHash, req.Password); err != nil {
		return nil, s.failCredentials(ctx, email, req, failureReasonWrongPassword,
			models.EventLoginWrongPassword, models.SeverityMedium, "login failed, wrong password")
	}

	if err := s.lockouts.ClearFailures(ctx, email); err != nil {
		// Success still stands; stale attempt rows only shrink the
		// remaining-attempts hint until the sweeper runs.
		s.logger.Error("failed to clear lockout state after login",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Any("error", err),
		)
	}

	s.recordEvent(ctx, models.EventLoginSuccess, models.SeverityLow, email, req,
		fmt.Sprintf("login successful (role %s)", account.Role))
	s.logger.Info("login successful",
		slog.String("account_id", account.ID),
		slog.String("email", pkglogger.SanitizedEmail(email)),
	)

	return account, nil
}

// failCredentials updates throttling state for a failed credential check
// and returns the error the handler should surface. Crossing the
// threshold on this attempt yields a fresh LockedError.
func (s *AuthService) failCredentials(ctx context.Context, email string, req LoginRequest, reason, eventType, severity, details string) error {
	attempts, lockout, err := s.lockouts.RegisterFailure(ctx, email, req.IPAddress, req.UserAgent, reason)
	if err != nil {
		s.logger.Error("failed to register login failure", slog.Any("error", err))
		return models.ErrInternalServer
	}

	// One event per attempt. The lock itself is not a separate entry;
	// EventLoginLockedAccount is reserved for attempts against an account
	// that is already locked.
	s.recordEvent(ctx, eventType, severity, email, req,
		fmt.Sprintf("%s (attempt %d of %d)", details, attempts, s.threshold))

	if lockout != nil {
		return &models.LockedError{LockedUntil: lockout.LockedUntil, Attempts: attempts, Fresh: true}
	}

	return &models.CredentialsError{Attempts: attempts, Threshold: s.threshold}
}

func (s *AuthService) recordEvent(ctx context.Context, eventType, severity, email string, req LoginRequest, details string) {
	s.securityLog.Record(ctx, &models.SecurityLogEntry{
		EventType: eventType,
		Severity:  severity,
		Email:     &email,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
		Details:   details,
	})
}
