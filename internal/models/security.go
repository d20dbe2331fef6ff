package models

import "time"

// FailedAttempt is one record per failed credential check for an email,
// whether or not the email maps to an existing account.
type FailedAttempt struct {
	ID          int64
	Email       string
	IPAddress   string
	UserAgent   *string
	Reason      string
	AttemptTime time.Time
}

// AccountLockout is a temporary per-email lock. At most one row exists per
// email; an account is locked iff LockedUntil is in the future.
type AccountLockout struct {
	ID          int64
	Email       string
	LockedUntil time.Time
	LockedAt    time.Time
	Reason      string
}

// Locked reports whether the lockout is still active at the given instant.
func (l *AccountLockout) Locked(now time.Time) bool {
	return l.LockedUntil.After(now)
}

// Security log severities
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Security event types written by the authentication and registration flows.
const (
	EventLoginSuccess           = "login_success"
	EventLoginWrongPassword     = "login_failed_wrong_password"
	EventLoginInvalidUser       = "login_attempt_invalid_user"
	EventLoginLockedAccount     = "login_attempt_locked_account"
	EventLoginUnapproved        = "login_attempt_unapproved"
	EventLoginBlockedUser       = "login_attempt_blocked_user"
	EventLoginRateLimited       = "login_rate_limit_exceeded"
	EventLoginUnexpectedError   = "login_unexpected_error"
	EventRegisterSuccess        = "register_success"
	EventRegisterRateLimited    = "register_rate_limit_exceeded"
	EventRegisterInvalidCaptcha = "register_invalid_captcha"
	EventRegisterMissingCaptcha = "register_missing_captcha"
	EventRegisterSQLInjection   = "register_sql_injection_attempt"
	EventRegisterDuplicate      = "register_duplicate_email"
)

// SecurityLogEntry is an immutable audit record. Entries are append-only and
// never updated or deleted by the application.
type SecurityLogEntry struct {
	ID        int64
	EventType string
	Severity  string
	Email     *string
	IPAddress string
	UserAgent *string
	Details   string
	Timestamp time.Time
}

// SecurityLogFilter narrows a security log query. Zero values match
// everything.
type SecurityLogFilter struct {
	Severity  string
	EventType string
	Email     string
	Limit     int
}

// ActivityLogEntry records an admin or system action against an account.
// AccountID is nullable: system-initiated and pre-account events have no
// owning account.
type ActivityLogEntry struct {
	ID        int64
	AccountID *string
	Action    string
	Details   *string
	IPAddress *string
	Timestamp time.Time

	// Joined account fields, populated on read.
	AccountName  *string
	AccountEmail *string
}
