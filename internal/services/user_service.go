package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/macacolandia/dashboard-api/internal/models"
	pkglogger "github.com/macacolandia/dashboard-api/pkg/logger"
)

// Admin account actions accepted by Apply.
const (
	ActionApprove   = "approve"
	ActionUnapprove = "unapprove"
	ActionBlock     = "block"
	ActionUnblock   = "unblock"
	ActionSetRole   = "setRole"
	ActionDelete    = "delete"
)

// UserService exposes the admin account management operations. Every
// mutation is recorded in the activity log with the acting admin.
type UserService struct {
	accounts AccountRepository
	activity ActivityLogRepository
	logger   *slog.Logger
}

func NewUserService(accounts AccountRepository, activity ActivityLogRepository, logger *slog.Logger) *UserService {
	return &UserService{
		accounts: accounts,
		activity: activity,
		logger:   logger,
	}
}

// List returns all dashboard accounts.
func (s *UserService) List(ctx context.Context) ([]*models.Account, error) {
	return s.accounts.List(ctx)
}

// Get returns one account by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// AccountAction is an admin mutation request against a target account.
type AccountAction struct {
	TargetID  string
	Action    string
	Role      string // only for setRole
	AdminID   string
	IPAddress string
}

// Apply executes an admin action. Admins cannot block, demote or delete
// themselves; the last check against self-lockout lives here rather than
// in the handler.
func (s *UserService) Apply(ctx context.Context, action AccountAction) error {
	target, err := s.accounts.GetByID(ctx, action.TargetID)
	if err != nil {
		return err
	}

	self := action.TargetID == action.AdminID
	var details string

	switch action.Action {
	case ActionApprove:
		err = s.accounts.SetApproved(ctx, target.ID, true)
		details = "account approved"
	case ActionUnapprove:
		err = s.accounts.SetApproved(ctx, target.ID, false)
		details = "account approval revoked"
	case ActionBlock:
		if self {
			return &models.ValidationError{Message: "cannot block your own account"}
		}
		err = s.accounts.SetBlocked(ctx, target.ID, true)
		details = "account blocked"
	case ActionUnblock:
		err = s.accounts.SetBlocked(ctx, target.ID, false)
		details = "account unblocked"
	case ActionSetRole:
		if action.Role != models.RoleAdmin && action.Role != models.RoleUser {
			return &models.ValidationError{Message: "invalid role"}
		}
		if self && action.Role != models.RoleAdmin {
			return &models.ValidationError{Message: "cannot demote your own account"}
		}
		err = s.accounts.SetRole(ctx, target.ID, action.Role)
		details = fmt.Sprintf("role set to %s", action.Role)
	case ActionDelete:
		if self {
			return &models.ValidationError{Message: "cannot delete your own account"}
		}
		err = s.accounts.Delete(ctx, target.ID)
		details = "account deleted"
	default:
		return &models.ValidationError{Message: "unknown action"}
	}

	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		s.logger.Error("account action failed",
			slog.String("action", action.Action),
			slog.Any("error", err),
		)
		return models.ErrInternalServer
	}

	s.logActivity(ctx, action, target, details)
	return nil
}

// ListActivity returns recent admin activity, newest first.
func (s *UserService) ListActivity(ctx context.Context, limit int) ([]*models.ActivityLogEntry, error) {
	if limit <= 0 {
		limit = defaultLogQueryLimit
	}
	if limit > maxLogQueryLimit {
		limit = maxLogQueryLimit
	}
	return s.activity.List(ctx, limit)
}

func (s *UserService) logActivity(ctx context.Context, action AccountAction, target *models.Account, details string) {
	detail := fmt.Sprintf("%s (target: %s)", details, pkglogger.SanitizedEmail(target.Email))
	entry := &models.ActivityLogEntry{
		AccountID: &action.AdminID,
		Action:    action.Action,
		Details:   &detail,
	}
	if action.IPAddress != "" {
		entry.IPAddress = &action.IPAddress
	}
	if err := s.activity.Append(ctx, entry); err != nil {
		// Same policy as the security log: auditing failures are logged,
		// the mutation itself stands.
		s.logger.Error("failed to write activity log", slog.Any("error", err))
	}
}
