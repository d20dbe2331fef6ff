package services

import (
	"context"
	"log/slog"

	"github.com/macacolandia/dashboard-api/internal/models"
	pkglogger "github.com/macacolandia/dashboard-api/pkg/logger"
)

const (
	defaultLogQueryLimit = 100
	maxLogQueryLimit     = 500
)

// SecurityLogService persists the append-only security event trail and
// raises alerts for high-severity events.
type SecurityLogService struct {
	repo   SecurityLogRepository
	alerts *pkglogger.AlertLogger
	logger *slog.Logger
}

func NewSecurityLogService(repo SecurityLogRepository, alerts *pkglogger.AlertLogger, logger *slog.Logger) *SecurityLogService {
	return &SecurityLogService{
		repo:   repo,
		alerts: alerts,
		logger: logger,
	}
}

// Record appends a security event. Write failures are logged and swallowed
// so an audit hiccup never fails the request being audited.
func (s *SecurityLogService) Record(ctx context.Context, entry *models.SecurityLogEntry) {
	if err := s.repo.Append(ctx, entry); err != nil {
		s.logger.Error("failed to write security log entry",
			slog.String("event_type", entry.EventType),
			slog.Any("error", err),
		)
	}

	if entry.Severity == models.SeverityHigh || entry.Severity == models.SeverityCritical {
		email := ""
		if entry.Email != nil {
			email = *entry.Email
		}
		s.alerts.Alert(pkglogger.AlertEvent{
			EventType: entry.EventType,
			Severity:  entry.Severity,
			Email:     email,
			IPAddress: entry.IPAddress,
			Details:   entry.Details,
		})
	}
}

// Query returns security events matching the filter, newest first. The
// limit defaults to 100 and is capped at 500.
func (s *SecurityLogService) Query(ctx context.Context, filter models.SecurityLogFilter) ([]*models.SecurityLogEntry, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultLogQueryLimit
	}
	if filter.Limit > maxLogQueryLimit {
		filter.Limit = maxLogQueryLimit
	}
	return s.repo.Query(ctx, filter)
}
