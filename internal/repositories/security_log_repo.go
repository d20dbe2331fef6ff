package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/macacolandia/dashboard-api/internal/database"
	"github.com/macacolandia/dashboard-api/internal/models"
)

// SecurityLogRepository handles the append-only security event log.
type SecurityLogRepository struct {
	db *database.DB
}

func NewSecurityLogRepository(db *database.DB) *SecurityLogRepository {
	return &SecurityLogRepository{db: db}
}

// Append inserts one security log entry. The timestamp is assigned by the
// store. Entries are never updated or deleted by the application.
func (r *SecurityLogRepository) Append(ctx context.Context, entry *models.SecurityLogEntry) error {
	query := `
		INSERT INTO security_logs (event_type, severity, email, ip_address, user_agent, details, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`

	_, err := r.db.Pool.Exec(ctx, query,
		entry.EventType,
		entry.Severity,
		entry.Email,
		entry.IPAddress,
		entry.UserAgent,
		entry.Details,
	)

	return err
}

// Query returns entries matching the filter, newest first, capped at
// filter.Limit rows.
func (r *SecurityLogRepository) Query(ctx context.Context, filter models.SecurityLogFilter) ([]*models.SecurityLogEntry, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.Severity != "" {
		args = append(args, filter.Severity)
		conditions = append(conditions, fmt.Sprintf("severity = $%d", len(args)))
	}
	if filter.EventType != "" {
		args = append(args, filter.EventType)
		conditions = append(conditions, fmt.Sprintf("event_type = $%d", len(args)))
	}
	if filter.Email != "" {
		args = append(args, strings.ToLower(filter.Email))
		conditions = append(conditions, fmt.Sprintf("email = $%d", len(args)))
	}

	query := `SELECT id, event_type, severity, email, ip_address, user_agent, details, timestamp FROM security_logs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY timestamp DESC LIMIT $%d", len(args))

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query security logs: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.SecurityLogEntry, 0)
	for rows.Next() {
		var e models.SecurityLogEntry
		if err := rows.Scan(
			&e.ID, &e.EventType, &e.Severity, &e.Email,
			&e.IPAddress, &e.UserAgent, &e.Details, &e.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan security log entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}
