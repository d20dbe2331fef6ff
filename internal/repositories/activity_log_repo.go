package repositories

import (
	"context"
	"fmt"

	"github.com/macacolandia/dashboard-api/internal/database"
	"github.com/macacolandia/dashboard-api/internal/models"
)

// ActivityLogRepository records admin actions against accounts.
type ActivityLogRepository struct {
	db *database.DB
}

func NewActivityLogRepository(db *database.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Append(ctx context.Context, entry *models.ActivityLogEntry) error {
	query := `
		INSERT INTO activity_logs (account_id, action, details, ip_address, timestamp)
		VALUES ($1, $2, $3, $4, NOW())
	`

	_, err := r.db.Pool.Exec(ctx, query,
		entry.AccountID,
		entry.Action,
		entry.Details,
		entry.IPAddress,
	)

	return err
}

// List returns recent entries joined with the acting account, newest first.
func (r *ActivityLogRepository) List(ctx context.Context, limit int) ([]*models.ActivityLogEntry, error) {
	query := `
		SELECT al.id, al.account_id, al.action, al.details, al.ip_address, al.timestamp,
		       a.name, a.email
		FROM activity_logs al
		LEFT JOIN accounts a ON al.account_id = a.id
		ORDER BY al.timestamp DESC
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity logs: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.ActivityLogEntry, 0)
	for rows.Next() {
		var e models.ActivityLogEntry
		if err := rows.Scan(
			&e.ID, &e.AccountID, &e.Action, &e.Details, &e.IPAddress, &e.Timestamp,
			&e.AccountName, &e.AccountEmail,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity log entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}
