package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/macacolandia/dashboard-api/internal/database"
	"github.com/macacolandia/dashboard-api/internal/models"
)

// RegistrationRepository handles database operations for pending
// registrations, including the transactional approve path.
type RegistrationRepository struct {
	db *database.DB
}

func NewRegistrationRepository(db *database.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationColumns = `id, name, email, password_hash, ip_address, user_agent, requested_at, status`

func scanRegistrationRow(scanner rowScanner) (*models.PendingRegistration, error) {
	var p models.PendingRegistration
	err := scanner.Scan(
		&p.ID, &p.Name, &p.Email, &p.PasswordHash,
		&p.IPAddress, &p.UserAgent, &p.RequestedAt, &p.Status,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &p, nil
}

func (r *RegistrationRepository) Create(ctx context.Context, reg *models.PendingRegistration) (*models.PendingRegistration, error) {
	if reg.ID == "" {
		reg.ID = uuid.New().String()
	}
	reg.RequestedAt = time.Now()
	reg.Status = models.RegistrationPending

	query := `
		INSERT INTO pending_registrations (id, name, email, password_hash, ip_address, user_agent, requested_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + registrationColumns

	return scanRegistrationRow(r.db.Pool.QueryRow(ctx, query,
		reg.ID, reg.Name, strings.ToLower(reg.Email), reg.PasswordHash,
		reg.IPAddress, reg.UserAgent, reg.RequestedAt, reg.Status,
	))
}

func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*models.PendingRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM pending_registrations WHERE id = $1`
	return scanRegistrationRow(r.db.Pool.QueryRow(ctx, query, id))
}

// GetPendingByEmail matches status = 'pending' only; rejected rows do not
// block re-registration with the same email.
func (r *RegistrationRepository) GetPendingByEmail(ctx context.Context, email string) (*models.PendingRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM pending_registrations WHERE email = $1 AND status = $2`
	return scanRegistrationRow(r.db.Pool.QueryRow(ctx, query, strings.ToLower(email), models.RegistrationPending))
}

func (r *RegistrationRepository) ListPending(ctx context.Context) ([]*models.PendingRegistration, error) {
	query := `
		SELECT ` + registrationColumns + ` FROM pending_registrations
		WHERE status = $1 ORDER BY requested_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, models.RegistrationPending)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending registrations: %w", err)
	}
	defer rows.Close()

	regs := make([]*models.PendingRegistration, 0)
	for rows.Next() {
		reg, err := scanRegistrationRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		regs = append(regs, reg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return regs, nil
}

// Approve creates the account and marks the registration approved in one
// transaction. A registration that is no longer pending is not approvable.
// If the account insert loses a unique-constraint race (a concurrent account
// with the same email), the registration is marked rejected instead of
// being left dangling, and ErrConflict is returned.
func (r *RegistrationRepository) Approve(ctx context.Context, id string) (*models.PendingRegistration, error) {
	var approved *models.PendingRegistration
	var conflicted bool

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`SELECT `+registrationColumns+` FROM pending_registrations WHERE id = $1 FOR UPDATE`, id)

		pending, err := scanRegistrationRow(row)
		if err != nil {
			return err
		}

		if pending.Status != models.RegistrationPending {
			return models.ErrNotFound
		}

		// ON CONFLICT DO NOTHING keeps the transaction healthy on the
		// duplicate-email race; a plain INSERT error would abort the
		// transaction and take the rejected-status update down with it.
		now := time.Now()
		result, err := tx.Exec(ctx, `
			INSERT INTO accounts (id, email, name, password_hash, role, approved, blocked, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, TRUE, FALSE, $6, $6)
			ON CONFLICT (email) DO NOTHING`,
			uuid.New().String(), pending.Email, pending.Name, pending.PasswordHash, models.RoleUser, now,
		)
		if err != nil {
			return err
		}

		status := models.RegistrationApproved
		if result.RowsAffected() == 0 {
			// Email was taken concurrently; mark rejected so the
			// request is not retried forever. The rejected status must
			// commit, so the conflict is reported after the transaction.
			status = models.RegistrationRejected
			conflicted = true
		}

		if _, err := tx.Exec(ctx,
			`UPDATE pending_registrations SET status = $1 WHERE id = $2`,
			status, id); err != nil {
			return err
		}

		approved = pending
		return nil
	})

	if err != nil {
		return nil, err
	}
	if conflicted {
		return nil, models.ErrConflict
	}

	return approved, nil
}

// Reject marks a pending registration rejected. Already-terminal rows are
// not touched.
func (r *RegistrationRepository) Reject(ctx context.Context, id string) error {
	result, err := r.db.Pool.Exec(ctx, `
		UPDATE pending_registrations SET status = $1
		WHERE id = $2 AND status = $3`,
		models.RegistrationRejected, id, models.RegistrationPending,
	)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
