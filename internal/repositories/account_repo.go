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

// AccountRepository handles database operations for dashboard accounts.
type AccountRepository struct {
	db *database.DB
}

func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

const accountColumns = `id, email, name, password_hash, role, approved, blocked, created_at, updated_at`

func scanAccountRow(scanner rowScanner) (*models.Account, error) {
	var a models.Account
	err := scanner.Scan(
		&a.ID, &a.Email, &a.Name, &a.PasswordHash,
		&a.Role, &a.Approved, &a.Blocked,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &a, nil
}

func scanAccountRows(rows pgx.Rows) ([]*models.Account, error) {
	defer rows.Close()

	accounts := make([]*models.Account, 0)

	for rows.Next() {
		account, err := scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return accounts, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccountRow(r.db.Pool.QueryRow(ctx, query, id))
}

// GetByEmail looks up an account by case-normalized email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccountRow(r.db.Pool.QueryRow(ctx, query, strings.ToLower(email)))
}

func (r *AccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}

	return scanAccountRows(rows)
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	if account.Role == "" {
		account.Role = models.RoleUser
	}

	query := `
		INSERT INTO accounts (id, email, name, password_hash, role, approved, blocked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + accountColumns

	return scanAccountRow(r.db.Pool.QueryRow(ctx, query,
		account.ID, strings.ToLower(account.Email), account.Name, account.PasswordHash,
		account.Role, account.Approved, account.Blocked,
		account.CreatedAt, account.UpdatedAt,
	))
}

func (r *AccountRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	return r.exec(ctx, `UPDATE accounts SET approved = $1, updated_at = NOW() WHERE id = $2`, approved, id)
}

func (r *AccountRepository) SetBlocked(ctx context.Context, id string, blocked bool) error {
	return r.exec(ctx, `UPDATE accounts SET blocked = $1, updated_at = NOW() WHERE id = $2`, blocked, id)
}

func (r *AccountRepository) SetRole(ctx context.Context, id, role string) error {
	return r.exec(ctx, `UPDATE accounts SET role = $1, updated_at = NOW() WHERE id = $2`, role, id)
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
}

func (r *AccountRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
