package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/macacolandia/dashboard-api/internal/database"
	"github.com/macacolandia/dashboard-api/internal/models"
	pkgauth "github.com/macacolandia/dashboard-api/pkg/auth"
)

// TestDB manages a PostgreSQL testcontainer and its connection pool.
type TestDB struct {
	Container  testcontainers.Container
	ConnString string
	Pool       *pgxpool.Pool
	DB         *database.DB
}

// SetupTestDatabase starts a PostgreSQL container and runs the embedded
// migrations against it.
func SetupTestDatabase(ctx context.Context) (*TestDB, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("dashboard"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	if err := database.MigrateDSN(connStr); err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &TestDB{
		Container:  container,
		ConnString: connStr,
		Pool:       pool,
		DB:         &database.DB{Pool: pool},
	}, nil
}

// Teardown closes the pool and terminates the container.
func (db *TestDB) Teardown(ctx context.Context) error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.Container != nil {
		return db.Container.Terminate(ctx)
	}
	return nil
}

// CleanupTables truncates all tables for test isolation.
func (db *TestDB) CleanupTables(ctx context.Context) error {
	tables := []string{
		"activity_logs",
		"security_logs",
		"account_lockouts",
		"failed_attempts",
		"game_history",
		"transactions",
		"players",
		"pending_registrations",
		"accounts",
	}

	for _, table := range tables {
		if _, err := db.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return nil
}

// SeedAccount inserts an approved account with a hashed password.
func SeedAccount(ctx context.Context, pool *pgxpool.Pool, email, password string) (*models.Account, error) {
	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `
		INSERT INTO accounts (id, email, name, password_hash, role, approved, blocked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, FALSE, NOW(), NOW())
		RETURNING id, email, name, password_hash, role, approved, blocked, created_at, updated_at
	`

	var account models.Account
	err = pool.QueryRow(ctx, query, uuid.New().String(), email, "Seeded Account", hash, models.RoleUser).Scan(
		&account.ID,
		&account.Email,
		&account.Name,
		&account.PasswordHash,
		&account.Role,
		&account.Approved,
		&account.Blocked,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}

	return &account, nil
}

// SeedPendingRegistration inserts a pending registration row directly.
func SeedPendingRegistration(ctx context.Context, pool *pgxpool.Pool, email string) (string, error) {
	id := uuid.New().String()

	query := `
		INSERT INTO pending_registrations (id, name, email, password_hash, ip_address, user_agent, requested_at, status)
		VALUES ($1, $2, $3, $4, $5, NULL, NOW(), $6)
	`

	_, err := pool.Exec(ctx, query, id, "Seeded Registrant", email, "not-a-real-hash", "203.0.113.50", models.RegistrationPending)
	if err != nil {
		return "", fmt.Errorf("failed to insert pending registration: %w", err)
	}

	return id, nil
}

// RegistrationStatus reads the status column for a registration row.
func RegistrationStatus(ctx context.Context, pool *pgxpool.Pool, id string) (string, error) {
	var status string
	err := pool.QueryRow(ctx, `SELECT status FROM pending_registrations WHERE id = $1`, id).Scan(&status)
	if err != nil {
		return "", fmt.Errorf("failed to read registration status: %w", err)
	}
	return status, nil
}

// CountAccountsByEmail returns the number of account rows for an email.
func CountAccountsByEmail(ctx context.Context, pool *pgxpool.Pool, email string) (int, error) {
	var count int
	err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE email = $1`, email).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}
