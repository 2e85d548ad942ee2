package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/ybenmoussa/signup-monitor/internal/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrCommitUnconfirmed reports a transaction whose commit outcome is
// unknown: the writes may or may not have been applied.
var ErrCommitUnconfirmed = errors.New("transaction commit unconfirmed")

type PostgresStore struct {
	db *sql.DB
}

// Store defines the interface for database operations
type Store interface {
	// Account operations
	GetAccountByOrderID(ctx context.Context, orderID string) (*models.Account, error)
	ListAccounts(ctx context.Context, limit, offset int, search string) ([]*models.Account, int64, error)
	SaveAccount(ctx context.Context, account *models.Account) error
	UpdateAccount(ctx context.Context, account *models.Account) error
	DeleteAccount(ctx context.Context, orderID string) error
	SetAccountSuspended(ctx context.Context, orderID string, suspended bool) error
	DeleteSuspendedAccounts(ctx context.Context) (int64, error)

	// Signup progress operations
	GetProgress(ctx context.Context, accountID string) (*models.SignupProgress, error)
	CreateInitialProgress(ctx context.Context, accountID string, accountCreatedAt time.Time) error
	UpdateCreateAccountStep(ctx context.Context, accountID string, completed bool, date *time.Time) error
	UpdateFirstListingStep(ctx context.Context, accountID string, completed bool, date *time.Time) error
	UpdateSellerAccountStep(ctx context.Context, accountID string, completed bool, date *time.Time) error
	UpdateCheckAccountStatus(ctx context.Context, accountID string, status models.CheckStatus, date time.Time) error

	// Email domain settings
	GetEmailDomain(ctx context.Context) (string, error)
	UpdateEmailDomain(ctx context.Context, domain string) error
}

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Migrate() error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
