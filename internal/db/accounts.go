package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ybenmoussa/signup-monitor/internal/models"
)

const accountColumns = `id, order_id, first_name, last_name, email, password, country, user_id, suspended, created_at, updated_at`

func scanAccount(row interface {
	Scan(dest ...interface{}) error
}) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.OrderID,
		&account.FirstName,
		&account.LastName,
		&account.Email,
		&account.Password,
		&account.Country,
		&account.UserID,
		&account.Suspended,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccountByOrderID retrieves an account by its order ID. Returns
// (nil, nil) when no account exists.
func (s *PostgresStore) GetAccountByOrderID(ctx context.Context, orderID string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE order_id = $1
	`, orderID)

	account, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// ListAccounts retrieves a page of accounts, optionally filtered by a
// search term matched against identifying fields, together with the
// total row count for pagination.
func (s *PostgresStore) ListAccounts(ctx context.Context, limit, offset int, search string) ([]*models.Account, int64, error) {
	where := ""
	args := []interface{}{}
	if search != "" {
		where = `
		WHERE order_id ILIKE $1 OR first_name ILIKE $1 OR last_name ILIKE $1
			OR email ILIKE $1 OR country ILIKE $1 OR user_id ILIKE $1`
		args = append(args, "%"+search+"%")
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT `+accountColumns+` FROM accounts
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating account rows: %w", err)
	}

	return accounts, total, nil
}

// SaveAccount inserts a new account and fills in its generated ID and
// timestamps.
func (s *PostgresStore) SaveAccount(ctx context.Context, account *models.Account) error {
	if account == nil {
		return fmt.Errorf("account cannot be nil")
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO accounts (order_id, first_name, last_name, email, password, country, user_id, suspended)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`,
		account.OrderID,
		account.FirstName,
		account.LastName,
		account.Email,
		account.Password,
		account.Country,
		account.UserID,
		account.Suspended,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	return nil
}

// UpdateAccount rewrites an account's editable fields. The suspended
// flag is not touched here; it only changes through the check-status
// transaction.
func (s *PostgresStore) UpdateAccount(ctx context.Context, account *models.Account) error {
	if account == nil {
		return fmt.Errorf("account cannot be nil")
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET first_name = $1, last_name = $2, email = $3, password = $4,
			country = $5, user_id = $6, updated_at = NOW()
		WHERE order_id = $7
	`,
		account.FirstName,
		account.LastName,
		account.Email,
		account.Password,
		account.Country,
		account.UserID,
		account.OrderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// DeleteAccount removes an account; the progress row goes with it via
// the FK cascade.
func (s *PostgresStore) DeleteAccount(ctx context.Context, orderID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE order_id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// SetAccountSuspended flips the account-level suspended flag.
func (s *PostgresStore) SetAccountSuspended(ctx context.Context, orderID string, suspended bool) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET suspended = $1, updated_at = NOW() WHERE order_id = $2
	`, suspended, orderID)
	if err != nil {
		return fmt.Errorf("failed to update account suspended flag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// DeleteSuspendedAccounts removes every suspended account and returns
// how many were deleted.
func (s *PostgresStore) DeleteSuspendedAccounts(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE suspended = TRUE`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete suspended accounts: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return count, nil
}
