package db

import (
	"context"
	"database/sql"
	"fmt"
)

const defaultEmailDomain = "domain.com"

// GetEmailDomain returns the configured email domain, falling back to the
// default when nothing has been configured yet.
func (s *PostgresStore) GetEmailDomain(ctx context.Context) (string, error) {
	var domain string
	err := s.db.QueryRowContext(ctx, `SELECT domain FROM email_domain ORDER BY id LIMIT 1`).Scan(&domain)

	if err == sql.ErrNoRows {
		return defaultEmailDomain, nil
	} else if err != nil {
		return "", fmt.Errorf("failed to get email domain: %w", err)
	}

	return domain, nil
}

// UpdateEmailDomain replaces the configured email domain. The table holds
// a single logical row.
func (s *PostgresStore) UpdateEmailDomain(ctx context.Context, domain string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM email_domain`); err != nil {
		return fmt.Errorf("failed to clear email domain: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO email_domain (domain) VALUES ($1)`, domain); err != nil {
		return fmt.Errorf("failed to insert email domain: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit email domain transaction: %w", err)
	}

	return nil
}
