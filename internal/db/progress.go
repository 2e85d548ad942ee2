package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ybenmoussa/signup-monitor/internal/models"
)

// GetProgress retrieves the signup progress record for an account.
// Returns (nil, nil) when no record exists yet.
func (s *PostgresStore) GetProgress(ctx context.Context, accountID string) (*models.SignupProgress, error) {
	var progress models.SignupProgress
	var createDate, listingDate, sellerDate, checkDate sql.NullTime

	err := s.db.QueryRowContext(ctx, `
		SELECT account_id, create_account_completed, create_account_date,
			first_listing_completed, first_listing_date,
			seller_account_completed, seller_account_date,
			check_account_status, check_account_date, updated_at
		FROM progress_signup
		WHERE account_id = $1
	`, accountID).Scan(
		&progress.AccountID,
		&progress.CreateAccountCompleted,
		&createDate,
		&progress.FirstListingCompleted,
		&listingDate,
		&progress.SellerAccountCompleted,
		&sellerDate,
		&progress.CheckAccountStatus,
		&checkDate,
		&progress.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get signup progress: %w", err)
	}

	progress.CreateAccountDate = nullTimePtr(createDate)
	progress.FirstListingDate = nullTimePtr(listingDate)
	progress.SellerAccountDate = nullTimePtr(sellerDate)
	progress.CheckAccountDate = nullTimePtr(checkDate)

	return &progress, nil
}

// CreateInitialProgress inserts the lazily created progress row for an
// account. Step 1 is pre-completed with the account's creation time,
// since the account existing is what step 1 means. Idempotent: a
// concurrent or repeated create is a no-op.
func (s *PostgresStore) CreateInitialProgress(ctx context.Context, accountID string, accountCreatedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO progress_signup (account_id, create_account_completed, create_account_date, check_account_status)
		VALUES ($1, TRUE, $2, 'pending')
		ON CONFLICT (account_id) DO NOTHING
	`, accountID, accountCreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create initial progress: %w", err)
	}

	return nil
}

// UpdateCreateAccountStep sets the create-account step's completion flag
// and date together.
func (s *PostgresStore) UpdateCreateAccountStep(ctx context.Context, accountID string, completed bool, date *time.Time) error {
	return s.updateStep(ctx, accountID, "create_account_completed", "create_account_date", completed, date)
}

// UpdateFirstListingStep sets the first-listing step's completion flag
// and date together.
func (s *PostgresStore) UpdateFirstListingStep(ctx context.Context, accountID string, completed bool, date *time.Time) error {
	return s.updateStep(ctx, accountID, "first_listing_completed", "first_listing_date", completed, date)
}

// UpdateSellerAccountStep sets the seller-account step's completion flag
// and date together.
func (s *PostgresStore) UpdateSellerAccountStep(ctx context.Context, accountID string, completed bool, date *time.Time) error {
	return s.updateStep(ctx, accountID, "seller_account_completed", "seller_account_date", completed, date)
}

// updateStep writes a step's completion flag and date atomically. Column
// names come from the three fixed callers above, never from input.
func (s *PostgresStore) updateStep(ctx context.Context, accountID, completedCol, dateCol string, completed bool, date *time.Time) error {
	query := fmt.Sprintf(`
		UPDATE progress_signup
		SET %s = $1, %s = $2, updated_at = NOW()
		WHERE account_id = $3
	`, completedCol, dateCol)

	result, err := s.db.ExecContext(ctx, query, completed, nullTime(date), accountID)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", completedCol, err)
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

// UpdateCheckAccountStatus records the outcome of the final review step.
// For active/suspended outcomes the account's suspended flag is updated
// in the same transaction, so the status and the flag can never disagree.
func (s *PostgresStore) UpdateCheckAccountStatus(ctx context.Context, accountID string, status models.CheckStatus, date time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	switch status {
	case models.CheckSuspended:
		if err := setSuspendedTx(ctx, tx, accountID, true); err != nil {
			return err
		}
	case models.CheckActive:
		if err := setSuspendedTx(ctx, tx, accountID, false); err != nil {
			return err
		}
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE progress_signup
		SET check_account_status = $1, check_account_date = $2, updated_at = NOW()
		WHERE account_id = $3
	`, status, date, accountID)
	if err != nil {
		return fmt.Errorf("failed to update check account status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrCommitUnconfirmed, err)
	}

	return nil
}

func setSuspendedTx(ctx context.Context, tx *sql.Tx, accountID string, suspended bool) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE accounts SET suspended = $1, updated_at = NOW() WHERE order_id = $2
	`, suspended, accountID)
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

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
