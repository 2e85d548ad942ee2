// Package accounts manages the marketplace account records the signup
// workflow tracks progress for.
package accounts

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/sirupsen/logrus"

	"github.com/ybenmoussa/signup-monitor/internal/errors"
	"github.com/ybenmoussa/signup-monitor/internal/models"
)

// Store is the subset of database operations the account service needs.
type Store interface {
	GetAccountByOrderID(ctx context.Context, orderID string) (*models.Account, error)
	ListAccounts(ctx context.Context, limit, offset int, search string) ([]*models.Account, int64, error)
	SaveAccount(ctx context.Context, account *models.Account) error
	UpdateAccount(ctx context.Context, account *models.Account) error
	DeleteAccount(ctx context.Context, orderID string) error
	DeleteSuspendedAccounts(ctx context.Context) (int64, error)
	GetEmailDomain(ctx context.Context) (string, error)
	UpdateEmailDomain(ctx context.Context, domain string) error
}

// Service exposes account management operations.
type Service struct {
	store     Store
	generator *Generator
	logger    *logrus.Logger
}

// NewService creates a new account service.
func NewService(store Store, generator *Generator, logger *logrus.Logger) *Service {
	return &Service{
		store:     store,
		generator: generator,
		logger:    logger,
	}
}

// Get returns an account by order ID.
func (s *Service) Get(ctx context.Context, orderID string) (*models.Account, error) {
	account, err := s.store.GetAccountByOrderID(ctx, orderID)
	if err != nil {
		return nil, errors.NewStoreUnavailableError("failed to look up account", err)
	}
	if account == nil {
		return nil, errors.NewAccountNotFoundError(orderID)
	}
	return account, nil
}

// List returns a page of accounts with the total count for pagination.
// The search term matches across order ID, names, email, country and
// user ID.
func (s *Service) List(ctx context.Context, limit, offset int, search string) ([]*models.Account, int64, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	accounts, total, err := s.store.ListAccounts(ctx, limit, offset, search)
	if err != nil {
		return nil, 0, errors.NewStoreUnavailableError("failed to list accounts", err)
	}
	return accounts, total, nil
}

// Create inserts a new account.
func (s *Service) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if err := s.store.SaveAccount(ctx, account); err != nil {
		return nil, errors.NewStoreUnavailableError("failed to create account", err)
	}

	s.logger.WithField("order_id", account.OrderID).Info("Created account")
	return account, nil
}

// AccountUpdate carries the editable account fields; nil fields keep
// their current value. The suspended flag is deliberately absent, it
// only changes through the check-account status.
type AccountUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
	Country   *string
	UserID    *string
}

// Update merges the given fields into an existing account and persists
// the result.
func (s *Service) Update(ctx context.Context, orderID string, update AccountUpdate) (*models.Account, error) {
	account, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	applyString(&account.FirstName, update.FirstName)
	applyString(&account.LastName, update.LastName)
	applyString(&account.Email, update.Email)
	applyString(&account.Password, update.Password)
	applyString(&account.Country, update.Country)
	applyString(&account.UserID, update.UserID)

	if err := s.store.UpdateAccount(ctx, account); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewAccountNotFoundError(orderID)
		}
		return nil, errors.NewStoreUnavailableError("failed to update account", err)
	}

	s.logger.WithField("order_id", orderID).Info("Updated account")
	return account, nil
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// CreateRandom generates a synthetic account using the configured email
// domain and persists it.
func (s *Service) CreateRandom(ctx context.Context, userID string) (*models.Account, error) {
	domain, err := s.store.GetEmailDomain(ctx)
	if err != nil {
		return nil, errors.NewStoreUnavailableError("failed to read email domain", err)
	}

	account := s.generator.Account(domain, userID)
	if err := s.store.SaveAccount(ctx, account); err != nil {
		return nil, errors.NewStoreUnavailableError("failed to create generated account", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": account.OrderID,
		"email":    account.Email,
	}).Info("Created generated account")
	return account, nil
}

// Delete removes an account and its progress record.
func (s *Service) Delete(ctx context.Context, orderID string) error {
	if err := s.store.DeleteAccount(ctx, orderID); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewAccountNotFoundError(orderID)
		}
		return errors.NewStoreUnavailableError("failed to delete account", err)
	}

	s.logger.WithField("order_id", orderID).Info("Deleted account")
	return nil
}

// PurgeSuspended removes every suspended account and returns how many
// were deleted.
func (s *Service) PurgeSuspended(ctx context.Context) (int64, error) {
	count, err := s.store.DeleteSuspendedAccounts(ctx)
	if err != nil {
		return 0, errors.NewStoreUnavailableError("failed to delete suspended accounts", err)
	}

	if count > 0 {
		s.logger.WithField("count", count).Info("Purged suspended accounts")
	}
	return count, nil
}

// EmailDomain returns the domain used for generated account emails.
func (s *Service) EmailDomain(ctx context.Context) (string, error) {
	domain, err := s.store.GetEmailDomain(ctx)
	if err != nil {
		return "", errors.NewStoreUnavailableError("failed to read email domain", err)
	}
	return domain, nil
}

// SetEmailDomain updates the domain used for generated account emails.
func (s *Service) SetEmailDomain(ctx context.Context, domain string) error {
	if err := s.store.UpdateEmailDomain(ctx, domain); err != nil {
		return errors.NewStoreUnavailableError("failed to update email domain", err)
	}

	s.logger.WithField("domain", domain).Info("Updated email domain")
	return nil
}
