// Package progress implements the signup workflow engine: the four-step
// state machine over progress records and the live countdown presenter
// that feeds the dashboard.
package progress

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/ybenmoussa/signup-monitor/internal/db"
	"github.com/ybenmoussa/signup-monitor/internal/errors"
	"github.com/ybenmoussa/signup-monitor/internal/models"
	"github.com/ybenmoussa/signup-monitor/internal/timegate"
)

// Step identifies one of the four gated signup steps.
type Step string

const (
	StepCreateAccount Step = "create_account"
	StepFirstListing  Step = "first_listing"
	StepSellerAccount Step = "seller_account"
	StepCheckAccount  Step = "check_account"
)

// Wait returns the minimum elapsed time required before the step should
// be completed.
func (s Step) Wait() time.Duration {
	switch s {
	case StepCreateAccount:
		return timegate.WaitCreateAccount
	case StepFirstListing:
		return timegate.WaitFirstListing
	case StepSellerAccount:
		return timegate.WaitSellerAccount
	case StepCheckAccount:
		return timegate.WaitCheckAccount
	}
	return 0
}

// Store is the subset of database operations the workflow engine needs.
type Store interface {
	GetAccountByOrderID(ctx context.Context, orderID string) (*models.Account, error)
	GetProgress(ctx context.Context, accountID string) (*models.SignupProgress, error)
	CreateInitialProgress(ctx context.Context, accountID string, accountCreatedAt time.Time) error
	UpdateCreateAccountStep(ctx context.Context, accountID string, completed bool, date *time.Time) error
	UpdateFirstListingStep(ctx context.Context, accountID string, completed bool, date *time.Time) error
	UpdateSellerAccountStep(ctx context.Context, accountID string, completed bool, date *time.Time) error
	UpdateCheckAccountStatus(ctx context.Context, accountID string, status models.CheckStatus, date time.Time) error
}

// Config holds workflow policy knobs.
type Config struct {
	// EnforceGates rejects out-of-order step writes with a precondition
	// error. Disabled by default: operators sometimes complete a step
	// manually to unstick a workflow, and historically the store accepted
	// whatever the operator asked for.
	EnforceGates bool
}

// Service is the workflow state machine over signup progress records.
type Service struct {
	store  Store
	clock  clockwork.Clock
	cfg    Config
	logger *logrus.Logger
}

// NewService creates a new workflow service.
func NewService(store Store, clock clockwork.Clock, cfg Config, logger *logrus.Logger) *Service {
	return &Service{
		store:  store,
		clock:  clock,
		cfg:    cfg,
		logger: logger,
	}
}

// GetOrCreate returns the progress record for an account, lazily creating
// it on first access. The new record has step 1 pre-completed with the
// account's creation time: the account existing is what step 1 means.
// Fails with a not-found error when the account itself does not exist.
func (s *Service) GetOrCreate(ctx context.Context, accountID string) (*models.SignupProgress, error) {
	record, err := s.store.GetProgress(ctx, accountID)
	if err != nil {
		return nil, errors.NewStoreUnavailableError("failed to read signup progress", err)
	}
	if record != nil {
		return record, nil
	}

	account, err := s.store.GetAccountByOrderID(ctx, accountID)
	if err != nil {
		return nil, errors.NewStoreUnavailableError("failed to look up account", err)
	}
	if account == nil {
		return nil, errors.NewAccountNotFoundError(accountID)
	}

	if err := s.store.CreateInitialProgress(ctx, accountID, account.CreatedAt); err != nil {
		return nil, errors.NewStoreUnavailableError("failed to create initial progress", err)
	}

	s.logger.WithFields(logrus.Fields{
		"account_id": accountID,
		"created_at": account.CreatedAt,
	}).Info("Created initial signup progress record")

	record, err = s.store.GetProgress(ctx, accountID)
	if err != nil {
		return nil, errors.NewStoreUnavailableError("failed to re-read signup progress", err)
	}
	if record == nil {
		return nil, errors.NewInternalError("progress record missing after creation", nil)
	}

	return record, nil
}

// SetCreateAccountStep marks the create-account step completed or not.
// Completion stamps the step date with the current time; un-completing
// nulls it.
func (s *Service) SetCreateAccountStep(ctx context.Context, accountID string, completed bool) error {
	if _, err := s.GetOrCreate(ctx, accountID); err != nil {
		return err
	}

	return s.mapStepError(StepCreateAccount, accountID,
		s.store.UpdateCreateAccountStep(ctx, accountID, completed, s.stepDate(completed)))
}

// SetFirstListingStep marks the first-listing step completed or not.
func (s *Service) SetFirstListingStep(ctx context.Context, accountID string, completed bool) error {
	record, err := s.GetOrCreate(ctx, accountID)
	if err != nil {
		return err
	}

	if s.cfg.EnforceGates && completed && !record.CreateAccountCompleted {
		return errors.NewPreconditionFailedError("create account step must be completed first", nil)
	}

	return s.mapStepError(StepFirstListing, accountID,
		s.store.UpdateFirstListingStep(ctx, accountID, completed, s.stepDate(completed)))
}

// SetSellerAccountStep marks the seller-account step completed or not.
func (s *Service) SetSellerAccountStep(ctx context.Context, accountID string, completed bool) error {
	record, err := s.GetOrCreate(ctx, accountID)
	if err != nil {
		return err
	}

	if s.cfg.EnforceGates && completed && !record.FirstListingCompleted {
		return errors.NewPreconditionFailedError("first listing step must be completed first", nil)
	}

	return s.mapStepError(StepSellerAccount, accountID,
		s.store.UpdateSellerAccountStep(ctx, accountID, completed, s.stepDate(completed)))
}

// SetCheckAccountStatus records the review outcome for the final step.
// An active or suspended outcome also flips the account's suspended flag;
// both writes happen in one transaction at the store layer. Active and
// suspended can be re-toggled at will, there is no terminal lock.
func (s *Service) SetCheckAccountStatus(ctx context.Context, accountID string, status models.CheckStatus) error {
	if !status.Valid() {
		return errors.NewInvalidStatusError("status must be one of: pending, active, suspended", nil)
	}

	record, err := s.GetOrCreate(ctx, accountID)
	if err != nil {
		return err
	}

	if s.cfg.EnforceGates && status != models.CheckPending && !record.SellerAccountCompleted {
		return errors.NewPreconditionFailedError("seller account step must be completed first", nil)
	}

	if err := s.store.UpdateCheckAccountStatus(ctx, accountID, status, s.clock.Now()); err != nil {
		switch {
		case stderrors.Is(err, sql.ErrNoRows):
			return errors.NewAccountNotFoundError(accountID)
		case stderrors.Is(err, db.ErrCommitUnconfirmed):
			// Only the commit outcome is unknown; anything earlier was
			// rolled back, leaving the status and the suspended flag
			// untouched together.
			return errors.NewPartialUpdateError("check account status commit unconfirmed", err)
		default:
			return errors.NewStoreUnavailableError("failed to update check account status", err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"account_id": accountID,
		"status":     status,
	}).Info("Updated check account status")

	return nil
}

func (s *Service) stepDate(completed bool) *time.Time {
	if !completed {
		return nil
	}
	now := s.clock.Now()
	return &now
}

func (s *Service) mapStepError(step Step, accountID string, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NewAccountNotFoundError(accountID)
	}

	s.logger.WithFields(logrus.Fields{
		"account_id": accountID,
		"step":       step,
	}).Errorf("Step update failed: %v", err)

	return errors.NewStoreUnavailableError("failed to update "+string(step)+" step", err)
}
