package progress

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ybenmoussa/signup-monitor/internal/db"
	"github.com/ybenmoussa/signup-monitor/internal/errors"
	"github.com/ybenmoussa/signup-monitor/internal/models"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// MockStore is a mock implementation of progress.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetAccountByOrderID(ctx context.Context, orderID string) (*models.Account, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockStore) GetProgress(ctx context.Context, accountID string) (*models.SignupProgress, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SignupProgress), args.Error(1)
}

func (m *MockStore) CreateInitialProgress(ctx context.Context, accountID string, accountCreatedAt time.Time) error {
	args := m.Called(ctx, accountID, accountCreatedAt)
	return args.Error(0)
}

func (m *MockStore) UpdateCreateAccountStep(ctx context.Context, accountID string, completed bool, date *time.Time) error {
	args := m.Called(ctx, accountID, completed, date)
	return args.Error(0)
}

func (m *MockStore) UpdateFirstListingStep(ctx context.Context, accountID string, completed bool, date *time.Time) error {
	args := m.Called(ctx, accountID, completed, date)
	return args.Error(0)
}

func (m *MockStore) UpdateSellerAccountStep(ctx context.Context, accountID string, completed bool, date *time.Time) error {
	args := m.Called(ctx, accountID, completed, date)
	return args.Error(0)
}

func (m *MockStore) UpdateCheckAccountStatus(ctx context.Context, accountID string, status models.CheckStatus, date time.Time) error {
	args := m.Called(ctx, accountID, status, date)
	return args.Error(0)
}

func newTestService(store Store, cfg Config) *Service {
	logger := logrus.New()
	logger.SetOutput(bytes.NewBuffer(nil))
	return NewService(store, clockwork.NewFakeClockAt(testNow), cfg, logger)
}

func pendingRecord(accountID string, createdAt time.Time) *models.SignupProgress {
	return &models.SignupProgress{
		AccountID:              accountID,
		CreateAccountCompleted: true,
		CreateAccountDate:      &createdAt,
		CheckAccountStatus:     models.CheckPending,
		UpdatedAt:              createdAt,
	}
}

func stampedAt(t time.Time) interface{} {
	return mock.MatchedBy(func(d *time.Time) bool {
		return d != nil && d.Equal(t)
	})
}

func TestGetOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("lazily creates record seeded from account creation", func(t *testing.T) {
		store := new(MockStore)
		svc := newTestService(store, Config{})

		createdAt := testNow.Add(-24 * time.Hour)
		seeded := pendingRecord("AB12C", createdAt)

		store.On("GetProgress", ctx, "AB12C").Return(nil, nil).Once()
		store.On("GetAccountByOrderID", ctx, "AB12C").Return(&models.Account{
			OrderID:   "AB12C",
			CreatedAt: createdAt,
		}, nil).Once()
		store.On("CreateInitialProgress", ctx, "AB12C", createdAt).Return(nil).Once()
		store.On("GetProgress", ctx, "AB12C").Return(seeded, nil).Once()

		record, err := svc.GetOrCreate(ctx, "AB12C")
		require.NoError(t, err)

		assert.True(t, record.CreateAccountCompleted)
		require.NotNil(t, record.CreateAccountDate)
		assert.True(t, record.CreateAccountDate.Equal(createdAt))
		assert.Equal(t, models.CheckPending, record.CheckAccountStatus)
		assert.False(t, record.FirstListingCompleted)
		assert.Nil(t, record.FirstListingDate)
		assert.False(t, record.SellerAccountCompleted)
		assert.Nil(t, record.SellerAccountDate)
		assert.Nil(t, record.CheckAccountDate)
		store.AssertExpectations(t)
	})

	t.Run("returns existing record without account lookup", func(t *testing.T) {
		store := new(MockStore)
		svc := newTestService(store, Config{})

		existing := pendingRecord("AB12C", testNow.Add(-time.Hour))
		store.On("GetProgress", ctx, "AB12C").Return(existing, nil).Once()

		record, err := svc.GetOrCreate(ctx, "AB12C")
		require.NoError(t, err)
		assert.Equal(t, existing, record)
		store.AssertNotCalled(t, "GetAccountByOrderID", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "CreateInitialProgress", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("fails when account does not exist", func(t *testing.T) {
		store := new(MockStore)
		svc := newTestService(store, Config{})

		store.On("GetProgress", ctx, "ZZZZZ").Return(nil, nil).Once()
		store.On("GetAccountByOrderID", ctx, "ZZZZZ").Return(nil, nil).Once()

		_, err := svc.GetOrCreate(ctx, "ZZZZZ")
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
		store.AssertNotCalled(t, "CreateInitialProgress", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSetFirstListingStep(t *testing.T) {
	ctx := context.Background()

	t.Run("writes even when prior step incomplete with gates disabled", func(t *testing.T) {
		store := new(MockStore)
		svc := newTestService(store, Config{EnforceGates: false})

		record := pendingRecord("AB12C", testNow.Add(-time.Hour))
		record.CreateAccountCompleted = false
		record.CreateAccountDate = nil
		store.On("GetProgress", ctx, "AB12C").Return(record, nil).Once()
		store.On("UpdateFirstListingStep", ctx, "AB12C", true, stampedAt(testNow)).Return(nil).Once()

		err := svc.SetFirstListingStep(ctx, "AB12C", true)
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("rejects out-of-order completion with gates enforced", func(t *testing.T) {
		store := new(MockStore)
		svc := newTestService(store, Config{EnforceGates: true})

		record := pendingRecord("AB12C", testNow.Add(-time.Hour))
		record.CreateAccountCompleted = false
		record.CreateAccountDate = nil
		store.On("GetProgress", ctx, "AB12C").Return(record, nil).Once()

		err := svc.SetFirstListingStep(ctx, "AB12C", true)
		require.Error(t, err)
		assert.True(t, errors.IsPreconditionFailed(err))
		store.AssertNotCalled(t, "UpdateFirstListingStep", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("un-completing nulls the step date", func(t *testing.T) {
		store := new(MockStore)
		svc := newTestService(store, Config{})

		record := pendingRecord("AB12C", testNow.Add(-time.Hour))
		listingDate := testNow.Add(-30 * time.Minute)
		record.FirstListingCompleted = true
		record.FirstListingDate = &listingDate
		store.On("GetProgress", ctx, "AB12C").Return(record, nil).Once()
		store.On("UpdateFirstListingStep", ctx, "AB12C", false, (*time.Time)(nil)).Return(nil).Once()

		err := svc.SetFirstListingStep(ctx, "AB12C", false)
		require.NoError(t, err)
		store.AssertExpectations(t)
	})
}

func TestSetSellerAccountStep(t *testing.T) {
	ctx := context.Background()

	t.Run("requires first listing when gates enforced", func(t *testing.T) {
		store := new(MockStore)
		svc := newTestService(store, Config{EnforceGates: true})

		record := pendingRecord("AB12C", testNow.Add(-time.Hour))
		store.On("GetProgress", ctx, "AB12C").Return(record, nil).Once()

		err := svc.SetSellerAccountStep(ctx, "AB12C", true)
		require.Error(t, err)
		assert.True(t, errors.IsPreconditionFailed(err))
	})

	t.Run("completes after first listing", func(t *testing.T) {
		store := new(MockStore)
		svc := newTestService(store, Config{EnforceGates: true})

		record := pendingRecord("AB12C", testNow.Add(-5*time.Hour))
		listingDate := testNow.Add(-2 * time.Hour)
		record.FirstListingCompleted = true
		record.FirstListingDate = &listingDate
		store.On("GetProgress", ctx, "AB12C").Return(record, nil).Once()
		store.On("UpdateSellerAccountStep", ctx, "AB12C", true, stampedAt(testNow)).Return(nil).Once()

		err := svc.SetSellerAccountStep(ctx, "AB12C", true)
		require.NoError(t, err)
		store.AssertExpectations(t)
	})
}

func TestSetCheckAccountStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects invalid status before touching the store", func(t *testing.T) {
		store := new(MockStore)
		svc := newTestService(store, Config{})

		err := svc.SetCheckAccountStatus(ctx, "AB12C", models.CheckStatus("bogus"))
		require.Error(t, err)
		assert.True(t, errors.IsInvalidStatus(err))
		store.AssertNotCalled(t, "GetProgress", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "UpdateCheckAccountStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("suspended then active re-toggles freely", func(t *testing.T) {
		store := new(MockStore)
		svc := newTestService(store, Config{})

		record := pendingRecord("AB12C", testNow.Add(-8*time.Hour))
		record.SellerAccountCompleted = true
		sellerDate := testNow.Add(-10 * time.Minute)
		record.SellerAccountDate = &sellerDate
		store.On("GetProgress", ctx, "AB12C").Return(record, nil).Twice()
		store.On("UpdateCheckAccountStatus", ctx, "AB12C", models.CheckSuspended, testNow).Return(nil).Once()
		store.On("UpdateCheckAccountStatus", ctx, "AB12C", models.CheckActive, testNow).Return(nil).Once()

		require.NoError(t, svc.SetCheckAccountStatus(ctx, "AB12C", models.CheckSuspended))
		require.NoError(t, svc.SetCheckAccountStatus(ctx, "AB12C", models.CheckActive))
		store.AssertExpectations(t)
	})

	t.Run("requires seller account when gates enforced", func(t *testing.T) {
		store := new(MockStore)
		svc := newTestService(store, Config{EnforceGates: true})

		record := pendingRecord("AB12C", testNow.Add(-time.Hour))
		store.On("GetProgress", ctx, "AB12C").Return(record, nil).Once()

		err := svc.SetCheckAccountStatus(ctx, "AB12C", models.CheckActive)
		require.Error(t, err)
		assert.True(t, errors.IsPreconditionFailed(err))
	})

	t.Run("reports partial update only when the commit outcome is unknown", func(t *testing.T) {
		store := new(MockStore)
		svc := newTestService(store, Config{})

		record := pendingRecord("AB12C", testNow.Add(-time.Hour))
		store.On("GetProgress", ctx, "AB12C").Return(record, nil).Once()
		store.On("UpdateCheckAccountStatus", ctx, "AB12C", models.CheckSuspended, testNow).
			Return(fmt.Errorf("%w: broken pipe", db.ErrCommitUnconfirmed)).Once()

		err := svc.SetCheckAccountStatus(ctx, "AB12C", models.CheckSuspended)
		require.Error(t, err)
		assert.True(t, errors.IsPartialUpdate(err))
	})

	t.Run("reports store unavailable when the transaction never starts", func(t *testing.T) {
		store := new(MockStore)
		svc := newTestService(store, Config{})

		record := pendingRecord("AB12C", testNow.Add(-time.Hour))
		store.On("GetProgress", ctx, "AB12C").Return(record, nil).Once()
		store.On("UpdateCheckAccountStatus", ctx, "AB12C", models.CheckSuspended, testNow).
			Return(assert.AnError).Once()

		err := svc.SetCheckAccountStatus(ctx, "AB12C", models.CheckSuspended)
		require.Error(t, err)
		assert.True(t, errors.IsStoreUnavailable(err))
		assert.False(t, errors.IsPartialUpdate(err))
	})
}
