package accounts

import (
	"bytes"
	"context"
	"database/sql"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ybenmoussa/signup-monitor/internal/errors"
	"github.com/ybenmoussa/signup-monitor/internal/models"
)

// MockStore is a mock implementation of accounts.Store
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

func (m *MockStore) ListAccounts(ctx context.Context, limit, offset int, search string) ([]*models.Account, int64, error) {
	args := m.Called(ctx, limit, offset, search)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Account), args.Get(1).(int64), args.Error(2)
}

func (m *MockStore) SaveAccount(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockStore) UpdateAccount(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockStore) DeleteAccount(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockStore) DeleteSuspendedAccounts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) GetEmailDomain(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockStore) UpdateEmailDomain(ctx context.Context, domain string) error {
	args := m.Called(ctx, domain)
	return args.Error(0)
}

func newMockedService(store Store) *Service {
	logger := logrus.New()
	logger.SetOutput(bytes.NewBuffer(nil))
	return NewService(store, newTestGenerator(), logger)
}

func strPtr(s string) *string { return &s }

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	existing := func() *models.Account {
		return &models.Account{
			OrderID:   "AB12C",
			FirstName: "Alice",
			LastName:  "Morgan",
			Email:     "alice42@domain.com",
			Password:  "xkqpzAB12!",
			Country:   "Ireland",
			UserID:    "user-1",
			Suspended: true,
		}
	}

	t.Run("merges supplied fields and keeps the rest", func(t *testing.T) {
		store := new(MockStore)
		svc := newMockedService(store)

		store.On("GetAccountByOrderID", ctx, "AB12C").Return(existing(), nil).Once()
		store.On("UpdateAccount", ctx, mock.MatchedBy(func(a *models.Account) bool {
			return a.OrderID == "AB12C" &&
				a.Email == "new7@domain.com" &&
				a.Country == "Portugal" &&
				a.FirstName == "Alice" &&
				a.Password == "xkqpzAB12!"
		})).Return(nil).Once()

		updated, err := svc.Update(ctx, "AB12C", AccountUpdate{
			Email:   strPtr("new7@domain.com"),
			Country: strPtr("Portugal"),
		})
		require.NoError(t, err)
		assert.Equal(t, "new7@domain.com", updated.Email)
		assert.Equal(t, "Portugal", updated.Country)
		assert.Equal(t, "Morgan", updated.LastName)
		store.AssertExpectations(t)
	})

	t.Run("never changes the suspended flag", func(t *testing.T) {
		store := new(MockStore)
		svc := newMockedService(store)

		store.On("GetAccountByOrderID", ctx, "AB12C").Return(existing(), nil).Once()
		store.On("UpdateAccount", ctx, mock.MatchedBy(func(a *models.Account) bool {
			return a.Suspended
		})).Return(nil).Once()

		updated, err := svc.Update(ctx, "AB12C", AccountUpdate{FirstName: strPtr("Alicia")})
		require.NoError(t, err)
		assert.True(t, updated.Suspended)
		store.AssertExpectations(t)
	})

	t.Run("missing account is not found", func(t *testing.T) {
		store := new(MockStore)
		svc := newMockedService(store)

		store.On("GetAccountByOrderID", ctx, "ZZZZZ").Return(nil, nil).Once()

		_, err := svc.Update(ctx, "ZZZZZ", AccountUpdate{Email: strPtr("x@domain.com")})
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
		store.AssertNotCalled(t, "UpdateAccount", mock.Anything, mock.Anything)
	})

	t.Run("row vanishing between read and write is not found", func(t *testing.T) {
		store := new(MockStore)
		svc := newMockedService(store)

		store.On("GetAccountByOrderID", ctx, "AB12C").Return(existing(), nil).Once()
		store.On("UpdateAccount", ctx, mock.Anything).Return(sql.ErrNoRows).Once()

		_, err := svc.Update(ctx, "AB12C", AccountUpdate{Email: strPtr("x@domain.com")})
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestCreateRandom(t *testing.T) {
	ctx := context.Background()

	store := new(MockStore)
	svc := newMockedService(store)

	store.On("GetEmailDomain", ctx).Return("mail.example", nil).Once()
	store.On("SaveAccount", ctx, mock.MatchedBy(func(a *models.Account) bool {
		return len(a.OrderID) == 5 && a.UserID != "" && !a.Suspended
	})).Return(nil).Once()

	account, err := svc.CreateRandom(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, account.Email, "@mail.example")
	store.AssertExpectations(t)
}
