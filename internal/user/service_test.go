package user

import (
	"context"
	"errors"
	"testing"

	"github.com/aliyev12/vistashopverse/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, name, email, password, role string) (User, error) {
	args := m.Called(ctx, name, email, password, role)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id uint) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) UpdateAddress(ctx context.Context, id uint, addr ShippingAddress) error {
	args := m.Called(ctx, id, addr)
	return args.Error(0)
}

func (m *MockRepository) UpdatePaymentMethod(ctx context.Context, id uint, method string) error {
	args := m.Called(ctx, id, method)
	return args.Error(0)
}

func testConfig() *config.Config {
	return &config.Config{
		PaymentMethods: []string{"PayPal", "Stripe", "CashOnDelivery"},
	}
}

func TestService_Register(t *testing.T) {
	t.Setenv("SECRET_KEY", "testsecret")
	ctx := context.Background()
	name := "Jane Buyer"
	email := "test@example.com"
	password := "password123"

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, testConfig())

		expectedUser := User{
			ID:    1,
			Name:  name,
			Email: email,
			Role:  RoleUser,
		}

		mockRepo.On("Create", ctx, name, email, mock.AnythingOfType("string"), string(RoleUser)).Return(expectedUser, nil)

		token, u, err := svc.Register(ctx, name, email, password)

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, expectedUser, u)
		mockRepo.AssertExpectations(t)
	})

	t.Run("EmailExists", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, testConfig())

		mockRepo.On("Create", ctx, name, email, mock.Anything, string(RoleUser)).
			Return(User{}, errors.New("duplicate key value violates unique constraint \"users_email_key\""))

		_, _, err := svc.Register(ctx, name, email, password)

		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("RepoError", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, testConfig())

		mockRepo.On("Create", ctx, name, email, mock.Anything, string(RoleUser)).
			Return(User{}, errors.New("db error"))

		_, _, err := svc.Register(ctx, name, email, password)

		assert.Error(t, err)
		assert.Equal(t, "db error", err.Error())
	})
}

func TestService_Login(t *testing.T) {
	t.Setenv("SECRET_KEY", "testsecret")
	ctx := context.Background()
	email := "test@example.com"
	password := "password123"

	hashedPassword, _ := HashPassword(password)

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, testConfig())

		u := &User{
			ID:       1,
			Email:    email,
			Password: hashedPassword,
			Role:     RoleUser,
		}

		mockRepo.On("FindByEmail", ctx, email).Return(u, nil)

		token, got, err := svc.Login(ctx, email, password)

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, *u, got)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, testConfig())

		mockRepo.On("FindByEmail", ctx, email).Return(nil, nil)

		_, _, err := svc.Login(ctx, email, password)

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, testConfig())

		u := &User{ID: 1, Email: email, Password: hashedPassword, Role: RoleUser}
		mockRepo.On("FindByEmail", ctx, email).Return(u, nil)

		_, _, err := svc.Login(ctx, email, "wrongpassword")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_SaveAddress(t *testing.T) {
	ctx := context.Background()
	addr := ShippingAddress{
		FullName:      "Jane Buyer",
		StreetAddress: "1 Main St",
		City:          "Springfield",
		PostalCode:    "12345",
		Country:       "US",
	}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, testConfig())

		mockRepo.On("UpdateAddress", ctx, uint(1), addr).Return(nil)

		err := svc.SaveAddress(ctx, 1, addr)
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("MissingField", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, testConfig())

		incomplete := addr
		incomplete.City = ""

		err := svc.SaveAddress(ctx, 1, incomplete)
		assert.ErrorIs(t, err, ErrInvalidAddress)
		mockRepo.AssertNotCalled(t, "UpdateAddress")
	})
}

func TestService_SavePaymentMethod(t *testing.T) {
	ctx := context.Background()

	t.Run("AllowedMethod", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, testConfig())

		mockRepo.On("UpdatePaymentMethod", ctx, uint(1), "Stripe").Return(nil)

		err := svc.SavePaymentMethod(ctx, 1, "Stripe")
		assert.NoError(t, err)
	})

	t.Run("DisallowedMethod", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, testConfig())

		err := svc.SavePaymentMethod(ctx, 1, "Bitcoin")
		assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
		mockRepo.AssertNotCalled(t, "UpdatePaymentMethod")
	})
}

func TestService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, testConfig())

		mockRepo.On("FindByID", ctx, uint(1)).Return(&User{ID: 1}, nil)

		u, err := svc.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, uint(1), u.ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, testConfig())

		mockRepo.On("FindByID", ctx, uint(2)).Return(nil, nil)

		_, err := svc.GetByID(ctx, 2)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
