package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aliyev12/vistashopverse/internal/cart"
	"github.com/aliyev12/vistashopverse/internal/config"
	"github.com/aliyev12/vistashopverse/internal/pricing"
	"github.com/aliyev12/vistashopverse/internal/user"
	"github.com/aliyev12/vistashopverse/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateTx(ctx context.Context, o *Order, cartID string) error {
	args := m.Called(ctx, o, cartID)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID uint, opts ListOptions) ([]*Order, error) {
	args := m.Called(ctx, userID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockRepository) ListAll(ctx context.Context, opts ListOptions) ([]*Order, int64, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) MarkPaid(ctx context.Context, id string, result *PaymentResult, paidAt time.Time) (bool, error) {
	args := m.Called(ctx, id, result, paidAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) (bool, error) {
	args := m.Called(ctx, id, deliveredAt)
	return args.Bool(0), args.Error(1)
}

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) FindByOwner(ctx context.Context, owner cart.Owner) (*cart.Cart, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartRepository) Upsert(ctx context.Context, c *cart.Cart) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCartRepository) Update(ctx context.Context, c *cart.Cart) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCartRepository) Delete(ctx context.Context, cartID string) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, name, email, password, role string) (user.User, error) {
	args := m.Called(ctx, name, email, password, role)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) UpdateAddress(ctx context.Context, id uint, addr user.ShippingAddress) error {
	args := m.Called(ctx, id, addr)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePaymentMethod(ctx context.Context, id uint, method string) error {
	args := m.Called(ctx, id, method)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) OrderPaid(ctx context.Context, o *Order) {
	m.Called(ctx, o)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func testConfig() *config.Config {
	return &config.Config{
		Pricing: config.Pricing{
			TaxRate:         dec("0.15"),
			ShippingMin:     dec("100"),
			ShippingDefault: dec("10"),
		},
		PaymentMethods: []string{"PayPal", "Stripe", "CashOnDelivery"},
	}
}

type fixtures struct {
	repo     *MockRepository
	cartRepo *MockCartRepository
	userRepo *MockUserRepository
	notifier *MockNotifier
	svc      Service
}

func newFixtures() *fixtures {
	f := &fixtures{
		repo:     new(MockRepository),
		cartRepo: new(MockCartRepository),
		userRepo: new(MockUserRepository),
		notifier: new(MockNotifier),
	}
	cfg := testConfig()
	calc := pricing.NewCalculator(cfg.Pricing)
	f.svc = NewService(f.repo, f.cartRepo, f.userRepo, calc, cfg, f.notifier)
	return f
}

func userCtx(id uint) context.Context {
	return utils.SetUserContext(context.Background(), id, "buyer@example.com", utils.RoleUser)
}

func adminCtx() context.Context {
	return utils.SetUserContext(context.Background(), 99, "admin@example.com", utils.RoleAdmin)
}

func testAddress() *user.ShippingAddress {
	return &user.ShippingAddress{
		FullName:      "Jane Buyer",
		StreetAddress: "1 Main St",
		City:          "Springfield",
		PostalCode:    "12345",
		Country:       "US",
	}
}

func testCart(userID uint) *cart.Cart {
	c := &cart.Cart{
		ID:     "cart-1",
		UserID: &userID,
		Items: []cart.LineItem{
			{ProductID: "p1", Slug: "widget", Name: "Widget", Price: dec("20.00"), Qty: 3},
		},
	}
	c.ItemsPrice = dec("60.00")
	c.ShippingPrice = dec("10.00")
	c.TaxPrice = dec("9.00")
	c.TotalPrice = dec("79.00")
	return c
}

func TestService_Checkout(t *testing.T) {
	userID := uint(1)

	t.Run("Unauthenticated", func(t *testing.T) {
		f := newFixtures()

		_, err := f.svc.Checkout(context.Background())

		assert.ErrorIs(t, err, ErrUnauthenticated)
		f.cartRepo.AssertNotCalled(t, "FindByOwner")
	})

	t.Run("EmptyCart", func(t *testing.T) {
		f := newFixtures()
		ctx := userCtx(userID)

		f.cartRepo.On("FindByOwner", ctx, mock.Anything).Return(nil, nil)

		_, err := f.svc.Checkout(ctx)

		assert.ErrorIs(t, err, ErrEmptyCart)
		f.userRepo.AssertNotCalled(t, "FindByID")
	})

	t.Run("MissingAddress", func(t *testing.T) {
		f := newFixtures()
		ctx := userCtx(userID)

		f.cartRepo.On("FindByOwner", ctx, mock.Anything).Return(testCart(userID), nil)
		f.userRepo.On("FindByID", ctx, userID).Return(&user.User{ID: userID}, nil)

		_, err := f.svc.Checkout(ctx)

		assert.ErrorIs(t, err, ErrMissingAddress)
	})

	t.Run("MissingPaymentMethod", func(t *testing.T) {
		f := newFixtures()
		ctx := userCtx(userID)

		f.cartRepo.On("FindByOwner", ctx, mock.Anything).Return(testCart(userID), nil)
		f.userRepo.On("FindByID", ctx, userID).Return(&user.User{
			ID:      userID,
			Address: testAddress(),
		}, nil)

		_, err := f.svc.Checkout(ctx)

		assert.ErrorIs(t, err, ErrMissingPaymentMethod)
	})

	t.Run("DisallowedPaymentMethod", func(t *testing.T) {
		f := newFixtures()
		ctx := userCtx(userID)
		method := "Bitcoin"

		f.cartRepo.On("FindByOwner", ctx, mock.Anything).Return(testCart(userID), nil)
		f.userRepo.On("FindByID", ctx, userID).Return(&user.User{
			ID:            userID,
			Address:       testAddress(),
			PaymentMethod: &method,
		}, nil)

		_, err := f.svc.Checkout(ctx)

		assert.ErrorIs(t, err, ErrMissingPaymentMethod)
	})

	t.Run("Success", func(t *testing.T) {
		f := newFixtures()
		ctx := userCtx(userID)
		method := MethodPayPal
		c := testCart(userID)

		f.cartRepo.On("FindByOwner", ctx, mock.Anything).Return(c, nil)
		f.userRepo.On("FindByID", ctx, userID).Return(&user.User{
			ID:            userID,
			Address:       testAddress(),
			PaymentMethod: &method,
		}, nil)
		f.repo.On("CreateTx", ctx, mock.MatchedBy(func(o *Order) bool {
			return o.UserID == userID &&
				o.PaymentMethod == MethodPayPal &&
				o.ItemsPrice.Equal(dec("60.00")) &&
				o.ShippingPrice.Equal(dec("10.00")) &&
				o.TaxPrice.Equal(dec("9.00")) &&
				o.TotalPrice.Equal(dec("79.00")) &&
				len(o.Items) == 1 &&
				!o.IsPaid && !o.IsDelivered
		}), c.ID).Return(nil)

		o, err := f.svc.Checkout(ctx)

		require.NoError(t, err)
		assert.NotEmpty(t, o.ID)
		assert.Equal(t, *testAddress(), o.ShippingAddress)
		f.repo.AssertExpectations(t)
	})

	t.Run("StaleCartTotalGetsRecomputed", func(t *testing.T) {
		f := newFixtures()
		ctx := userCtx(userID)
		method := MethodStripe
		c := testCart(userID)
		// Stored total drifted; the recomputed value must win.
		c.TotalPrice = dec("999.99")

		f.cartRepo.On("FindByOwner", ctx, mock.Anything).Return(c, nil)
		f.userRepo.On("FindByID", ctx, userID).Return(&user.User{
			ID:            userID,
			Address:       testAddress(),
			PaymentMethod: &method,
		}, nil)
		f.repo.On("CreateTx", ctx, mock.Anything, c.ID).Return(nil)

		o, err := f.svc.Checkout(ctx)

		require.NoError(t, err)
		assert.True(t, o.TotalPrice.Equal(dec("79.00")), "got %s", o.TotalPrice)
	})

	t.Run("SnapshotIsIndependentOfCart", func(t *testing.T) {
		f := newFixtures()
		ctx := userCtx(userID)
		method := MethodPayPal
		c := testCart(userID)

		f.cartRepo.On("FindByOwner", ctx, mock.Anything).Return(c, nil)
		f.userRepo.On("FindByID", ctx, userID).Return(&user.User{
			ID:            userID,
			Address:       testAddress(),
			PaymentMethod: &method,
		}, nil)
		f.repo.On("CreateTx", ctx, mock.Anything, c.ID).Return(nil)

		o, err := f.svc.Checkout(ctx)
		require.NoError(t, err)

		c.Items[0].Qty = 99
		assert.Equal(t, int32(3), o.Items[0].Qty)
	})
}

func TestService_MarkPaidFromProvider(t *testing.T) {
	ctx := context.Background()
	orderID := "order-1"
	result := PaymentResult{
		ID:         "ch_123",
		Status:     "COMPLETED",
		PayerEmail: "buyer@example.com",
		AmountPaid: "79.00",
	}

	t.Run("NotFound", func(t *testing.T) {
		f := newFixtures()

		f.repo.On("GetByID", ctx, orderID).Return(nil, nil)

		_, err := f.svc.MarkPaidFromProvider(ctx, orderID, result)

		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("Success", func(t *testing.T) {
		f := newFixtures()
		unpaid := &Order{ID: orderID, PaymentMethod: MethodStripe}
		paidAt := time.Now()
		paid := &Order{ID: orderID, PaymentMethod: MethodStripe, IsPaid: true, PaidAt: &paidAt, PaymentResult: &result}

		f.repo.On("GetByID", ctx, orderID).Return(unpaid, nil).Once()
		f.repo.On("MarkPaid", ctx, orderID, &result, mock.Anything).Return(true, nil)
		f.repo.On("GetByID", ctx, orderID).Return(paid, nil)
		f.notifier.On("OrderPaid", ctx, paid).Return()

		o, err := f.svc.MarkPaidFromProvider(ctx, orderID, result)

		require.NoError(t, err)
		assert.True(t, o.IsPaid)
		assert.Equal(t, &result, o.PaymentResult)
		f.notifier.AssertNumberOfCalls(t, "OrderPaid", 1)
	})

	t.Run("AlreadyPaidIsNoOp", func(t *testing.T) {
		f := newFixtures()
		paidAt := time.Now()
		paid := &Order{ID: orderID, IsPaid: true, PaidAt: &paidAt, PaymentResult: &result}

		f.repo.On("GetByID", ctx, orderID).Return(paid, nil)

		o, err := f.svc.MarkPaidFromProvider(ctx, orderID, result)

		require.NoError(t, err)
		assert.True(t, o.IsPaid)
		f.repo.AssertNotCalled(t, "MarkPaid")
		f.notifier.AssertNotCalled(t, "OrderPaid")
	})

	t.Run("ConcurrentDeliveryLosesQuietly", func(t *testing.T) {
		f := newFixtures()
		unpaid := &Order{ID: orderID, PaymentMethod: MethodStripe}
		paidAt := time.Now()
		paid := &Order{ID: orderID, IsPaid: true, PaidAt: &paidAt}

		// The first read sees unpaid, but another delivery wins the
		// conditional update in between.
		f.repo.On("GetByID", ctx, orderID).Return(unpaid, nil).Once()
		f.repo.On("MarkPaid", ctx, orderID, &result, mock.Anything).Return(false, nil)
		f.repo.On("GetByID", ctx, orderID).Return(paid, nil)

		o, err := f.svc.MarkPaidFromProvider(ctx, orderID, result)

		require.NoError(t, err)
		assert.True(t, o.IsPaid)
		f.notifier.AssertNotCalled(t, "OrderPaid")
	})
}

func TestService_MarkPaidCashOnDelivery(t *testing.T) {
	orderID := "order-1"

	t.Run("RequiresAdmin", func(t *testing.T) {
		f := newFixtures()

		_, err := f.svc.MarkPaidCashOnDelivery(userCtx(1), orderID)

		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("WrongMethod", func(t *testing.T) {
		f := newFixtures()
		ctx := adminCtx()

		f.repo.On("GetByID", ctx, orderID).Return(&Order{ID: orderID, PaymentMethod: MethodPayPal}, nil)

		_, err := f.svc.MarkPaidCashOnDelivery(ctx, orderID)

		assert.ErrorIs(t, err, ErrNotCashOnDelivery)
	})

	t.Run("Success", func(t *testing.T) {
		f := newFixtures()
		ctx := adminCtx()
		cod := &Order{ID: orderID, PaymentMethod: MethodCashOnDelivery}
		paidAt := time.Now()
		paid := &Order{ID: orderID, PaymentMethod: MethodCashOnDelivery, IsPaid: true, PaidAt: &paidAt}

		f.repo.On("GetByID", ctx, orderID).Return(cod, nil).Twice()
		f.repo.On("MarkPaid", ctx, orderID, (*PaymentResult)(nil), mock.Anything).Return(true, nil)
		f.repo.On("GetByID", ctx, orderID).Return(paid, nil)
		f.notifier.On("OrderPaid", ctx, mock.Anything).Return()

		o, err := f.svc.MarkPaidCashOnDelivery(ctx, orderID)

		require.NoError(t, err)
		assert.True(t, o.IsPaid)
		assert.Nil(t, o.PaymentResult)
	})
}

func TestService_MarkDelivered(t *testing.T) {
	orderID := "order-1"

	t.Run("RequiresAdmin", func(t *testing.T) {
		f := newFixtures()

		_, err := f.svc.MarkDelivered(userCtx(1), orderID)

		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("NotYetPaid", func(t *testing.T) {
		f := newFixtures()
		ctx := adminCtx()

		f.repo.On("GetByID", ctx, orderID).Return(&Order{ID: orderID}, nil)

		_, err := f.svc.MarkDelivered(ctx, orderID)

		assert.ErrorIs(t, err, ErrNotYetPaid)
		f.repo.AssertNotCalled(t, "MarkDelivered")
	})

	t.Run("AlreadyDeliveredIsNoOp", func(t *testing.T) {
		f := newFixtures()
		ctx := adminCtx()
		now := time.Now()
		delivered := &Order{ID: orderID, IsPaid: true, IsDelivered: true, DeliveredAt: &now}

		f.repo.On("GetByID", ctx, orderID).Return(delivered, nil)

		o, err := f.svc.MarkDelivered(ctx, orderID)

		require.NoError(t, err)
		assert.True(t, o.IsDelivered)
		f.repo.AssertNotCalled(t, "MarkDelivered")
	})

	t.Run("Success", func(t *testing.T) {
		f := newFixtures()
		ctx := adminCtx()
		now := time.Now()
		paid := &Order{ID: orderID, IsPaid: true, PaidAt: &now}
		delivered := &Order{ID: orderID, IsPaid: true, PaidAt: &now, IsDelivered: true, DeliveredAt: &now}

		f.repo.On("GetByID", ctx, orderID).Return(paid, nil).Once()
		f.repo.On("MarkDelivered", ctx, orderID, mock.Anything).Return(true, nil)
		f.repo.On("GetByID", ctx, orderID).Return(delivered, nil)

		o, err := f.svc.MarkDelivered(ctx, orderID)

		require.NoError(t, err)
		assert.True(t, o.IsDelivered)
	})
}

func TestService_GetOrder(t *testing.T) {
	orderID := "order-1"

	t.Run("OwnerSeesOwnOrder", func(t *testing.T) {
		f := newFixtures()
		ctx := userCtx(1)

		f.repo.On("GetByID", ctx, orderID).Return(&Order{ID: orderID, UserID: 1}, nil)

		o, err := f.svc.GetOrder(ctx, orderID)

		require.NoError(t, err)
		assert.Equal(t, orderID, o.ID)
	})

	t.Run("StrangerIsRejected", func(t *testing.T) {
		f := newFixtures()
		ctx := userCtx(2)

		f.repo.On("GetByID", ctx, orderID).Return(&Order{ID: orderID, UserID: 1}, nil)

		_, err := f.svc.GetOrder(ctx, orderID)

		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("AdminSeesAll", func(t *testing.T) {
		f := newFixtures()
		ctx := adminCtx()

		f.repo.On("GetByID", ctx, orderID).Return(&Order{ID: orderID, UserID: 1}, nil)

		_, err := f.svc.GetOrder(ctx, orderID)

		assert.NoError(t, err)
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newFixtures()
		ctx := userCtx(1)

		f.repo.On("GetByID", ctx, orderID).Return(nil, nil)

		_, err := f.svc.GetOrder(ctx, orderID)

		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestService_ListOrders(t *testing.T) {
	t.Run("ListMyOrdersRequiresAuth", func(t *testing.T) {
		f := newFixtures()

		_, err := f.svc.ListMyOrders(context.Background(), ListOptions{})

		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("ListAllRequiresAdmin", func(t *testing.T) {
		f := newFixtures()

		_, _, err := f.svc.ListAllOrders(userCtx(1), ListOptions{})

		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("ListMyOrders", func(t *testing.T) {
		f := newFixtures()
		ctx := userCtx(1)
		expected := []*Order{{ID: "a", UserID: 1}}

		f.repo.On("ListByUser", ctx, uint(1), ListOptions{}).Return(expected, nil)

		orders, err := f.svc.ListMyOrders(ctx, ListOptions{})

		require.NoError(t, err)
		assert.Equal(t, expected, orders)
	})

	t.Run("RepoError", func(t *testing.T) {
		f := newFixtures()
		ctx := userCtx(1)

		f.repo.On("ListByUser", ctx, uint(1), ListOptions{}).Return(nil, errors.New("db error"))

		_, err := f.svc.ListMyOrders(ctx, ListOptions{})

		assert.Error(t, err)
	})
}
