package order

import (
	"context"
	"time"

	"github.com/aliyev12/vistashopverse/internal/cart"
	"github.com/aliyev12/vistashopverse/internal/config"
	"github.com/aliyev12/vistashopverse/internal/logger"
	"github.com/aliyev12/vistashopverse/internal/pricing"
	"github.com/aliyev12/vistashopverse/internal/user"
	"github.com/aliyev12/vistashopverse/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier signals downstream collaborators (inventory, email) after
// a payment completes. Implementations must be safe to call at most
// once per order; the service guarantees it is not called on the
// idempotent no-op path.
type Notifier interface {
	OrderPaid(ctx context.Context, o *Order)
}

// LogNotifier is the default Notifier; it only records the event.
type LogNotifier struct{}

func (LogNotifier) OrderPaid(ctx context.Context, o *Order) {
	logger.FromCtx(ctx).Info("order paid",
		zap.String("order_id", o.ID),
		zap.String("payment_method", o.PaymentMethod),
		zap.String("total_price", o.TotalPrice.String()),
	)
}

type Service interface {
	Checkout(ctx context.Context) (*Order, error)
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	ListMyOrders(ctx context.Context, opts ListOptions) ([]*Order, error)
	ListAllOrders(ctx context.Context, opts ListOptions) ([]*Order, int64, error)
	MarkPaidFromProvider(ctx context.Context, orderID string, result PaymentResult) (*Order, error)
	MarkPaidCashOnDelivery(ctx context.Context, orderID string) (*Order, error)
	MarkDelivered(ctx context.Context, orderID string) (*Order, error)
}

type service struct {
	repo     Repository
	cartRepo cart.Repository
	userRepo user.Repository
	calc     *pricing.Calculator
	cfg      *config.Config
	notifier Notifier
	now      func() time.Time
}

func NewService(
	repo Repository,
	cartRepo cart.Repository,
	userRepo user.Repository,
	calc *pricing.Calculator,
	cfg *config.Config,
	notifier Notifier,
) Service {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &service{
		repo:     repo,
		cartRepo: cartRepo,
		userRepo: userRepo,
		calc:     calc,
		cfg:      cfg,
		notifier: notifier,
		now:      time.Now,
	}
}

// Checkout converts the caller's cart into an order. Preconditions
// are checked in a fixed sequence and the first failure wins: the
// caller must be authenticated, the cart non-empty, and the user must
// have a shipping address and an allowed payment method on file.
func (s *service) Checkout(ctx context.Context) (*Order, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Checkout"),
		zap.Uint("user_id", userID),
	)

	c, err := s.cartRepo.FindByOwner(ctx, cart.Owner{UserID: &userID})
	if err != nil {
		return nil, err
	}
	if c == nil || len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}

	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUnauthenticated
	}
	if u.Address == nil {
		return nil, ErrMissingAddress
	}
	method := utils.PtrString(u.PaymentMethod)
	if !s.cfg.IsPaymentMethodAllowed(method) {
		return nil, ErrMissingPaymentMethod
	}

	// Snapshot the cart and recompute the breakdown from the snapshot.
	// The recomputation, not the cart's stored prices, is what goes on
	// the order; a mismatch means the stored cart drifted.
	items := c.CopyItems()
	breakdown := s.calc.Calculate(cart.PricingItems(items))

	if !breakdown.TotalPrice.Equal(c.TotalPrice) {
		log.Warn("cart stored total differs from recomputed total",
			zap.String("stored", c.TotalPrice.String()),
			zap.String("recomputed", breakdown.TotalPrice.String()),
		)
	}

	o := &Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Items:           items,
		ShippingAddress: *u.Address,
		PaymentMethod:   method,
		ItemsPrice:      breakdown.ItemsPrice,
		ShippingPrice:   breakdown.ShippingPrice,
		TaxPrice:        breakdown.TaxPrice,
		TotalPrice:      breakdown.TotalPrice,
		CreatedAt:       s.now(),
	}

	if err := s.repo.CreateTx(ctx, o, c.ID); err != nil {
		log.Error("failed to persist order", zap.Error(err))
		return nil, err
	}

	log.Info("checkout completed",
		zap.String("order_id", o.ID),
		zap.String("total_price", o.TotalPrice.String()),
	)
	return o, nil
}

// GetOrder returns an order; users only see their own, admins see all.
func (s *service) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}

	if !utils.IsAdmin(ctx) {
		userID, ok := utils.GetUserIDFromContext(ctx)
		if !ok || o.UserID != userID {
			return nil, ErrUnauthorized
		}
	}

	return o, nil
}

func (s *service) ListMyOrders(ctx context.Context, opts ListOptions) ([]*Order, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return s.repo.ListByUser(ctx, userID, opts)
}

func (s *service) ListAllOrders(ctx context.Context, opts ListOptions) ([]*Order, int64, error) {
	if !utils.IsAdmin(ctx) {
		return nil, 0, ErrUnauthorized
	}
	return s.repo.ListAll(ctx, opts)
}

// MarkPaidFromProvider applies an external payment confirmation.
// Redelivered events land on an already-paid order and succeed as
// no-ops; the conditional update below closes the race between two
// deliveries arriving at once.
func (s *service) MarkPaidFromProvider(ctx context.Context, orderID string, result PaymentResult) (*Order, error) {
	return s.markPaid(ctx, orderID, &result)
}

// MarkPaidCashOnDelivery is the admin path for orders paid at the
// door; there is no provider result to record.
func (s *service) MarkPaidCashOnDelivery(ctx context.Context, orderID string) (*Order, error) {
	if !utils.IsAdmin(ctx) {
		return nil, ErrUnauthorized
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if o.PaymentMethod != MethodCashOnDelivery {
		return nil, ErrNotCashOnDelivery
	}

	return s.markPaid(ctx, orderID, nil)
}

func (s *service) markPaid(ctx context.Context, orderID string, result *PaymentResult) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "markPaid"),
		zap.String("order_id", orderID),
	)

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}

	if o.IsPaid {
		log.Info("order already paid, ignoring redelivery")
		return o, nil
	}

	updated, err := s.repo.MarkPaid(ctx, orderID, result, s.now())
	if err != nil {
		return nil, err
	}
	if !updated {
		// A concurrent delivery won the conditional update; the order
		// is paid either way.
		log.Info("order concurrently marked paid")
		return s.repo.GetByID(ctx, orderID)
	}

	o, err = s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.notifier.OrderPaid(ctx, o)

	log.Info("order marked paid")
	return o, nil
}

// MarkDelivered completes fulfillment. Delivery cannot precede
// payment, and a delivered order stays delivered.
func (s *service) MarkDelivered(ctx context.Context, orderID string) (*Order, error) {
	if !utils.IsAdmin(ctx) {
		return nil, ErrUnauthorized
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "MarkDelivered"),
		zap.String("order_id", orderID),
	)

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if !o.IsPaid {
		return nil, ErrNotYetPaid
	}
	if o.IsDelivered {
		log.Info("order already delivered, no-op")
		return o, nil
	}

	updated, err := s.repo.MarkDelivered(ctx, orderID, s.now())
	if err != nil {
		return nil, err
	}
	if !updated {
		return s.repo.GetByID(ctx, orderID)
	}

	log.Info("order marked delivered")
	return s.repo.GetByID(ctx, orderID)
}
