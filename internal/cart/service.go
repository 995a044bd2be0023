package cart

import (
	"context"

	"github.com/aliyev12/vistashopverse/internal/logger"
	"github.com/aliyev12/vistashopverse/internal/pricing"
	"github.com/aliyev12/vistashopverse/internal/product"
	"github.com/aliyev12/vistashopverse/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AddItemParams struct {
	ProductID string
	Qty       int32
}

type UpdateQtyParams struct {
	ProductID string
	Qty       int32
}

// Service defines the business logic for carts.
type Service interface {
	GetCart(ctx context.Context) (*Cart, error)
	AddItem(ctx context.Context, params AddItemParams) (*Cart, error)
	UpdateItemQty(ctx context.Context, params UpdateQtyParams) (*Cart, error)
	RemoveItem(ctx context.Context, productID string) (*Cart, error)
}

type service struct {
	repo        Repository
	productRepo product.Repository
	calc        *pricing.Calculator
}

func NewService(repo Repository, productRepo product.Repository, calc *pricing.Calculator) Service {
	return &service{repo: repo, productRepo: productRepo, calc: calc}
}

// ownerFromContext resolves the cart owner key: the authenticated
// user when present, otherwise the anonymous session cart id.
func ownerFromContext(ctx context.Context) Owner {
	var owner Owner
	if userID, ok := utils.GetUserIDFromContext(ctx); ok {
		owner.UserID = utils.UintPtr(userID)
	}
	owner.SessionCartID = utils.GetSessionCartIDFromContext(ctx)
	return owner
}

// GetCart returns the caller's cart, or nil when none exists. An
// absent cart is a normal outcome, not an error.
func (s *service) GetCart(ctx context.Context) (*Cart, error) {
	owner := ownerFromContext(ctx)
	if !owner.Resolvable() {
		return nil, nil
	}
	return s.repo.FindByOwner(ctx, owner)
}

// AddItem puts a product into the owner's cart, creating the cart on
// first add. Adding a product already in the cart increments that
// line's quantity instead of duplicating it.
func (s *service) AddItem(ctx context.Context, params AddItemParams) (*Cart, error) {
	owner := ownerFromContext(ctx)
	if !owner.Resolvable() {
		return nil, ErrSessionMissing
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddItem"),
		zap.String("product_id", params.ProductID),
		zap.Int32("qty", params.Qty),
	)

	// 1. Product must exist in the catalog; price is taken from the
	// catalog at time of add, not from the caller.
	p, err := s.productRepo.GetByID(ctx, params.ProductID)
	if err != nil {
		log.Error("failed to look up product", zap.Error(err))
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}

	item, err := ParseLineItem(p.ID, p.Slug, p.Name, p.Image, p.Price, params.Qty)
	if err != nil {
		return nil, err
	}

	// 2. Load existing cart (if any).
	existing, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	// 3. No cart yet: create one containing exactly this item.
	if existing == nil {
		c := &Cart{
			ID:            uuid.New().String(),
			UserID:        owner.UserID,
			SessionCartID: owner.SessionCartID,
			Items:         []LineItem{item},
		}
		c.applyBreakdown(s.calc.Calculate(c.PricingItems()))

		if err := s.repo.Upsert(ctx, c); err != nil {
			return nil, err
		}

		log.Info("cart created with first item", zap.String("cart_id", c.ID))
		return c, nil
	}

	// 4. Merge into the existing cart: same product increments the
	// line quantity, otherwise append a new line.
	merged := false
	for i := range existing.Items {
		if existing.Items[i].ProductID == item.ProductID {
			existing.Items[i].Qty += item.Qty
			merged = true
			break
		}
	}
	if !merged {
		existing.Items = append(existing.Items, item)
	}

	existing.applyBreakdown(s.calc.Calculate(existing.PricingItems()))

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	log.Info("item added to cart",
		zap.String("cart_id", existing.ID),
		zap.Bool("merged", merged),
	)
	return existing, nil
}

// UpdateItemQty sets the quantity of a cart line. A quantity of zero
// removes the line; removing the last line deletes the cart.
func (s *service) UpdateItemQty(ctx context.Context, params UpdateQtyParams) (*Cart, error) {
	owner := ownerFromContext(ctx)
	if !owner.Resolvable() {
		return nil, ErrSessionMissing
	}
	if params.Qty < 0 {
		return nil, errValidation("quantity must not be negative")
	}

	c, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrItemNotInCart
	}

	idx := -1
	for i := range c.Items {
		if c.Items[i].ProductID == params.ProductID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrItemNotInCart
	}

	if params.Qty == 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	} else {
		c.Items[idx].Qty = params.Qty
	}

	if len(c.Items) == 0 {
		if err := s.repo.Delete(ctx, c.ID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	c.applyBreakdown(s.calc.Calculate(c.PricingItems()))

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *service) RemoveItem(ctx context.Context, productID string) (*Cart, error) {
	return s.UpdateItemQty(ctx, UpdateQtyParams{ProductID: productID, Qty: 0})
}
