package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/aliyev12/vistashopverse/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	FindByOwner(ctx context.Context, owner Owner) (*Cart, error)
	Upsert(ctx context.Context, c *Cart) error
	Update(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, cartID string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// FindByOwner prefers the user's cart and falls back to the anonymous
// session cart, matching how the storefront resolves ownership.
func (r *repository) FindByOwner(ctx context.Context, owner Owner) (*Cart, error) {
	query := `
	SELECT
		id,
		user_id,
		session_cart_id,
		items,
		items_price,
		shipping_price,
		tax_price,
		total_price,
		created_at,
		updated_at
	FROM carts
	WHERE `

	var row *sql.Row
	if owner.UserID != nil {
		row = r.db.QueryRowContext(ctx, query+`user_id = $1`, *owner.UserID)
	} else {
		row = r.db.QueryRowContext(ctx, query+`session_cart_id = $1`, owner.SessionCartID)
	}

	var (
		c        Cart
		rawItems []byte
	)
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.SessionCartID,
		&rawItems,
		&c.ItemsPrice,
		&c.ShippingPrice,
		&c.TaxPrice,
		&c.TotalPrice,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(rawItems, &c.Items); err != nil {
		return nil, err
	}

	return &c, nil
}

// Upsert inserts a fresh cart for the owner key. Two requests racing
// on an owner with no cart both land here; the partial unique indexes
// collapse them onto one row, so the loser folds into an update
// instead of inserting a second cart.
func (r *repository) Upsert(ctx context.Context, c *Cart) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Upsert"),
		zap.String("session_cart_id", c.SessionCartID),
	)

	items, err := json.Marshal(c.Items)
	if err != nil {
		return err
	}

	conflict := `(session_cart_id) WHERE user_id IS NULL`
	if c.UserID != nil {
		conflict = `(user_id) WHERE user_id IS NOT NULL`
	}

	query := `
	INSERT INTO carts (
		id,
		user_id,
		session_cart_id,
		items,
		items_price,
		shipping_price,
		tax_price,
		total_price
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT ` + conflict + `
	DO UPDATE SET
		items = EXCLUDED.items,
		items_price = EXCLUDED.items_price,
		shipping_price = EXCLUDED.shipping_price,
		tax_price = EXCLUDED.tax_price,
		total_price = EXCLUDED.total_price,
		updated_at = NOW()
	RETURNING created_at, updated_at`

	err = r.db.QueryRowContext(
		ctx,
		query,
		c.ID,
		c.UserID,
		c.SessionCartID,
		items,
		c.ItemsPrice,
		c.ShippingPrice,
		c.TaxPrice,
		c.TotalPrice,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		log.Error("failed to upsert cart", zap.Error(err))
		return err
	}

	log.Info("cart saved", zap.String("cart_id", c.ID))
	return nil
}

// Update rewrites the items and all derived prices in one statement,
// keeping the read-modify-write a single atomic write.
func (r *repository) Update(ctx context.Context, c *Cart) error {
	items, err := json.Marshal(c.Items)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE carts
		SET items = $1,
		    items_price = $2,
		    shipping_price = $3,
		    tax_price = $4,
		    total_price = $5,
		    updated_at = NOW()
		WHERE id = $6
	`, items, c.ItemsPrice, c.ShippingPrice, c.TaxPrice, c.TotalPrice, c.ID)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("no matching cart found to update")
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, cartID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("no matching cart found to delete")
	}

	return nil
}
