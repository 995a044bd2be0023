package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/aliyev12/vistashopverse/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	CreateTx(ctx context.Context, o *Order, cartID string) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID uint, opts ListOptions) ([]*Order, error)
	ListAll(ctx context.Context, opts ListOptions) ([]*Order, int64, error)

	// MarkPaid flips the order to paid only when it is still unpaid.
	// The WHERE clause is the compare-and-swap that closes the
	// check-then-act race between concurrent webhook deliveries.
	MarkPaid(ctx context.Context, id string, result *PaymentResult, paidAt time.Time) (bool, error)

	// MarkDelivered flips to delivered only for a paid, undelivered order.
	MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// CreateTx persists a new order and retires the source cart in one
// transaction, so a failed write leaves neither a partial order nor a
// dangling cart.
func (r *repository) CreateTx(ctx context.Context, o *Order, cartID string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateTx"),
		zap.String("order_id", o.ID),
		zap.String("cart_id", cartID),
	)

	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	addr, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, user_id, items, shipping_address, payment_method,
			items_price, shipping_price, tax_price, total_price,
			is_paid, is_delivered, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,false,false,$10)
	`,
		o.ID,
		o.UserID,
		items,
		addr,
		o.PaymentMethod,
		o.ItemsPrice,
		o.ShippingPrice,
		o.TaxPrice,
		o.TotalPrice,
		o.CreatedAt,
	)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		log.Error("failed to retire cart", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Info("order created")
	return nil
}

const orderColumns = `
	id,
	user_id,
	items,
	shipping_address,
	payment_method,
	items_price,
	shipping_price,
	tax_price,
	total_price,
	is_paid,
	paid_at,
	is_delivered,
	delivered_at,
	payment_result,
	created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var (
		o         Order
		rawItems  []byte
		rawAddr   []byte
		rawResult []byte
	)
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&rawItems,
		&rawAddr,
		&o.PaymentMethod,
		&o.ItemsPrice,
		&o.ShippingPrice,
		&o.TaxPrice,
		&o.TotalPrice,
		&o.IsPaid,
		&o.PaidAt,
		&o.IsDelivered,
		&o.DeliveredAt,
		&rawResult,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(rawItems, &o.Items); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawAddr, &o.ShippingAddress); err != nil {
		return nil, err
	}
	if len(rawResult) > 0 {
		var res PaymentResult
		if err := json.Unmarshal(rawResult, &res); err != nil {
			return nil, err
		}
		o.PaymentResult = &res
	}

	return &o, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) list(ctx context.Context, query string, args []any, limit, page int32) ([]*Order, error) {
	offset := (page - 1) * limit
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, rows.Err()
}

func normalizePaging(opts ListOptions) (int32, int32) {
	limit := int32(20)
	if opts.Limit != nil && *opts.Limit > 0 {
		limit = *opts.Limit
	}
	if limit > 100 {
		limit = 100
	}

	page := int32(1)
	if opts.Page != nil && *opts.Page > 0 {
		page = *opts.Page
	}
	return limit, page
}

func (r *repository) ListByUser(ctx context.Context, userID uint, opts ListOptions) ([]*Order, error) {
	limit, page := normalizePaging(opts)

	query := `SELECT ` + orderColumns + `
	FROM orders
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3`

	return r.list(ctx, query, []any{userID}, limit, page)
}

func (r *repository) ListAll(ctx context.Context, opts ListOptions) ([]*Order, int64, error) {
	limit, page := normalizePaging(opts)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + orderColumns + `
	FROM orders
	ORDER BY created_at DESC
	LIMIT $1 OFFSET $2`

	orders, err := r.list(ctx, query, nil, limit, page)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *repository) MarkPaid(ctx context.Context, id string, result *PaymentResult, paidAt time.Time) (bool, error) {
	var rawResult []byte
	if result != nil {
		var err error
		rawResult, err = json.Marshal(result)
		if err != nil {
			return false, err
		}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET is_paid = true,
		    paid_at = $2,
		    payment_result = $3
		WHERE id = $1 AND is_paid = false
	`, id, paidAt, rawResult)
	if err != nil {
		return false, err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *repository) MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET is_delivered = true,
		    delivered_at = $2
		WHERE id = $1 AND is_paid = true AND is_delivered = false
	`, id, deliveredAt)
	if err != nil {
		return false, err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}
