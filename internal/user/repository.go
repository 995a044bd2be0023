package user

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/aliyev12/vistashopverse/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, name, email, password, role string) (User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	UpdateAddress(ctx context.Context, id uint, addr ShippingAddress) error
	UpdatePaymentMethod(ctx context.Context, id uint, method string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, name, email, password, role string) (User, error) {
	log := logger.FromCtx(ctx)

	var u User
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, password, role`,
		name, email, password, role,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role)

	if err != nil {
		log.Error("db: failed to insert user",
			zap.String("email", email),
			zap.Error(err),
		)
	}

	return u, err
}

const userColumns = `id, name, email, password, role, address, payment_method, created_at, updated_at`

func scanUser(row *sql.Row) (*User, error) {
	var (
		u       User
		rawAddr []byte
	)
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Password,
		&u.Role,
		&rawAddr,
		&u.PaymentMethod,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if len(rawAddr) > 0 {
		var addr ShippingAddress
		if err := json.Unmarshal(rawAddr, &addr); err != nil {
			return nil, err
		}
		u.Address = &addr
	}

	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *repository) FindByID(ctx context.Context, id uint) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *repository) UpdateAddress(ctx context.Context, id uint, addr ShippingAddress) error {
	raw, err := json.Marshal(addr)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET address = $1, updated_at = NOW() WHERE id = $2
	`, raw, id)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *repository) UpdatePaymentMethod(ctx context.Context, id uint, method string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET payment_method = $1, updated_at = NOW() WHERE id = $2
	`, method, id)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}
