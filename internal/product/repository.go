package product

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aliyev12/vistashopverse/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	GetList(ctx context.Context, opts QueryOptions) ([]*Product, int64, error)
	Insert(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `
	id,
	name,
	slug,
	category,
	brand,
	description,
	image,
	price,
	stock,
	is_featured,
	created_at,
	updated_at`

func (r *repository) scanProduct(row *sql.Row) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Category,
		&p.Brand,
		&p.Description,
		&p.Image,
		&p.Price,
		&p.Stock,
		&p.IsFeatured,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Product, error) {
	query := `SELECT` + productColumns + `
	FROM products
	WHERE id = $1`

	return r.scanProduct(r.db.QueryRowContext(ctx, query, id))
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	query := `SELECT` + productColumns + `
	FROM products
	WHERE slug = $1`

	return r.scanProduct(r.db.QueryRowContext(ctx, query, slug))
}

func (r *repository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE slug = $1)`, slug,
	).Scan(&exists)
	return exists, err
}

// Insert lets the database assign the id and timestamps.
func (r *repository) Insert(ctx context.Context, p *Product) error {
	query := `
	INSERT INTO products (
		name,
		slug,
		category,
		brand,
		description,
		image,
		price,
		stock,
		is_featured
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		p.Name,
		p.Slug,
		p.Category,
		p.Brand,
		p.Description,
		p.Image,
		p.Price,
		p.Stock,
		p.IsFeatured,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to insert product",
			zap.String("slug", p.Slug), zap.Error(err))
		return err
	}

	return nil
}

func (r *repository) Update(ctx context.Context, p *Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1,
		    slug = $2,
		    category = $3,
		    brand = $4,
		    description = $5,
		    image = $6,
		    price = $7,
		    stock = $8,
		    is_featured = $9,
		    updated_at = NOW()
		WHERE id = $10
	`,
		p.Name, p.Slug, p.Category, p.Brand, p.Description,
		p.Image, p.Price, p.Stock, p.IsFeatured, p.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *repository) GetList(ctx context.Context, opts QueryOptions) ([]*Product, int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetList"),
	)

	start := time.Now()

	// ---------- pagination ----------
	finalLimit := uint16(20)
	if opts.Limit != nil && *opts.Limit > 0 {
		finalLimit = *opts.Limit
	}
	if finalLimit > 100 {
		finalLimit = 100
	}

	finalPage := uint16(1)
	if opts.Page != nil && *opts.Page > 0 {
		finalPage = *opts.Page
	}

	// Widen before multiplying, uint16 math wraps past page 655.
	offset := int(finalPage-1) * int(finalLimit)

	// ---------- where ----------
	where := []string{"1=1"}
	args := []any{}

	if opts.Search != nil && *opts.Search != "" {
		where = append(where,
			fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args)+1, len(args)+1),
		)
		args = append(args, "%"+*opts.Search+"%")
	}

	if opts.Category != nil && *opts.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, *opts.Category)
	}

	// ---------- sort ----------
	orderBy := "created_at DESC"
	if opts.SortBy != "" {
		field := "created_at"
		switch opts.SortBy {
		case "price":
			field = "price"
		case "name":
			field = "name"
		}

		dir := "DESC"
		if strings.EqualFold(opts.SortDir, "asc") {
			dir = "ASC"
		}
		orderBy = field + " " + dir
	}

	countQuery := `SELECT COUNT(*) FROM products WHERE ` + strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("count query failed", zap.Error(err))
		return nil, 0, err
	}

	query := `SELECT` + productColumns + `
	FROM products
	WHERE ` + strings.Join(where, " AND ") + `
	ORDER BY ` + orderBy + `
	LIMIT $` + fmt.Sprint(len(args)+1) + `
	OFFSET $` + fmt.Sprint(len(args)+2)

	args = append(args, finalLimit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("query failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, 0, err
	}
	defer rows.Close()

	result := make([]*Product, 0, finalLimit)
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Slug,
			&p.Category,
			&p.Brand,
			&p.Description,
			&p.Image,
			&p.Price,
			&p.Stock,
			&p.IsFeatured,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, 0, err
		}
		result = append(result, &p)
	}

	if err := rows.Err(); err != nil {
		log.Error("rows iteration failed", zap.Error(err))
		return nil, 0, err
	}

	log.Info("query success",
		zap.Int("rows", len(result)),
		zap.Int64("total", total),
		zap.Duration("duration", time.Since(start)),
	)

	return result, total, nil
}
