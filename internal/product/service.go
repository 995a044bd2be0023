package product

import (
	"context"

	"github.com/aliyev12/vistashopverse/internal/logger"
	"github.com/aliyev12/vistashopverse/internal/utils"

	"go.uber.org/zap"
)

// Service exposes the storefront catalog reads plus the admin
// management operations behind them.
type Service interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)
	ProductExists(ctx context.Context, slug string) (bool, error)
	ListProducts(ctx context.Context, opts QueryOptions) ([]*Product, int64, error)
	CreateProduct(ctx context.Context, in ProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, id string, in ProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *service) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *service) ProductExists(ctx context.Context, slug string) (bool, error) {
	return s.repo.ExistsBySlug(ctx, slug)
}

func (s *service) ListProducts(ctx context.Context, opts QueryOptions) ([]*Product, int64, error) {
	return s.repo.GetList(ctx, opts)
}

func validateInput(in ProductInput) error {
	if in.Name == "" {
		return errValidation("product name is required")
	}
	if in.Price.IsNegative() {
		return errValidation("price must not be negative")
	}
	if in.Stock < 0 {
		return errValidation("stock must not be negative")
	}
	return nil
}

// CreateProduct adds a catalog entry. The slug is derived from the
// name and must be unique across the catalog.
func (s *service) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	if !utils.IsAdmin(ctx) {
		return nil, ErrUnauthorized
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	slug := utils.Slugify(in.Name)
	if slug == "" {
		return nil, errValidation("product name yields an empty slug")
	}

	exists, err := s.repo.ExistsBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrSlugExists
	}

	p := &Product{
		Name:        in.Name,
		Slug:        slug,
		Category:    in.Category,
		Brand:       in.Brand,
		Description: in.Description,
		Image:       in.Image,
		Price:       in.Price,
		Stock:       in.Stock,
		IsFeatured:  in.IsFeatured,
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("product created",
		zap.String("product_id", p.ID), zap.String("slug", p.Slug))
	return p, nil
}

func (s *service) UpdateProduct(ctx context.Context, id string, in ProductInput) (*Product, error) {
	if !utils.IsAdmin(ctx) {
		return nil, ErrUnauthorized
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrProductNotFound
	}

	// A rename re-derives the slug; only a changed slug can collide.
	slug := utils.Slugify(in.Name)
	if slug != existing.Slug {
		exists, err := s.repo.ExistsBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrSlugExists
		}
	}

	existing.Name = in.Name
	existing.Slug = slug
	existing.Category = in.Category
	existing.Brand = in.Brand
	existing.Description = in.Description
	existing.Image = in.Image
	existing.Price = in.Price
	existing.Stock = in.Stock
	existing.IsFeatured = in.IsFeatured

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *service) DeleteProduct(ctx context.Context, id string) error {
	if !utils.IsAdmin(ctx) {
		return ErrUnauthorized
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("product deleted", zap.String("product_id", id))
	return nil
}
