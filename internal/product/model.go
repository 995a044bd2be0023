package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string
	Name        string
	Slug        string
	Category    string
	Brand       string
	Description string
	Image       string
	Price       decimal.Decimal
	Stock       int32
	IsFeatured  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductInput carries the admin-supplied fields for creating or
// updating a catalog entry. The slug is always derived from the name.
type ProductInput struct {
	Name        string
	Category    string
	Brand       string
	Description string
	Image       string
	Price       decimal.Decimal
	Stock       int32
	IsFeatured  bool
}

// QueryOptions drives the storefront list query.
type QueryOptions struct {
	Search   *string
	Category *string
	SortBy   string // "price", "name" or "" for newest
	SortDir  string // "asc" or "desc"
	Limit    *uint16
	Page     *uint16
}
