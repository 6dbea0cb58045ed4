package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

var ErrProductNotFound = &Error{Code: ENOTFOUND, Message: "Product not found"}

// Product represents a catalog entry.
// Prices are stored as integer cents.
type Product struct {
	ID            pgtype.UUID
	Name          string
	Description   string
	PriceCents    int64
	Category      string
	StockQuantity int32
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	// Category matches the product category exactly when set.
	Category *string

	// Search matches name or description case-insensitively when set.
	Search *string
}

// CreateProductParams contains the fields required to create a product.
type CreateProductParams struct {
	Name          string
	Description   string
	PriceCents    int64
	Category      string
	StockQuantity int32
}

// UpdateProductParams contains optional product updates.
// Nil fields are left unchanged.
type UpdateProductParams struct {
	Name          *string
	Description   *string
	PriceCents    *int64
	Category      *string
	StockQuantity *int32
}

// ProductService provides catalog management.
// Create, update, and delete are admin operations; the boundary enforces that.
type ProductService interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	GetProduct(ctx context.Context, id pgtype.UUID) (*Product, error)
	CreateProduct(ctx context.Context, params CreateProductParams) (*Product, error)
	UpdateProduct(ctx context.Context, id pgtype.UUID, params UpdateProductParams) (*Product, error)
	DeleteProduct(ctx context.Context, id pgtype.UUID) error
}
