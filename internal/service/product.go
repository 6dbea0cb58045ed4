package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/shoptrack/shoptrack/internal/domain"
	"github.com/shoptrack/shoptrack/internal/repository"
)

// ProductService manages the catalog.
type ProductService struct {
	store  Datastore
	logger *slog.Logger
}

func NewProductService(store Datastore, logger *slog.Logger) *ProductService {
	return &ProductService{
		store:  store,
		logger: logger,
	}
}

var _ domain.ProductService = (*ProductService)(nil)

func (s *ProductService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	rows, err := s.store.ListProducts(ctx, repository.ListProductsParams{
		Category: textOrNull(filter.Category),
		Search:   textOrNull(filter.Search),
	})
	if err != nil {
		return nil, domain.Internal(err, "product.list", "Failed to list products")
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, *productFromRow(row))
	}
	return products, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id pgtype.UUID) (*domain.Product, error) {
	row, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, domain.Internal(err, "product.get", "Failed to look up product")
	}
	return productFromRow(row), nil
}

func (s *ProductService) CreateProduct(ctx context.Context, params domain.CreateProductParams) (*domain.Product, error) {
	const op = "product.create"

	if params.Name == "" {
		return nil, domain.Invalid(op, "Product name is required")
	}
	if params.PriceCents < 0 {
		return nil, domain.Invalid(op, "Price cannot be negative")
	}
	if params.StockQuantity < 0 {
		return nil, domain.Invalid(op, "Stock quantity cannot be negative")
	}

	row, err := s.store.CreateProduct(ctx, repository.CreateProductParams{
		Name:          params.Name,
		Description:   params.Description,
		PriceCents:    params.PriceCents,
		Category:      params.Category,
		StockQuantity: params.StockQuantity,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to create product")
	}

	s.logger.Info("product created", "product_id", row.ID, "name", row.Name)
	return productFromRow(row), nil
}

// UpdateProduct merges the provided fields over the stored product.
func (s *ProductService) UpdateProduct(ctx context.Context, id pgtype.UUID, params domain.UpdateProductParams) (*domain.Product, error) {
	const op = "product.update"

	current, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, domain.Internal(err, op, "Failed to look up product")
	}

	next := repository.UpdateProductParams{
		ID:            id,
		Name:          current.Name,
		Description:   current.Description,
		PriceCents:    current.PriceCents,
		Category:      current.Category,
		StockQuantity: current.StockQuantity,
	}
	if params.Name != nil {
		next.Name = *params.Name
	}
	if params.Description != nil {
		next.Description = *params.Description
	}
	if params.PriceCents != nil {
		if *params.PriceCents < 0 {
			return nil, domain.Invalid(op, "Price cannot be negative")
		}
		next.PriceCents = *params.PriceCents
	}
	if params.Category != nil {
		next.Category = *params.Category
	}
	if params.StockQuantity != nil {
		if *params.StockQuantity < 0 {
			return nil, domain.Invalid(op, "Stock quantity cannot be negative")
		}
		next.StockQuantity = *params.StockQuantity
	}

	row, err := s.store.UpdateProduct(ctx, next)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to update product")
	}
	return productFromRow(row), nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id pgtype.UUID) error {
	affected, err := s.store.DeleteProduct(ctx, id)
	if err != nil {
		return domain.Internal(err, "product.delete", "Failed to delete product")
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}
