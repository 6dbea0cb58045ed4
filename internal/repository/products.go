package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createProduct = `
INSERT INTO products (name, description, price_cents, category, stock_quantity)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, name, description, price_cents, category, stock_quantity, created_at, updated_at
`

type CreateProductParams struct {
	Name          string
	Description   string
	PriceCents    int64
	Category      string
	StockQuantity int32
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, createProduct,
		arg.Name,
		arg.Description,
		arg.PriceCents,
		arg.Category,
		arg.StockQuantity,
	)
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Category, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const getProductByID = `
SELECT id, name, description, price_cents, category, stock_quantity, created_at, updated_at
FROM products
WHERE id = $1
`

func (q *Queries) GetProductByID(ctx context.Context, id pgtype.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, getProductByID, id)
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Category, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const listProducts = `
SELECT id, name, description, price_cents, category, stock_quantity, created_at, updated_at
FROM products
WHERE ($1::text IS NULL OR category = $1)
  AND ($2::text IS NULL OR name ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
ORDER BY created_at DESC
`

type ListProductsParams struct {
	Category pgtype.Text
	Search   pgtype.Text
}

func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts, arg.Category, arg.Search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Category, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const updateProduct = `
UPDATE products
SET name = $2,
    description = $3,
    price_cents = $4,
    category = $5,
    stock_quantity = $6,
    updated_at = now()
WHERE id = $1
RETURNING id, name, description, price_cents, category, stock_quantity, created_at, updated_at
`

type UpdateProductParams struct {
	ID            pgtype.UUID
	Name          string
	Description   string
	PriceCents    int64
	Category      string
	StockQuantity int32
}

func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, updateProduct,
		arg.ID,
		arg.Name,
		arg.Description,
		arg.PriceCents,
		arg.Category,
		arg.StockQuantity,
	)
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Category, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const deleteProduct = `
DELETE FROM products WHERE id = $1
`

func (q *Queries) DeleteProduct(ctx context.Context, id pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteProduct, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
