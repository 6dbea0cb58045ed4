package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getCartItemByCartAndProduct = `
SELECT id, cart_id, product_id, quantity, added_at, updated_at
FROM cart_items
WHERE cart_id = $1 AND product_id = $2
`

type GetCartItemByCartAndProductParams struct {
	CartID    pgtype.UUID
	ProductID pgtype.UUID
}

func (q *Queries) GetCartItemByCartAndProduct(ctx context.Context, arg GetCartItemByCartAndProductParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, getCartItemByCartAndProduct, arg.CartID, arg.ProductID)
	var i CartItem
	err := row.Scan(&i.ID, &i.CartID, &i.ProductID, &i.Quantity, &i.AddedAt, &i.UpdatedAt)
	return i, err
}

// getCartItemForUser resolves an item only when it belongs to the user's
// active cart. Items of purchased or abandoned carts are not visible here.
const getCartItemForUser = `
SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.added_at, ci.updated_at,
       c.user_id,
       p.name, p.price_cents, p.stock_quantity
FROM cart_items ci
JOIN carts c ON c.id = ci.cart_id
JOIN products p ON p.id = ci.product_id
WHERE ci.id = $1 AND c.user_id = $2 AND c.status = 'active'
`

type GetCartItemForUserParams struct {
	ID     pgtype.UUID
	UserID pgtype.UUID
}

type GetCartItemForUserRow struct {
	ID            pgtype.UUID
	CartID        pgtype.UUID
	ProductID     pgtype.UUID
	Quantity      int32
	AddedAt       pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
	UserID        pgtype.UUID
	ProductName   string
	PriceCents    int64
	StockQuantity int32
}

func (q *Queries) GetCartItemForUser(ctx context.Context, arg GetCartItemForUserParams) (GetCartItemForUserRow, error) {
	row := q.db.QueryRow(ctx, getCartItemForUser, arg.ID, arg.UserID)
	var r GetCartItemForUserRow
	err := row.Scan(&r.ID, &r.CartID, &r.ProductID, &r.Quantity, &r.AddedAt, &r.UpdatedAt,
		&r.UserID, &r.ProductName, &r.PriceCents, &r.StockQuantity)
	return r, err
}

const createCartItem = `
INSERT INTO cart_items (cart_id, product_id, quantity)
VALUES ($1, $2, $3)
RETURNING id, cart_id, product_id, quantity, added_at, updated_at
`

type CreateCartItemParams struct {
	CartID    pgtype.UUID
	ProductID pgtype.UUID
	Quantity  int32
}

func (q *Queries) CreateCartItem(ctx context.Context, arg CreateCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, createCartItem, arg.CartID, arg.ProductID, arg.Quantity)
	var i CartItem
	err := row.Scan(&i.ID, &i.CartID, &i.ProductID, &i.Quantity, &i.AddedAt, &i.UpdatedAt)
	return i, err
}

const updateCartItemQuantity = `
UPDATE cart_items
SET quantity = $2, updated_at = now()
WHERE id = $1
RETURNING id, cart_id, product_id, quantity, added_at, updated_at
`

type UpdateCartItemQuantityParams struct {
	ID       pgtype.UUID
	Quantity int32
}

func (q *Queries) UpdateCartItemQuantity(ctx context.Context, arg UpdateCartItemQuantityParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, updateCartItemQuantity, arg.ID, arg.Quantity)
	var i CartItem
	err := row.Scan(&i.ID, &i.CartID, &i.ProductID, &i.Quantity, &i.AddedAt, &i.UpdatedAt)
	return i, err
}

const deleteCartItem = `
DELETE FROM cart_items WHERE id = $1
`

func (q *Queries) DeleteCartItem(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, deleteCartItem, id)
	return err
}

const listCartItems = `
SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.added_at, ci.updated_at,
       p.name, p.price_cents, p.stock_quantity
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = $1
ORDER BY ci.added_at
`

type ListCartItemsRow struct {
	ID            pgtype.UUID
	CartID        pgtype.UUID
	ProductID     pgtype.UUID
	Quantity      int32
	AddedAt       pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
	ProductName   string
	PriceCents    int64
	StockQuantity int32
}

func (q *Queries) ListCartItems(ctx context.Context, cartID pgtype.UUID) ([]ListCartItemsRow, error) {
	rows, err := q.db.Query(ctx, listCartItems, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ListCartItemsRow
	for rows.Next() {
		var r ListCartItemsRow
		if err := rows.Scan(&r.ID, &r.CartID, &r.ProductID, &r.Quantity, &r.AddedAt, &r.UpdatedAt,
			&r.ProductName, &r.PriceCents, &r.StockQuantity); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const countCartItems = `
SELECT COUNT(*) FROM cart_items WHERE cart_id = $1
`

func (q *Queries) CountCartItems(ctx context.Context, cartID pgtype.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countCartItems, cartID).Scan(&count)
	return count, err
}
