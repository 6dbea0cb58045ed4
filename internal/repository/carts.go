package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getActiveCartByUser = `
SELECT id, user_id, status, created_at, updated_at, abandoned_at, purchased_at
FROM carts
WHERE user_id = $1 AND status = 'active'
`

func (q *Queries) GetActiveCartByUser(ctx context.Context, userID pgtype.UUID) (Cart, error) {
	row := q.db.QueryRow(ctx, getActiveCartByUser, userID)
	var c Cart
	err := row.Scan(&c.ID, &c.UserID, &c.Status, &c.CreatedAt, &c.UpdatedAt, &c.AbandonedAt, &c.PurchasedAt)
	return c, err
}

// createActiveCart relies on the carts_one_active_per_user partial unique
// index: a concurrent insert loses the race and returns no row, in which case
// the caller re-reads the winner.
const createActiveCart = `
INSERT INTO carts (user_id, status)
VALUES ($1, 'active')
ON CONFLICT (user_id) WHERE status = 'active' DO NOTHING
RETURNING id, user_id, status, created_at, updated_at, abandoned_at, purchased_at
`

func (q *Queries) CreateActiveCart(ctx context.Context, userID pgtype.UUID) (Cart, error) {
	row := q.db.QueryRow(ctx, createActiveCart, userID)
	var c Cart
	err := row.Scan(&c.ID, &c.UserID, &c.Status, &c.CreatedAt, &c.UpdatedAt, &c.AbandonedAt, &c.PurchasedAt)
	return c, err
}

const touchCart = `
UPDATE carts SET updated_at = now() WHERE id = $1
`

func (q *Queries) TouchCart(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, touchCart, id)
	return err
}

const markCartPurchased = `
UPDATE carts
SET status = 'purchased', purchased_at = now(), updated_at = now()
WHERE id = $1 AND status = 'active'
RETURNING id, user_id, status, created_at, updated_at, abandoned_at, purchased_at
`

func (q *Queries) MarkCartPurchased(ctx context.Context, id pgtype.UUID) (Cart, error) {
	row := q.db.QueryRow(ctx, markCartPurchased, id)
	var c Cart
	err := row.Scan(&c.ID, &c.UserID, &c.Status, &c.CreatedAt, &c.UpdatedAt, &c.AbandonedAt, &c.PurchasedAt)
	return c, err
}

const markCartAbandoned = `
UPDATE carts
SET status = 'abandoned', abandoned_at = now(), updated_at = now()
WHERE id = $1 AND status = 'active'
RETURNING id, user_id, status, created_at, updated_at, abandoned_at, purchased_at
`

func (q *Queries) MarkCartAbandoned(ctx context.Context, id pgtype.UUID) (Cart, error) {
	row := q.db.QueryRow(ctx, markCartAbandoned, id)
	var c Cart
	err := row.Scan(&c.ID, &c.UserID, &c.Status, &c.CreatedAt, &c.UpdatedAt, &c.AbandonedAt, &c.PurchasedAt)
	return c, err
}

const listStaleActiveCarts = `
SELECT id, user_id, status, created_at, updated_at, abandoned_at, purchased_at
FROM carts
WHERE status = 'active' AND updated_at < $1
ORDER BY updated_at
LIMIT $2
`

type ListStaleActiveCartsParams struct {
	UpdatedBefore pgtype.Timestamptz
	Limit         int32
}

func (q *Queries) ListStaleActiveCarts(ctx context.Context, arg ListStaleActiveCartsParams) ([]Cart, error) {
	rows, err := q.db.Query(ctx, listStaleActiveCarts, arg.UpdatedBefore, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var carts []Cart
	for rows.Next() {
		var c Cart
		if err := rows.Scan(&c.ID, &c.UserID, &c.Status, &c.CreatedAt, &c.UpdatedAt, &c.AbandonedAt, &c.PurchasedAt); err != nil {
			return nil, err
		}
		carts = append(carts, c)
	}
	return carts, rows.Err()
}
