package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// The event log is append-only: this is the only write the application ever
// performs against cart_events.
const createCartEvent = `
INSERT INTO cart_events (cart_id, user_id, product_id, event_type, quantity_changed, session_duration_seconds)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, cart_id, user_id, product_id, event_type, quantity_changed, timestamp, session_duration_seconds
`

type CreateCartEventParams struct {
	CartID                 pgtype.UUID
	UserID                 pgtype.UUID
	ProductID              pgtype.UUID
	EventType              string
	QuantityChanged        int32
	SessionDurationSeconds int32
}

func (q *Queries) CreateCartEvent(ctx context.Context, arg CreateCartEventParams) (CartEvent, error) {
	row := q.db.QueryRow(ctx, createCartEvent,
		arg.CartID,
		arg.UserID,
		arg.ProductID,
		arg.EventType,
		arg.QuantityChanged,
		arg.SessionDurationSeconds,
	)
	var e CartEvent
	err := row.Scan(&e.ID, &e.CartID, &e.UserID, &e.ProductID, &e.EventType, &e.QuantityChanged, &e.Timestamp, &e.SessionDurationSeconds)
	return e, err
}
