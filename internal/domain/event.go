package domain

import "github.com/jackc/pgx/v5/pgtype"

// EventType classifies a cart-affecting action.
type EventType string

const (
	EventAdded     EventType = "added"
	EventRemoved   EventType = "removed"
	EventUpdated   EventType = "updated"
	EventAbandoned EventType = "abandoned"
	EventPurchased EventType = "purchased"
)

// CartEvent is an immutable audit record of a single cart-affecting action.
// Events are append-only: created once per mutating action, never updated or
// deleted by application logic.
//
// QuantityChanged is signed: positive for additions, negative for removals,
// the delta for updates, zero for whole-cart events. ProductID is unset for
// whole-cart events (purchase, abandonment).
type CartEvent struct {
	ID                     pgtype.UUID
	CartID                 pgtype.UUID
	UserID                 pgtype.UUID
	ProductID              pgtype.UUID
	EventType              EventType
	QuantityChanged        int32
	Timestamp              pgtype.Timestamptz
	SessionDurationSeconds int32
}
