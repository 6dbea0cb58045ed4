package repository

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID           pgtype.UUID
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

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

type Cart struct {
	ID          pgtype.UUID
	UserID      pgtype.UUID
	Status      string
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
	AbandonedAt pgtype.Timestamptz
	PurchasedAt pgtype.Timestamptz
}

type CartItem struct {
	ID        pgtype.UUID
	CartID    pgtype.UUID
	ProductID pgtype.UUID
	Quantity  int32
	AddedAt   pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type CartEvent struct {
	ID                     pgtype.UUID
	CartID                 pgtype.UUID
	UserID                 pgtype.UUID
	ProductID              pgtype.UUID
	EventType              string
	QuantityChanged        int32
	Timestamp              pgtype.Timestamptz
	SessionDurationSeconds int32
}
