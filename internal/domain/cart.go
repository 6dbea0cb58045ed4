package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// CartStatus is the lifecycle state of a cart.
// A cart is mutable only while active; purchased and abandoned are terminal.
type CartStatus string

const (
	CartStatusActive    CartStatus = "active"
	CartStatusAbandoned CartStatus = "abandoned"
	CartStatusPurchased CartStatus = "purchased"
)

// Cart represents a user's shopping cart.
// Each user has at most one active cart at a time.
type Cart struct {
	ID          pgtype.UUID
	UserID      pgtype.UUID
	Status      CartStatus
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
	AbandonedAt pgtype.Timestamptz
	PurchasedAt pgtype.Timestamptz
}

// CartItem is a line item within a cart, unique per (cart, product).
type CartItem struct {
	ID          pgtype.UUID
	CartID      pgtype.UUID
	ProductID   pgtype.UUID
	ProductName string
	PriceCents  int64
	Quantity    int32
	AddedAt     pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

// CartTotals aggregates a cart's line items.
type CartTotals struct {
	TotalPriceCents int64
	ItemsCount      int32
	UniqueItems     int32
}

// CartSummary is the cart view returned to the API boundary.
type CartSummary struct {
	Cart   Cart
	Items  []CartItem
	Totals CartTotals
}

// CartService is the single point of truth for mutating a user's active cart.
// Every mutating operation runs in one atomic transaction and records exactly
// one CartEvent; any failure rolls back all writes for that operation.
type CartService interface {
	// GetOrCreateActiveCart returns the user's active cart, creating one if
	// none exists.
	GetOrCreateActiveCart(ctx context.Context, userID pgtype.UUID) (*Cart, error)

	// GetCartSummary returns the user's active cart with items and totals.
	GetCartSummary(ctx context.Context, userID pgtype.UUID) (*CartSummary, error)

	// AddItem adds quantity of a product to the user's active cart, creating
	// the line item or increasing an existing one. The resulting quantity is
	// checked against current stock.
	AddItem(ctx context.Context, userID, productID pgtype.UUID, quantity int32) (*CartItem, error)

	// UpdateItemQuantity sets a line item's quantity. The item must belong to
	// the user's active cart. Quantity must be at least 1.
	UpdateItemQuantity(ctx context.Context, userID, itemID pgtype.UUID, quantity int32) (*CartItem, error)

	// RemoveItem deletes a line item from the user's active cart.
	RemoveItem(ctx context.Context, userID, itemID pgtype.UUID) error

	// Checkout transitions the user's active cart to purchased after
	// validating stock for every line item.
	Checkout(ctx context.Context, userID pgtype.UUID) (*Cart, error)

	// CartTotals computes totals for a cart. Pure read, no side effects.
	CartTotals(ctx context.Context, cartID pgtype.UUID) (*CartTotals, error)
}
