package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Querier is the full query surface of the package. Services depend on it
// rather than on *Queries so tests can swap in an in-memory double.
type Querier interface {
	// Users
	CreateUser(ctx context.Context, arg CreateUserParams) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id pgtype.UUID) (User, error)
	UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (User, error)

	// Products
	CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error)
	GetProductByID(ctx context.Context, id pgtype.UUID) (Product, error)
	ListProducts(ctx context.Context, arg ListProductsParams) ([]Product, error)
	UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error)
	DeleteProduct(ctx context.Context, id pgtype.UUID) (int64, error)

	// Carts
	GetActiveCartByUser(ctx context.Context, userID pgtype.UUID) (Cart, error)
	CreateActiveCart(ctx context.Context, userID pgtype.UUID) (Cart, error)
	TouchCart(ctx context.Context, id pgtype.UUID) error
	MarkCartPurchased(ctx context.Context, id pgtype.UUID) (Cart, error)
	MarkCartAbandoned(ctx context.Context, id pgtype.UUID) (Cart, error)
	ListStaleActiveCarts(ctx context.Context, arg ListStaleActiveCartsParams) ([]Cart, error)

	// Cart items
	GetCartItemByCartAndProduct(ctx context.Context, arg GetCartItemByCartAndProductParams) (CartItem, error)
	GetCartItemForUser(ctx context.Context, arg GetCartItemForUserParams) (GetCartItemForUserRow, error)
	CreateCartItem(ctx context.Context, arg CreateCartItemParams) (CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, arg UpdateCartItemQuantityParams) (CartItem, error)
	DeleteCartItem(ctx context.Context, id pgtype.UUID) error
	ListCartItems(ctx context.Context, cartID pgtype.UUID) ([]ListCartItemsRow, error)
	CountCartItems(ctx context.Context, cartID pgtype.UUID) (int64, error)

	// Cart events
	CreateCartEvent(ctx context.Context, arg CreateCartEventParams) (CartEvent, error)

	// Analytics aggregates
	CountCartsCreatedSince(ctx context.Context, since pgtype.Timestamptz) (int64, error)
	CountCartsCreatedSinceByStatus(ctx context.Context, arg CountCartsCreatedSinceByStatusParams) (int64, error)
	CountCartsByUser(ctx context.Context, userID pgtype.UUID) (int64, error)
	CountCartsByUserAndStatus(ctx context.Context, arg CountCartsByUserAndStatusParams) (int64, error)
	ListPurchasedCartValues(ctx context.Context, userID pgtype.UUID) ([]int64, error)
	ListFavoriteProducts(ctx context.Context, arg ListFavoriteProductsParams) ([]ListFavoriteProductsRow, error)
	CountEventsByUser(ctx context.Context, userID pgtype.UUID) (int64, error)
	ListEventTypeCounts(ctx context.Context, productID pgtype.UUID) ([]ListEventTypeCountsRow, error)
	CountEventsByProduct(ctx context.Context, productID pgtype.UUID) (int64, error)
	CountEventsByProductAndType(ctx context.Context, arg CountEventsByProductAndTypeParams) (int64, error)
	CountRecentEventsByProduct(ctx context.Context, arg CountRecentEventsByProductParams) (int64, error)
	CountEventsSince(ctx context.Context, since pgtype.Timestamptz) (int64, error)
	ListCartSessionDurations(ctx context.Context, since pgtype.Timestamptz) ([]float64, error)
	ListDailyEventCounts(ctx context.Context, since pgtype.Timestamptz) ([]ListDailyEventCountsRow, error)
	GetMostActiveHour(ctx context.Context, since pgtype.Timestamptz) (GetMostActiveHourRow, error)
	CountCartsBetweenByStatus(ctx context.Context, arg CountCartsBetweenByStatusParams) (int64, error)
	CountEventsBetween(ctx context.Context, arg CountEventsBetweenParams) (int64, error)
	ListProductPairs(ctx context.Context, limit int32) ([]ListProductPairsRow, error)
}

var _ Querier = (*Queries)(nil)
