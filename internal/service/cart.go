package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/shoptrack/shoptrack/internal/domain"
	"github.com/shoptrack/shoptrack/internal/events"
	"github.com/shoptrack/shoptrack/internal/repository"
	"github.com/shoptrack/shoptrack/internal/telemetry"
)

// CartService is the single point of truth for mutating a user's active cart.
// Every mutation runs in one transaction and appends exactly one cart event;
// events are published to NATS only after the transaction commits.
type CartService struct {
	store     Datastore
	publisher events.Publisher
	metrics   *telemetry.BusinessMetrics
	logger    *slog.Logger
}

func NewCartService(store Datastore, publisher events.Publisher, metrics *telemetry.BusinessMetrics, logger *slog.Logger) *CartService {
	return &CartService{
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

var _ domain.CartService = (*CartService)(nil)

// GetOrCreateActiveCart returns the user's active cart, creating one if none
// exists.
func (s *CartService) GetOrCreateActiveCart(ctx context.Context, userID pgtype.UUID) (*domain.Cart, error) {
	row, err := s.activeCart(ctx, s.store, userID)
	if err != nil {
		return nil, domain.Internal(err, "cart.get_or_create", "Failed to resolve active cart")
	}
	return cartFromRow(row), nil
}

// activeCart resolves the user's active cart, creating one on demand. The
// insert uses ON CONFLICT DO NOTHING against the one-active-cart-per-user
// index, so a lost race falls through to re-reading the winner's row.
func (s *CartService) activeCart(ctx context.Context, q repository.Querier, userID pgtype.UUID) (repository.Cart, error) {
	cart, err := q.GetActiveCartByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return repository.Cart{}, err
	}

	cart, err = q.CreateActiveCart(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return repository.Cart{}, err
	}
	return q.GetActiveCartByUser(ctx, userID)
}

// GetCartSummary returns the user's active cart with line items and totals.
func (s *CartService) GetCartSummary(ctx context.Context, userID pgtype.UUID) (*domain.CartSummary, error) {
	const op = "cart.summary"

	cart, err := s.activeCart(ctx, s.store, userID)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to resolve active cart")
	}

	rows, err := s.store.ListCartItems(ctx, cart.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to list cart items")
	}

	items := make([]domain.CartItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.CartItem{
			ID:          row.ID,
			CartID:      row.CartID,
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			PriceCents:  row.PriceCents,
			Quantity:    row.Quantity,
			AddedAt:     row.AddedAt,
			UpdatedAt:   row.UpdatedAt,
		})
	}

	return &domain.CartSummary{
		Cart:   *cartFromRow(cart),
		Items:  items,
		Totals: totalsFromItems(rows),
	}, nil
}

// AddItem adds quantity of a product to the user's active cart. Adding a
// product already in the cart increases the existing line item; the resulting
// quantity is checked against current stock.
func (s *CartService) AddItem(ctx context.Context, userID, productID pgtype.UUID, quantity int32) (*domain.CartItem, error) {
	const op = "cart.add_item"

	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var (
		item  domain.CartItem
		event domain.CartEvent
	)
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		cart, err := s.activeCart(ctx, q, userID)
		if err != nil {
			return domain.Internal(err, op, "Failed to resolve active cart")
		}

		product, err := q.GetProductByID(ctx, productID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrProductNotFound
			}
			return domain.Internal(err, op, "Failed to look up product")
		}

		var row repository.CartItem
		existing, err := q.GetCartItemByCartAndProduct(ctx, repository.GetCartItemByCartAndProductParams{
			CartID:    cart.ID,
			ProductID: productID,
		})
		switch {
		case err == nil:
			newQuantity := existing.Quantity + quantity
			if newQuantity > product.StockQuantity {
				return additionalStockAvailable(op, product.StockQuantity-existing.Quantity)
			}
			row, err = q.UpdateCartItemQuantity(ctx, repository.UpdateCartItemQuantityParams{
				ID:       existing.ID,
				Quantity: newQuantity,
			})
			if err != nil {
				return domain.Internal(err, op, "Failed to update cart item")
			}
		case errors.Is(err, pgx.ErrNoRows):
			if quantity > product.StockQuantity {
				return insufficientStock(op, product.StockQuantity)
			}
			row, err = q.CreateCartItem(ctx, repository.CreateCartItemParams{
				CartID:    cart.ID,
				ProductID: productID,
				Quantity:  quantity,
			})
			if err != nil {
				return domain.Internal(err, op, "Failed to create cart item")
			}
		default:
			return domain.Internal(err, op, "Failed to look up cart item")
		}

		ev, err := q.CreateCartEvent(ctx, repository.CreateCartEventParams{
			CartID:          cart.ID,
			UserID:          userID,
			ProductID:       productID,
			EventType:       string(domain.EventAdded),
			QuantityChanged: quantity,
		})
		if err != nil {
			return domain.Internal(err, op, "Failed to record cart event")
		}
		if err := q.TouchCart(ctx, cart.ID); err != nil {
			return domain.Internal(err, op, "Failed to touch cart")
		}

		item = domain.CartItem{
			ID:          row.ID,
			CartID:      row.CartID,
			ProductID:   row.ProductID,
			ProductName: product.Name,
			PriceCents:  product.PriceCents,
			Quantity:    row.Quantity,
			AddedAt:     row.AddedAt,
			UpdatedAt:   row.UpdatedAt,
		}
		event = eventFromRow(ev)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishCartEvent(event)
	if s.metrics != nil {
		s.metrics.RecordItemAdded(quantity)
	}
	return &item, nil
}

// UpdateItemQuantity sets a line item's quantity. The item must belong to the
// caller's active cart. A no-op update (same quantity) records no event.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, itemID pgtype.UUID, quantity int32) (*domain.CartItem, error) {
	const op = "cart.update_item"

	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var (
		item     domain.CartItem
		event    domain.CartEvent
		hasEvent bool
	)
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		current, err := q.GetCartItemForUser(ctx, repository.GetCartItemForUserParams{
			ID:     itemID,
			UserID: userID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrCartItemNotFound
			}
			return domain.Internal(err, op, "Failed to look up cart item")
		}

		if quantity > current.StockQuantity {
			return insufficientStock(op, current.StockQuantity)
		}

		row, err := q.UpdateCartItemQuantity(ctx, repository.UpdateCartItemQuantityParams{
			ID:       itemID,
			Quantity: quantity,
		})
		if err != nil {
			return domain.Internal(err, op, "Failed to update cart item")
		}

		if delta := quantity - current.Quantity; delta != 0 {
			ev, err := q.CreateCartEvent(ctx, repository.CreateCartEventParams{
				CartID:          current.CartID,
				UserID:          userID,
				ProductID:       current.ProductID,
				EventType:       string(domain.EventUpdated),
				QuantityChanged: delta,
			})
			if err != nil {
				return domain.Internal(err, op, "Failed to record cart event")
			}
			event = eventFromRow(ev)
			hasEvent = true
		}
		if err := q.TouchCart(ctx, current.CartID); err != nil {
			return domain.Internal(err, op, "Failed to touch cart")
		}

		item = domain.CartItem{
			ID:          row.ID,
			CartID:      row.CartID,
			ProductID:   row.ProductID,
			ProductName: current.ProductName,
			PriceCents:  current.PriceCents,
			Quantity:    row.Quantity,
			AddedAt:     row.AddedAt,
			UpdatedAt:   row.UpdatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if hasEvent {
		s.publisher.PublishCartEvent(event)
	}
	return &item, nil
}

// RemoveItem deletes a line item from the caller's active cart. The removal
// event is recorded before the delete so it references a still-valid item.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID pgtype.UUID) error {
	const op = "cart.remove_item"

	var event domain.CartEvent
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		current, err := q.GetCartItemForUser(ctx, repository.GetCartItemForUserParams{
			ID:     itemID,
			UserID: userID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrCartItemNotFound
			}
			return domain.Internal(err, op, "Failed to look up cart item")
		}

		ev, err := q.CreateCartEvent(ctx, repository.CreateCartEventParams{
			CartID:          current.CartID,
			UserID:          userID,
			ProductID:       current.ProductID,
			EventType:       string(domain.EventRemoved),
			QuantityChanged: -current.Quantity,
		})
		if err != nil {
			return domain.Internal(err, op, "Failed to record cart event")
		}
		if err := q.DeleteCartItem(ctx, itemID); err != nil {
			return domain.Internal(err, op, "Failed to delete cart item")
		}
		if err := q.TouchCart(ctx, current.CartID); err != nil {
			return domain.Internal(err, op, "Failed to touch cart")
		}

		event = eventFromRow(ev)
		return nil
	})
	if err != nil {
		return err
	}

	s.publisher.PublishCartEvent(event)
	return nil
}

// Checkout validates stock for every line item, then transitions the cart to
// purchased. Either every item passes and the cart transitions, or nothing
// changes.
func (s *CartService) Checkout(ctx context.Context, userID pgtype.UUID) (*domain.Cart, error) {
	const op = "cart.checkout"

	var (
		cart  domain.Cart
		event domain.CartEvent
	)
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		current, err := q.GetActiveCartByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrCartNotFound
			}
			return domain.Internal(err, op, "Failed to look up cart")
		}

		items, err := q.ListCartItems(ctx, current.ID)
		if err != nil {
			return domain.Internal(err, op, "Failed to list cart items")
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		for _, it := range items {
			if it.Quantity > it.StockQuantity {
				return domain.Errorf(domain.ECONFLICT, op,
					"Insufficient stock for %s. Only %d items available", it.ProductName, it.StockQuantity)
			}
		}

		purchased, err := q.MarkCartPurchased(ctx, current.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrCartNotActive
			}
			return domain.Internal(err, op, "Failed to mark cart purchased")
		}

		ev, err := q.CreateCartEvent(ctx, repository.CreateCartEventParams{
			CartID:                 purchased.ID,
			UserID:                 userID,
			EventType:              string(domain.EventPurchased),
			SessionDurationSeconds: sessionSeconds(purchased.CreatedAt),
		})
		if err != nil {
			return domain.Internal(err, op, "Failed to record cart event")
		}

		cart = *cartFromRow(purchased)
		event = eventFromRow(ev)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishCartEvent(event)
	if s.metrics != nil {
		s.metrics.RecordCheckout()
	}
	s.logger.Info("cart checked out", "cart_id", cart.ID, "user_id", userID)
	return &cart, nil
}

// CartTotals computes totals for a cart. Pure read, no side effects.
func (s *CartService) CartTotals(ctx context.Context, cartID pgtype.UUID) (*domain.CartTotals, error) {
	rows, err := s.store.ListCartItems(ctx, cartID)
	if err != nil {
		return nil, domain.Internal(err, "cart.totals", "Failed to list cart items")
	}
	totals := totalsFromItems(rows)
	return &totals, nil
}

func totalsFromItems(rows []repository.ListCartItemsRow) domain.CartTotals {
	var totals domain.CartTotals
	for _, row := range rows {
		totals.TotalPriceCents += row.PriceCents * int64(row.Quantity)
		totals.ItemsCount += row.Quantity
		totals.UniqueItems++
	}
	return totals
}

func sessionSeconds(createdAt pgtype.Timestamptz) int32 {
	if !createdAt.Valid {
		return 0
	}
	return int32(time.Since(createdAt.Time).Seconds())
}
