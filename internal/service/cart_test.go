package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoptrack/shoptrack/internal/domain"
	"github.com/shoptrack/shoptrack/internal/repository"
)

// ============================================================================
// In-memory fakes
// ============================================================================

// capturingPublisher records published events for assertions.
type capturingPublisher struct {
	events []domain.CartEvent
}

func (p *capturingPublisher) PublishCartEvent(event domain.CartEvent) {
	p.events = append(p.events, event)
}

func (p *capturingPublisher) Close() {}

// fakeStore is an in-memory Datastore covering the queries the cart service
// uses. Methods not implemented here panic via the embedded interface.
type fakeStore struct {
	repository.Querier

	carts    map[pgtype.UUID]repository.Cart
	items    map[pgtype.UUID]repository.CartItem
	products map[pgtype.UUID]repository.Product
	events   []repository.CartEvent
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		carts:    make(map[pgtype.UUID]repository.Cart),
		items:    make(map[pgtype.UUID]repository.CartItem),
		products: make(map[pgtype.UUID]repository.Product),
	}
}

func (f *fakeStore) ExecTx(ctx context.Context, fn func(repository.Querier) error) error {
	return fn(f)
}

func (f *fakeStore) addProduct(name string, priceCents int64, stock int32) pgtype.UUID {
	id := newID()
	f.products[id] = repository.Product{
		ID:            id,
		Name:          name,
		PriceCents:    priceCents,
		StockQuantity: stock,
		CreatedAt:     now(),
		UpdatedAt:     now(),
	}
	return id
}

func (f *fakeStore) setStock(productID pgtype.UUID, stock int32) {
	p := f.products[productID]
	p.StockQuantity = stock
	f.products[productID] = p
}

func (f *fakeStore) GetActiveCartByUser(ctx context.Context, userID pgtype.UUID) (repository.Cart, error) {
	for _, c := range f.carts {
		if c.UserID == userID && c.Status == "active" {
			return c, nil
		}
	}
	return repository.Cart{}, pgx.ErrNoRows
}

func (f *fakeStore) CreateActiveCart(ctx context.Context, userID pgtype.UUID) (repository.Cart, error) {
	if _, err := f.GetActiveCartByUser(ctx, userID); err == nil {
		return repository.Cart{}, pgx.ErrNoRows
	}
	c := repository.Cart{
		ID:        newID(),
		UserID:    userID,
		Status:    "active",
		CreatedAt: now(),
		UpdatedAt: now(),
	}
	f.carts[c.ID] = c
	return c, nil
}

func (f *fakeStore) TouchCart(ctx context.Context, id pgtype.UUID) error {
	c := f.carts[id]
	c.UpdatedAt = now()
	f.carts[id] = c
	return nil
}

func (f *fakeStore) MarkCartPurchased(ctx context.Context, id pgtype.UUID) (repository.Cart, error) {
	c, ok := f.carts[id]
	if !ok || c.Status != "active" {
		return repository.Cart{}, pgx.ErrNoRows
	}
	c.Status = "purchased"
	c.PurchasedAt = now()
	c.UpdatedAt = now()
	f.carts[id] = c
	return c, nil
}

func (f *fakeStore) GetProductByID(ctx context.Context, id pgtype.UUID) (repository.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return repository.Product{}, pgx.ErrNoRows
	}
	return p, nil
}

func (f *fakeStore) GetCartItemByCartAndProduct(ctx context.Context, arg repository.GetCartItemByCartAndProductParams) (repository.CartItem, error) {
	for _, it := range f.items {
		if it.CartID == arg.CartID && it.ProductID == arg.ProductID {
			return it, nil
		}
	}
	return repository.CartItem{}, pgx.ErrNoRows
}

func (f *fakeStore) GetCartItemForUser(ctx context.Context, arg repository.GetCartItemForUserParams) (repository.GetCartItemForUserRow, error) {
	it, ok := f.items[arg.ID]
	if !ok {
		return repository.GetCartItemForUserRow{}, pgx.ErrNoRows
	}
	cart := f.carts[it.CartID]
	if cart.UserID != arg.UserID || cart.Status != "active" {
		return repository.GetCartItemForUserRow{}, pgx.ErrNoRows
	}
	p := f.products[it.ProductID]
	return repository.GetCartItemForUserRow{
		ID:            it.ID,
		CartID:        it.CartID,
		ProductID:     it.ProductID,
		Quantity:      it.Quantity,
		AddedAt:       it.AddedAt,
		UpdatedAt:     it.UpdatedAt,
		UserID:        cart.UserID,
		ProductName:   p.Name,
		PriceCents:    p.PriceCents,
		StockQuantity: p.StockQuantity,
	}, nil
}

func (f *fakeStore) CreateCartItem(ctx context.Context, arg repository.CreateCartItemParams) (repository.CartItem, error) {
	it := repository.CartItem{
		ID:        newID(),
		CartID:    arg.CartID,
		ProductID: arg.ProductID,
		Quantity:  arg.Quantity,
		AddedAt:   now(),
		UpdatedAt: now(),
	}
	f.items[it.ID] = it
	return it, nil
}

func (f *fakeStore) UpdateCartItemQuantity(ctx context.Context, arg repository.UpdateCartItemQuantityParams) (repository.CartItem, error) {
	it, ok := f.items[arg.ID]
	if !ok {
		return repository.CartItem{}, pgx.ErrNoRows
	}
	it.Quantity = arg.Quantity
	it.UpdatedAt = now()
	f.items[arg.ID] = it
	return it, nil
}

func (f *fakeStore) DeleteCartItem(ctx context.Context, id pgtype.UUID) error {
	delete(f.items, id)
	return nil
}

func (f *fakeStore) ListCartItems(ctx context.Context, cartID pgtype.UUID) ([]repository.ListCartItemsRow, error) {
	var rows []repository.ListCartItemsRow
	for _, it := range f.items {
		if it.CartID != cartID {
			continue
		}
		p := f.products[it.ProductID]
		rows = append(rows, repository.ListCartItemsRow{
			ID:            it.ID,
			CartID:        it.CartID,
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			AddedAt:       it.AddedAt,
			UpdatedAt:     it.UpdatedAt,
			ProductName:   p.Name,
			PriceCents:    p.PriceCents,
			StockQuantity: p.StockQuantity,
		})
	}
	return rows, nil
}

func (f *fakeStore) CreateCartEvent(ctx context.Context, arg repository.CreateCartEventParams) (repository.CartEvent, error) {
	e := repository.CartEvent{
		ID:                     newID(),
		CartID:                 arg.CartID,
		UserID:                 arg.UserID,
		ProductID:              arg.ProductID,
		EventType:              arg.EventType,
		QuantityChanged:        arg.QuantityChanged,
		Timestamp:              now(),
		SessionDurationSeconds: arg.SessionDurationSeconds,
	}
	f.events = append(f.events, e)
	return e, nil
}

func (f *fakeStore) eventTypes() []string {
	var types []string
	for _, e := range f.events {
		types = append(types, e.EventType)
	}
	return types
}

func newID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}

func now() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: time.Now(), Valid: true}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCartService(store *fakeStore) (*CartService, *capturingPublisher) {
	publisher := &capturingPublisher{}
	return NewCartService(store, publisher, nil, testLogger()), publisher
}

// ============================================================================
// AddItem
// ============================================================================

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	productID := store.addProduct("Coffee Beans", 1299, 10)
	svc, publisher := newCartService(store)
	userID := newID()

	item, err := svc.AddItem(ctx, userID, productID, 2)
	require.NoError(t, err)
	require.Equal(t, int32(2), item.Quantity)
	require.Equal(t, "Coffee Beans", item.ProductName)
	require.Equal(t, int64(1299), item.PriceCents)

	require.Len(t, store.events, 1)
	assert.Equal(t, "added", store.events[0].EventType)
	assert.Equal(t, int32(2), store.events[0].QuantityChanged)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, domain.EventAdded, publisher.events[0].EventType)
}

func TestCartService_AddItem_AccumulatesExistingLine(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	productID := store.addProduct("Mug", 800, 10)
	svc, _ := newCartService(store)
	userID := newID()

	_, err := svc.AddItem(ctx, userID, productID, 2)
	require.NoError(t, err)
	item, err := svc.AddItem(ctx, userID, productID, 3)
	require.NoError(t, err)

	// Two adds of the same product share one line item
	assert.Equal(t, int32(5), item.Quantity)
	assert.Len(t, store.items, 1)
	assert.Equal(t, []string{"added", "added"}, store.eventTypes())
}

func TestCartService_AddItem_InvalidQuantity(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	productID := store.addProduct("Mug", 800, 10)
	svc, publisher := newCartService(store)

	_, err := svc.AddItem(ctx, newID(), productID, 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Empty(t, store.events)
	assert.Empty(t, publisher.events)
}

func TestCartService_AddItem_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc, _ := newCartService(store)

	_, err := svc.AddItem(ctx, newID(), newID(), 1)
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartService_AddItem_NewLineExceedsStock(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	productID := store.addProduct("Mug", 800, 5)
	svc, publisher := newCartService(store)

	_, err := svc.AddItem(ctx, newID(), productID, 10)
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
	assert.Equal(t, "Insufficient stock. Only 5 items available", domain.ErrorMessage(err))
	assert.Empty(t, store.items)
	assert.Empty(t, store.events)
	assert.Empty(t, publisher.events)
}

func TestCartService_AddItem_CumulativeExceedsStock(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	productID := store.addProduct("Mug", 800, 5)
	svc, _ := newCartService(store)
	userID := newID()

	_, err := svc.AddItem(ctx, userID, productID, 3)
	require.NoError(t, err)

	// 3 in the cart + 3 more would exceed the stock of 5
	_, err = svc.AddItem(ctx, userID, productID, 3)
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
	assert.Equal(t, "Insufficient stock. Only 2 additional items available", domain.ErrorMessage(err))

	// The failed add leaves the line item untouched
	summary, err := svc.GetCartSummary(ctx, userID)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, int32(3), summary.Items[0].Quantity)
	assert.Equal(t, []string{"added"}, store.eventTypes())
}

// ============================================================================
// UpdateItemQuantity / RemoveItem
// ============================================================================

func TestCartService_UpdateItemQuantity(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	productID := store.addProduct("Mug", 800, 10)
	svc, publisher := newCartService(store)
	userID := newID()

	item, err := svc.AddItem(ctx, userID, productID, 3)
	require.NoError(t, err)

	updated, err := svc.UpdateItemQuantity(ctx, userID, item.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, int32(5), updated.Quantity)

	require.Equal(t, []string{"added", "updated"}, store.eventTypes())
	assert.Equal(t, int32(2), store.events[1].QuantityChanged)
	require.Len(t, publisher.events, 2)
}

func TestCartService_UpdateItemQuantity_NoOpRecordsNoEvent(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	productID := store.addProduct("Mug", 800, 10)
	svc, publisher := newCartService(store)
	userID := newID()

	item, err := svc.AddItem(ctx, userID, productID, 3)
	require.NoError(t, err)

	_, err = svc.UpdateItemQuantity(ctx, userID, item.ID, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"added"}, store.eventTypes())
	assert.Len(t, publisher.events, 1)
}

func TestCartService_UpdateItemQuantity_ExceedsStock(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	productID := store.addProduct("Mug", 800, 5)
	svc, _ := newCartService(store)
	userID := newID()

	item, err := svc.AddItem(ctx, userID, productID, 3)
	require.NoError(t, err)

	_, err = svc.UpdateItemQuantity(ctx, userID, item.ID, 6)
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
	assert.Equal(t, "Insufficient stock. Only 5 items available", domain.ErrorMessage(err))
}

func TestCartService_UpdateItemQuantity_OtherUsersItem(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	productID := store.addProduct("Mug", 800, 10)
	svc, _ := newCartService(store)

	item, err := svc.AddItem(ctx, newID(), productID, 3)
	require.NoError(t, err)

	_, err = svc.UpdateItemQuantity(ctx, newID(), item.ID, 5)
	require.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCartService_RemoveItem(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	productID := store.addProduct("Mug", 800, 10)
	svc, publisher := newCartService(store)
	userID := newID()

	item, err := svc.AddItem(ctx, userID, productID, 4)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(ctx, userID, item.ID))
	assert.Empty(t, store.items)

	require.Equal(t, []string{"added", "removed"}, store.eventTypes())
	assert.Equal(t, int32(-4), store.events[1].QuantityChanged)
	assert.Equal(t, productID, store.events[1].ProductID)
	require.Len(t, publisher.events, 2)

	// Removed items can be added again fresh
	item, err = svc.AddItem(ctx, userID, productID, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), item.Quantity)
}

// ============================================================================
// Checkout
// ============================================================================

func TestCartService_Checkout(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	productID := store.addProduct("Mug", 800, 10)
	svc, publisher := newCartService(store)
	userID := newID()

	_, err := svc.AddItem(ctx, userID, productID, 2)
	require.NoError(t, err)

	cart, err := svc.Checkout(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.CartStatusPurchased, cart.Status)
	assert.True(t, cart.PurchasedAt.Valid)

	require.Equal(t, []string{"added", "purchased"}, store.eventTypes())
	purchase := store.events[1]
	assert.False(t, purchase.ProductID.Valid, "purchase events are cart-level")
	assert.Equal(t, int32(0), purchase.QuantityChanged)

	require.Len(t, publisher.events, 2)
	assert.Equal(t, domain.EventPurchased, publisher.events[1].EventType)
}

func TestCartService_Checkout_EmptyCart(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc, _ := newCartService(store)
	userID := newID()

	cart, err := svc.GetOrCreateActiveCart(ctx, userID)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, userID)
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, "active", store.carts[cart.ID].Status)
}

func TestCartService_Checkout_NoActiveCart(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc, _ := newCartService(store)

	_, err := svc.Checkout(ctx, newID())
	require.ErrorIs(t, err, ErrCartNotFound)
}

func TestCartService_Checkout_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	productID := store.addProduct("Mug", 800, 10)
	svc, _ := newCartService(store)
	userID := newID()

	_, err := svc.AddItem(ctx, userID, productID, 3)
	require.NoError(t, err)

	// Stock drops below the cart quantity between add and checkout
	store.setStock(productID, 1)

	_, err = svc.Checkout(ctx, userID)
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
	assert.Equal(t, "Insufficient stock for Mug. Only 1 items available", domain.ErrorMessage(err))

	// Failed checkout leaves the cart active with its items
	summary, err := svc.GetCartSummary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.CartStatusActive, summary.Cart.Status)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, int32(3), summary.Items[0].Quantity)
}

// ============================================================================
// Summary and totals
// ============================================================================

func TestCartService_GetCartSummary_Totals(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	beans := store.addProduct("Coffee Beans", 1000, 10)
	mug := store.addProduct("Mug", 500, 10)
	svc, _ := newCartService(store)
	userID := newID()

	_, err := svc.AddItem(ctx, userID, beans, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, userID, mug, 1)
	require.NoError(t, err)

	summary, err := svc.GetCartSummary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), summary.Totals.TotalPriceCents)
	assert.Equal(t, int32(3), summary.Totals.ItemsCount)
	assert.Equal(t, int32(2), summary.Totals.UniqueItems)
}

func TestCartService_GetOrCreateActiveCart_ReusesExisting(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc, _ := newCartService(store)
	userID := newID()

	first, err := svc.GetOrCreateActiveCart(ctx, userID)
	require.NoError(t, err)
	second, err := svc.GetOrCreateActiveCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}
