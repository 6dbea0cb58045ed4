package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoptrack/shoptrack/internal/domain"
	"github.com/shoptrack/shoptrack/internal/middleware"
)

// stubCartService answers with canned values via function fields; anything
// without a field set fails loudly.
type stubCartService struct {
	summary    func(ctx context.Context, userID pgtype.UUID) (*domain.CartSummary, error)
	addItem    func(ctx context.Context, userID, productID pgtype.UUID, quantity int32) (*domain.CartItem, error)
	updateItem func(ctx context.Context, userID, itemID pgtype.UUID, quantity int32) (*domain.CartItem, error)
	removeItem func(ctx context.Context, userID, itemID pgtype.UUID) error
	checkout   func(ctx context.Context, userID pgtype.UUID) (*domain.Cart, error)
}

func (s *stubCartService) GetOrCreateActiveCart(ctx context.Context, userID pgtype.UUID) (*domain.Cart, error) {
	return nil, errors.New("not implemented in stub")
}

func (s *stubCartService) GetCartSummary(ctx context.Context, userID pgtype.UUID) (*domain.CartSummary, error) {
	return s.summary(ctx, userID)
}

func (s *stubCartService) AddItem(ctx context.Context, userID, productID pgtype.UUID, quantity int32) (*domain.CartItem, error) {
	return s.addItem(ctx, userID, productID, quantity)
}

func (s *stubCartService) UpdateItemQuantity(ctx context.Context, userID, itemID pgtype.UUID, quantity int32) (*domain.CartItem, error) {
	return s.updateItem(ctx, userID, itemID, quantity)
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, itemID pgtype.UUID) error {
	return s.removeItem(ctx, userID, itemID)
}

func (s *stubCartService) Checkout(ctx context.Context, userID pgtype.UUID) (*domain.Cart, error) {
	return s.checkout(ctx, userID)
}

func (s *stubCartService) CartTotals(ctx context.Context, cartID pgtype.UUID) (*domain.CartTotals, error) {
	return nil, errors.New("not implemented in stub")
}

func testID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}

// authedRequest builds a JSON request carrying an authenticated user context.
func authedRequest(method, target, body, userID, role string) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	ctx := context.WithValue(req.Context(), middleware.UserIDContextKey, userID)
	ctx = context.WithValue(ctx, middleware.RoleContextKey, role)
	return req.WithContext(ctx)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCartHandler_Get(t *testing.T) {
	userID := testID()
	svc := &stubCartService{
		summary: func(ctx context.Context, gotUser pgtype.UUID) (*domain.CartSummary, error) {
			assert.Equal(t, userID, gotUser)
			return &domain.CartSummary{
				Cart: domain.Cart{ID: testID(), UserID: gotUser, Status: domain.CartStatusActive},
				Items: []domain.CartItem{
					{ID: testID(), ProductName: "Mug", PriceCents: 800, Quantity: 2},
				},
				Totals: domain.CartTotals{TotalPriceCents: 1600, ItemsCount: 2, UniqueItems: 1},
			}, nil
		},
	}
	h := NewCartHandler(svc, nil)

	rec := httptest.NewRecorder()
	h.Get(rec, authedRequest(http.MethodGet, "/api/carts", "", uuidStr(userID), "customer"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	totals := body["totals"].(map[string]interface{})
	assert.Equal(t, float64(1600), totals["total_price_cents"])
	assert.Equal(t, "active", body["cart"].(map[string]interface{})["status"])
}

func TestCartHandler_Get_Unauthenticated(t *testing.T) {
	h := NewCartHandler(&stubCartService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/carts", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartHandler_AddItem(t *testing.T) {
	userID := testID()
	productID := testID()
	svc := &stubCartService{
		addItem: func(ctx context.Context, gotUser, gotProduct pgtype.UUID, quantity int32) (*domain.CartItem, error) {
			assert.Equal(t, userID, gotUser)
			assert.Equal(t, productID, gotProduct)
			assert.Equal(t, int32(3), quantity)
			return &domain.CartItem{
				ID:          testID(),
				ProductID:   gotProduct,
				ProductName: "Mug",
				PriceCents:  800,
				Quantity:    quantity,
			}, nil
		},
	}
	h := NewCartHandler(svc, nil)

	body := `{"product_id":"` + uuidStr(productID) + `","quantity":3}`
	rec := httptest.NewRecorder()
	h.AddItem(rec, authedRequest(http.MethodPost, "/api/carts/items", body, uuidStr(userID), "customer"))

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "Mug", resp["product_name"])
	assert.Equal(t, float64(3), resp["quantity"])
}

func TestCartHandler_AddItem_InvalidProductID(t *testing.T) {
	h := NewCartHandler(&stubCartService{}, nil)

	rec := httptest.NewRecorder()
	h.AddItem(rec, authedRequest(http.MethodPost, "/api/carts/items", `{"product_id":"nope","quantity":1}`, uuidStr(testID()), "customer"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := decodeBody(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, "invalid", errBody["code"])
}

func TestCartHandler_AddItem_InsufficientStock(t *testing.T) {
	svc := &stubCartService{
		addItem: func(ctx context.Context, userID, productID pgtype.UUID, quantity int32) (*domain.CartItem, error) {
			return nil, domain.Errorf(domain.ECONFLICT, "cart.add_item", "Insufficient stock. Only 2 items available")
		},
	}
	h := NewCartHandler(svc, nil)

	body := `{"product_id":"` + uuidStr(testID()) + `","quantity":5}`
	rec := httptest.NewRecorder()
	h.AddItem(rec, authedRequest(http.MethodPost, "/api/carts/items", body, uuidStr(testID()), "customer"))

	require.Equal(t, http.StatusConflict, rec.Code)
	errBody := decodeBody(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, "conflict", errBody["code"])
	assert.Equal(t, "Insufficient stock. Only 2 items available", errBody["message"])
}

func TestCartHandler_UpdateItem(t *testing.T) {
	itemID := testID()
	svc := &stubCartService{
		updateItem: func(ctx context.Context, userID, gotItem pgtype.UUID, quantity int32) (*domain.CartItem, error) {
			assert.Equal(t, itemID, gotItem)
			return &domain.CartItem{ID: gotItem, Quantity: quantity}, nil
		},
	}
	h := NewCartHandler(svc, nil)

	req := authedRequest(http.MethodPut, "/api/carts/items/"+uuidStr(itemID), `{"quantity":4}`, uuidStr(testID()), "customer")
	req.SetPathValue("id", uuidStr(itemID))
	rec := httptest.NewRecorder()
	h.UpdateItem(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(4), decodeBody(t, rec)["quantity"])
}

func TestCartHandler_RemoveItem(t *testing.T) {
	itemID := testID()
	svc := &stubCartService{
		removeItem: func(ctx context.Context, userID, gotItem pgtype.UUID) error {
			assert.Equal(t, itemID, gotItem)
			return nil
		},
	}
	h := NewCartHandler(svc, nil)

	req := authedRequest(http.MethodDelete, "/api/carts/items/"+uuidStr(itemID), "", uuidStr(testID()), "customer")
	req.SetPathValue("id", uuidStr(itemID))
	rec := httptest.NewRecorder()
	h.RemoveItem(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCartHandler_Checkout(t *testing.T) {
	svc := &stubCartService{
		checkout: func(ctx context.Context, userID pgtype.UUID) (*domain.Cart, error) {
			return &domain.Cart{
				ID:          testID(),
				UserID:      userID,
				Status:      domain.CartStatusPurchased,
				PurchasedAt: pgtype.Timestamptz{Time: time.Now(), Valid: true},
			}, nil
		},
	}
	h := NewCartHandler(svc, nil)

	rec := httptest.NewRecorder()
	h.Checkout(rec, authedRequest(http.MethodPost, "/api/carts/checkout", "", uuidStr(testID()), "customer"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "purchased", body["status"])
	assert.NotEmpty(t, body["purchased_at"])
}

func TestCartHandler_Checkout_EmptyCart(t *testing.T) {
	svc := &stubCartService{
		checkout: func(ctx context.Context, userID pgtype.UUID) (*domain.Cart, error) {
			return nil, domain.Errorf(domain.EINVALID, "cart.checkout", "Cart is empty")
		},
	}
	h := NewCartHandler(svc, nil)

	rec := httptest.NewRecorder()
	h.Checkout(rec, authedRequest(http.MethodPost, "/api/carts/checkout", "", uuidStr(testID()), "customer"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := decodeBody(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, "Cart is empty", errBody["message"])
}
