package api

import (
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/shoptrack/shoptrack/internal/domain"
	"github.com/shoptrack/shoptrack/internal/handler"
	"github.com/shoptrack/shoptrack/internal/middleware"
)

// CartHandler handles the authenticated cart surface.
type CartHandler struct {
	carts  domain.CartService
	logger *slog.Logger
}

func NewCartHandler(carts domain.CartService, logger *slog.Logger) *CartHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartHandler{
		carts:  carts,
		logger: logger,
	}
}

// Get handles GET /api/carts — the caller's active cart with items and
// totals, created lazily on first access.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		handler.ErrorResponse(w, r, domain.Unauthorized("cart.get", "Authentication required"))
		return
	}

	summary, err := h.carts.GetCartSummary(r.Context(), userID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, newCartSummaryResponse(summary))
}

// AddItem handles POST /api/carts/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		handler.ErrorResponse(w, r, domain.Unauthorized("cart.add_item", "Authentication required"))
		return
	}

	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int32  `json:"quantity"`
	}
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	productID, ok := parseUUID(req.ProductID)
	if !ok {
		handler.ErrorResponse(w, r, domain.Invalid("cart.add_item", "Invalid product ID"))
		return
	}

	item, err := h.carts.AddItem(r.Context(), userID, productID, req.Quantity)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusCreated, newCartItemResponse(item))
}

// UpdateItem handles PUT /api/carts/items/{id}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		handler.ErrorResponse(w, r, domain.Unauthorized("cart.update_item", "Authentication required"))
		return
	}

	itemID, ok := parseUUID(r.PathValue("id"))
	if !ok {
		handler.ErrorResponse(w, r, domain.Invalid("cart.update_item", "Invalid cart item ID"))
		return
	}

	var req struct {
		Quantity int32 `json:"quantity"`
	}
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	item, err := h.carts.UpdateItemQuantity(r.Context(), userID, itemID, req.Quantity)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, newCartItemResponse(item))
}

// RemoveItem handles DELETE /api/carts/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		handler.ErrorResponse(w, r, domain.Unauthorized("cart.remove_item", "Authentication required"))
		return
	}

	itemID, ok := parseUUID(r.PathValue("id"))
	if !ok {
		handler.ErrorResponse(w, r, domain.Invalid("cart.remove_item", "Invalid cart item ID"))
		return
	}

	if err := h.carts.RemoveItem(r.Context(), userID, itemID); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Checkout handles POST /api/carts/checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		handler.ErrorResponse(w, r, domain.Unauthorized("cart.checkout", "Authentication required"))
		return
	}

	cart, err := h.carts.Checkout(r.Context(), userID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, newCartResponse(cart))
}

func callerID(r *http.Request) (pgtype.UUID, bool) {
	return parseUUID(middleware.GetUserID(r.Context()))
}
