package api

import (
	"log/slog"
	"net/http"

	"github.com/shoptrack/shoptrack/internal/domain"
	"github.com/shoptrack/shoptrack/internal/handler"
)

// ProductHandler handles catalog reads and admin catalog management.
type ProductHandler struct {
	products domain.ProductService
	logger   *slog.Logger
}

func NewProductHandler(products domain.ProductService, logger *slog.Logger) *ProductHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductHandler{
		products: products,
		logger:   logger,
	}
}

// List handles GET /api/products?category=&search=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter domain.ProductFilter
	if category := r.URL.Query().Get("category"); category != "" {
		filter.Category = &category
	}
	if search := r.URL.Query().Get("search"); search != "" {
		filter.Search = &search
	}

	products, err := h.products.ListProducts(r.Context(), filter)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	resp := make([]productResponse, 0, len(products))
	for i := range products {
		resp = append(resp, newProductResponse(&products[i]))
	}
	handler.JSON(w, http.StatusOK, map[string]interface{}{"products": resp})
}

// Get handles GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(r.PathValue("id"))
	if !ok {
		handler.ErrorResponse(w, r, domain.Invalid("product.get", "Invalid product ID"))
		return
	}

	product, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, newProductResponse(product))
}

// Create handles POST /api/products (admin)
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string `json:"name"`
		Description   string `json:"description"`
		PriceCents    int64  `json:"price_cents"`
		Category      string `json:"category"`
		StockQuantity int32  `json:"stock_quantity"`
	}
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	product, err := h.products.CreateProduct(r.Context(), domain.CreateProductParams{
		Name:          req.Name,
		Description:   req.Description,
		PriceCents:    req.PriceCents,
		Category:      req.Category,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusCreated, newProductResponse(product))
}

// Update handles PUT /api/products/{id} (admin)
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(r.PathValue("id"))
	if !ok {
		handler.ErrorResponse(w, r, domain.Invalid("product.update", "Invalid product ID"))
		return
	}

	var req struct {
		Name          *string `json:"name"`
		Description   *string `json:"description"`
		PriceCents    *int64  `json:"price_cents"`
		Category      *string `json:"category"`
		StockQuantity *int32  `json:"stock_quantity"`
	}
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	product, err := h.products.UpdateProduct(r.Context(), id, domain.UpdateProductParams{
		Name:          req.Name,
		Description:   req.Description,
		PriceCents:    req.PriceCents,
		Category:      req.Category,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, newProductResponse(product))
}

// Delete handles DELETE /api/products/{id} (admin)
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(r.PathValue("id"))
	if !ok {
		handler.ErrorResponse(w, r, domain.Invalid("product.delete", "Invalid product ID"))
		return
	}

	if err := h.products.DeleteProduct(r.Context(), id); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
