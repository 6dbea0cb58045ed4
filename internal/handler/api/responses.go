// Package api implements the JSON HTTP handlers for the REST surface.
package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/shoptrack/shoptrack/internal/domain"
)

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        uuidStr(u.ID),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Time,
	}
}

type productResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	PriceCents    int64     `json:"price_cents"`
	Category      string    `json:"category"`
	StockQuantity int32     `json:"stock_quantity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func newProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:            uuidStr(p.ID),
		Name:          p.Name,
		Description:   p.Description,
		PriceCents:    p.PriceCents,
		Category:      p.Category,
		StockQuantity: p.StockQuantity,
		CreatedAt:     p.CreatedAt.Time,
		UpdatedAt:     p.UpdatedAt.Time,
	}
}

type cartItemResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	PriceCents  int64     `json:"price_cents"`
	Quantity    int32     `json:"quantity"`
	AddedAt     time.Time `json:"added_at"`
}

func newCartItemResponse(item *domain.CartItem) cartItemResponse {
	return cartItemResponse{
		ID:          uuidStr(item.ID),
		ProductID:   uuidStr(item.ProductID),
		ProductName: item.ProductName,
		PriceCents:  item.PriceCents,
		Quantity:    item.Quantity,
		AddedAt:     item.AddedAt.Time,
	}
}

type cartTotalsResponse struct {
	TotalPriceCents int64 `json:"total_price_cents"`
	ItemsCount      int32 `json:"items_count"`
	UniqueItems     int32 `json:"unique_items"`
}

type cartResponse struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PurchasedAt *time.Time `json:"purchased_at,omitempty"`
}

func newCartResponse(c *domain.Cart) cartResponse {
	resp := cartResponse{
		ID:        uuidStr(c.ID),
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt.Time,
		UpdatedAt: c.UpdatedAt.Time,
	}
	if c.PurchasedAt.Valid {
		t := c.PurchasedAt.Time
		resp.PurchasedAt = &t
	}
	return resp
}

type cartSummaryResponse struct {
	Cart   cartResponse       `json:"cart"`
	Items  []cartItemResponse `json:"items"`
	Totals cartTotalsResponse `json:"totals"`
}

func newCartSummaryResponse(s *domain.CartSummary) cartSummaryResponse {
	items := make([]cartItemResponse, 0, len(s.Items))
	for i := range s.Items {
		items = append(items, newCartItemResponse(&s.Items[i]))
	}
	return cartSummaryResponse{
		Cart:  newCartResponse(&s.Cart),
		Items: items,
		Totals: cartTotalsResponse{
			TotalPriceCents: s.Totals.TotalPriceCents,
			ItemsCount:      s.Totals.ItemsCount,
			UniqueItems:     s.Totals.UniqueItems,
		},
	}
}

func uuidStr(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

func parseUUID(s string) (pgtype.UUID, bool) {
	u, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, false
	}
	return pgtype.UUID{Bytes: u, Valid: true}, true
}
