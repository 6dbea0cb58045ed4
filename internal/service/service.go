// Package service implements the application's business logic on top of the
// repository layer. Each service takes a Datastore and a logger; mutating
// operations run inside a single transaction via ExecTx.
package service

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/shoptrack/shoptrack/internal/domain"
	"github.com/shoptrack/shoptrack/internal/repository"
)

// Datastore is the persistence surface services depend on. *repository.Store
// satisfies it; tests substitute an in-memory double.
type Datastore interface {
	repository.Querier

	// ExecTx runs fn inside a single transaction.
	ExecTx(ctx context.Context, fn func(repository.Querier) error) error
}

var _ Datastore = (*repository.Store)(nil)

// round2 rounds to two decimal places. All percentage and average figures in
// analytics responses use this.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func userFromRow(row repository.User) *domain.User {
	return &domain.User{
		ID:        row.ID,
		Email:     row.Email,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Role:      domain.UserRole(row.Role),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func productFromRow(row repository.Product) *domain.Product {
	return &domain.Product{
		ID:            row.ID,
		Name:          row.Name,
		Description:   row.Description,
		PriceCents:    row.PriceCents,
		Category:      row.Category,
		StockQuantity: row.StockQuantity,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func cartFromRow(row repository.Cart) *domain.Cart {
	return &domain.Cart{
		ID:          row.ID,
		UserID:      row.UserID,
		Status:      domain.CartStatus(row.Status),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		AbandonedAt: row.AbandonedAt,
		PurchasedAt: row.PurchasedAt,
	}
}

func eventFromRow(row repository.CartEvent) domain.CartEvent {
	return domain.CartEvent{
		ID:                     row.ID,
		CartID:                 row.CartID,
		UserID:                 row.UserID,
		ProductID:              row.ProductID,
		EventType:              domain.EventType(row.EventType),
		QuantityChanged:        row.QuantityChanged,
		Timestamp:              row.Timestamp,
		SessionDurationSeconds: row.SessionDurationSeconds,
	}
}

func parseUUID(s string) (pgtype.UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, err
	}
	return pgtype.UUID{Bytes: u, Valid: true}, nil
}

func uuidString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

func textOrNull(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}
