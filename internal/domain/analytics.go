package domain

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// AbandonmentRate reports cart abandonment over a trailing window.
type AbandonmentRate struct {
	AbandonmentRate float64
	TimeframeDays   int
	TotalCarts      int64
	AbandonedCarts  int64
}

// FavoriteProduct is a product ranked by a user's add/purchase interactions.
type FavoriteProduct struct {
	ProductID   pgtype.UUID
	ProductName string
	Count       int64
}

// UserBehavior aggregates a single user's cart history.
// Rates are percentages rounded to two decimals; zero denominators yield 0.
type UserBehavior struct {
	UserID            pgtype.UUID
	TotalCarts        int64
	PurchaseRate      float64
	AbandonmentRate   float64
	AverageCartValue  float64
	FavoriteProducts  []FavoriteProduct
	TotalInteractions int64
}

// EventTypeCount is one bucket of a per-product event breakdown.
type EventTypeCount struct {
	EventType EventType
	Count     int64
}

// ProductInsights aggregates event activity for a single product.
type ProductInsights struct {
	ProductID         pgtype.UUID
	TotalInteractions int64
	EventBreakdown    []EventTypeCount
	ConversionRate    float64
	RecentActivity    int64
	AbandonmentCount  int64
}

// DailyActivity is the event count for one calendar date.
type DailyActivity struct {
	Date  time.Time
	Count int64
}

// TimeMetrics aggregates event activity over a trailing window.
// MostActiveHour is nil when the window contains no events.
type TimeMetrics struct {
	TimeframeDays                 int
	TotalCarts                    int64
	TotalEvents                   int64
	AverageSessionDurationSeconds float64
	DailyActivity                 []DailyActivity
	MostActiveHour                *int
}

// DailyMetrics summarizes a single calendar day.
// NewUsers is not computed and always reports 0; user registration dates are
// not part of the event log.
type DailyMetrics struct {
	Date               time.Time
	ActiveCarts        int64
	CompletedPurchases int64
	AbandonedCarts     int64
	TotalEvents        int64
	NewUsers           int64
}

// ProductPair is a co-occurrence of two distinct products in the same cart,
// canonicalized so ProductA sorts before ProductB by id.
type ProductPair struct {
	ProductAID   pgtype.UUID
	ProductAName string
	ProductBID   pgtype.UUID
	ProductBName string
	Frequency    int64
}

// AnalyticsService provides read-only aggregation over carts and the event
// log. It never mutates state; results are best effort as of query time and
// are not required to be point-in-time consistent across queries.
type AnalyticsService interface {
	// AbandonmentRate computes abandoned/total carts created within the
	// trailing window, as a percentage rounded to two decimals. Returns a
	// zero rate, not an error, when no carts exist in the window.
	AbandonmentRate(ctx context.Context, days int) (*AbandonmentRate, error)

	// UserBehavior aggregates purchase/abandonment rates, average purchased
	// cart value, top-5 favorite products, and total interactions for a user.
	UserBehavior(ctx context.Context, userID pgtype.UUID) (*UserBehavior, error)

	// ProductInsights aggregates the event breakdown, added-to-purchased
	// conversion rate, trailing-30-day activity, and abandonment count for a
	// product.
	ProductInsights(ctx context.Context, productID pgtype.UUID) (*ProductInsights, error)

	// TimeMetrics aggregates session durations, daily activity, and the most
	// active hour over a trailing window.
	TimeMetrics(ctx context.Context, days int) (*TimeMetrics, error)

	// DailyMetrics summarizes cart and event counts for one calendar day.
	DailyMetrics(ctx context.Context, date time.Time) (*DailyMetrics, error)

	// FrequentlyAddedTogether ranks product pairs by co-occurrence within the
	// same cart, descending, top limit pairs.
	FrequentlyAddedTogether(ctx context.Context, limit int32) ([]ProductPair, error)
}
