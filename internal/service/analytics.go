package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/shoptrack/shoptrack/internal/domain"
	"github.com/shoptrack/shoptrack/internal/repository"
)

const favoriteProductsLimit = 5

// AnalyticsService aggregates carts and the event log into reporting figures.
// All operations are pure reads; results are best effort as of query time.
type AnalyticsService struct {
	store  Datastore
	logger *slog.Logger
}

func NewAnalyticsService(store Datastore, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		store:  store,
		logger: logger,
	}
}

var _ domain.AnalyticsService = (*AnalyticsService)(nil)

// AbandonmentRate reports abandoned/total carts created within the trailing
// window as a percentage. Zero carts in the window yields a zero rate.
func (s *AnalyticsService) AbandonmentRate(ctx context.Context, days int) (*domain.AbandonmentRate, error) {
	const op = "analytics.abandonment_rate"

	if days < 1 {
		return nil, domain.Invalid(op, "Days must be at least 1")
	}
	since := windowStart(days)

	total, err := s.store.CountCartsCreatedSince(ctx, since)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to count carts")
	}
	abandoned, err := s.store.CountCartsCreatedSinceByStatus(ctx, repository.CountCartsCreatedSinceByStatusParams{
		Since:  since,
		Status: string(domain.CartStatusAbandoned),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to count abandoned carts")
	}

	return &domain.AbandonmentRate{
		AbandonmentRate: rate(abandoned, total),
		TimeframeDays:   days,
		TotalCarts:      total,
		AbandonedCarts:  abandoned,
	}, nil
}

// UserBehavior aggregates purchase and abandonment rates, average purchased
// cart value, top favorite products, and total interactions for one user.
func (s *AnalyticsService) UserBehavior(ctx context.Context, userID pgtype.UUID) (*domain.UserBehavior, error) {
	const op = "analytics.user_behavior"

	total, err := s.store.CountCartsByUser(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to count carts")
	}
	purchased, err := s.store.CountCartsByUserAndStatus(ctx, repository.CountCartsByUserAndStatusParams{
		UserID: userID,
		Status: string(domain.CartStatusPurchased),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to count purchased carts")
	}
	abandoned, err := s.store.CountCartsByUserAndStatus(ctx, repository.CountCartsByUserAndStatusParams{
		UserID: userID,
		Status: string(domain.CartStatusAbandoned),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to count abandoned carts")
	}

	values, err := s.store.ListPurchasedCartValues(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to list purchased cart values")
	}
	var avgValue float64
	if len(values) > 0 {
		var sum int64
		for _, v := range values {
			sum += v
		}
		avgValue = round2(float64(sum) / float64(len(values)))
	}

	favRows, err := s.store.ListFavoriteProducts(ctx, repository.ListFavoriteProductsParams{
		UserID: userID,
		Limit:  favoriteProductsLimit,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to list favorite products")
	}
	favorites := make([]domain.FavoriteProduct, 0, len(favRows))
	for _, row := range favRows {
		favorites = append(favorites, domain.FavoriteProduct{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Count:       row.Count,
		})
	}

	interactions, err := s.store.CountEventsByUser(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to count events")
	}

	return &domain.UserBehavior{
		UserID:            userID,
		TotalCarts:        total,
		PurchaseRate:      rate(purchased, total),
		AbandonmentRate:   rate(abandoned, total),
		AverageCartValue:  avgValue,
		FavoriteProducts:  favorites,
		TotalInteractions: interactions,
	}, nil
}

// ProductInsights aggregates the per-type event breakdown, added-to-purchased
// conversion rate, trailing 30 day activity, and abandonment count for one
// product.
func (s *AnalyticsService) ProductInsights(ctx context.Context, productID pgtype.UUID) (*domain.ProductInsights, error) {
	const op = "analytics.product_insights"

	breakdownRows, err := s.store.ListEventTypeCounts(ctx, productID)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to load event breakdown")
	}

	var (
		breakdown      []domain.EventTypeCount
		addedCount     int64
		purchasedCount int64
		abandonedCount int64
	)
	for _, row := range breakdownRows {
		breakdown = append(breakdown, domain.EventTypeCount{
			EventType: domain.EventType(row.EventType),
			Count:     row.Count,
		})
		switch domain.EventType(row.EventType) {
		case domain.EventAdded:
			addedCount = row.Count
		case domain.EventPurchased:
			purchasedCount = row.Count
		case domain.EventAbandoned:
			abandonedCount = row.Count
		}
	}

	total, err := s.store.CountEventsByProduct(ctx, productID)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to count events")
	}
	recent, err := s.store.CountRecentEventsByProduct(ctx, repository.CountRecentEventsByProductParams{
		ProductID: productID,
		Since:     windowStart(30),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to count recent events")
	}

	return &domain.ProductInsights{
		ProductID:         productID,
		TotalInteractions: total,
		EventBreakdown:    breakdown,
		ConversionRate:    rate(purchasedCount, addedCount),
		RecentActivity:    recent,
		AbandonmentCount:  abandonedCount,
	}, nil
}

// TimeMetrics aggregates session durations, daily activity, and the most
// active hour over a trailing window. MostActiveHour is nil when the window
// holds no events.
func (s *AnalyticsService) TimeMetrics(ctx context.Context, days int) (*domain.TimeMetrics, error) {
	const op = "analytics.time_metrics"

	if days < 1 {
		return nil, domain.Invalid(op, "Days must be at least 1")
	}
	since := windowStart(days)

	totalCarts, err := s.store.CountCartsCreatedSince(ctx, since)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to count carts")
	}
	totalEvents, err := s.store.CountEventsSince(ctx, since)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to count events")
	}

	durations, err := s.store.ListCartSessionDurations(ctx, since)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to load session durations")
	}
	var avgDuration float64
	if len(durations) > 0 {
		var sum float64
		for _, d := range durations {
			sum += d
		}
		avgDuration = round2(sum / float64(len(durations)))
	}

	dailyRows, err := s.store.ListDailyEventCounts(ctx, since)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to load daily activity")
	}
	daily := make([]domain.DailyActivity, 0, len(dailyRows))
	for _, row := range dailyRows {
		daily = append(daily, domain.DailyActivity{
			Date:  row.Date.Time,
			Count: row.Count,
		})
	}

	var mostActiveHour *int
	hourRow, err := s.store.GetMostActiveHour(ctx, since)
	switch {
	case err == nil:
		h := int(hourRow.Hour)
		mostActiveHour = &h
	case errors.Is(err, pgx.ErrNoRows):
		// no events in the window
	default:
		return nil, domain.Internal(err, op, "Failed to load most active hour")
	}

	return &domain.TimeMetrics{
		TimeframeDays:                 days,
		TotalCarts:                    totalCarts,
		TotalEvents:                   totalEvents,
		AverageSessionDurationSeconds: avgDuration,
		DailyActivity:                 daily,
		MostActiveHour:                mostActiveHour,
	}, nil
}

// DailyMetrics summarizes cart and event counts within [date 00:00, date+1
// 00:00) in UTC. NewUsers is always 0; registrations are not in the event log.
func (s *AnalyticsService) DailyMetrics(ctx context.Context, date time.Time) (*domain.DailyMetrics, error) {
	const op = "analytics.daily_metrics"

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)
	start := pgtype.Timestamptz{Time: dayStart, Valid: true}
	end := pgtype.Timestamptz{Time: dayEnd, Valid: true}

	countByStatus := func(status domain.CartStatus) (int64, error) {
		return s.store.CountCartsBetweenByStatus(ctx, repository.CountCartsBetweenByStatusParams{
			Start:  start,
			End:    end,
			Status: string(status),
		})
	}

	active, err := countByStatus(domain.CartStatusActive)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to count active carts")
	}
	purchasedCount, err := countByStatus(domain.CartStatusPurchased)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to count purchased carts")
	}
	abandonedCount, err := countByStatus(domain.CartStatusAbandoned)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to count abandoned carts")
	}
	totalEvents, err := s.store.CountEventsBetween(ctx, repository.CountEventsBetweenParams{
		Start: start,
		End:   end,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to count events")
	}

	return &domain.DailyMetrics{
		Date:               dayStart,
		ActiveCarts:        active,
		CompletedPurchases: purchasedCount,
		AbandonedCarts:     abandonedCount,
		TotalEvents:        totalEvents,
		NewUsers:           0,
	}, nil
}

// FrequentlyAddedTogether ranks product pairs by co-occurrence within the
// same cart, descending.
func (s *AnalyticsService) FrequentlyAddedTogether(ctx context.Context, limit int32) ([]domain.ProductPair, error) {
	const op = "analytics.frequently_added_together"

	if limit < 1 {
		return nil, domain.Invalid(op, "Limit must be at least 1")
	}

	rows, err := s.store.ListProductPairs(ctx, limit)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to load product pairs")
	}

	pairs := make([]domain.ProductPair, 0, len(rows))
	for _, row := range rows {
		pairs = append(pairs, domain.ProductPair{
			ProductAID:   row.ProductAID,
			ProductAName: row.ProductAName,
			ProductBID:   row.ProductBID,
			ProductBName: row.ProductBName,
			Frequency:    row.Frequency,
		})
	}
	return pairs, nil
}

// rate is part/whole as a percentage rounded to two decimals, 0 when whole
// is 0.
func rate(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return round2(float64(part) / float64(whole) * 100)
}

func windowStart(days int) pgtype.Timestamptz {
	return pgtype.Timestamptz{
		Time:  time.Now().AddDate(0, 0, -days),
		Valid: true,
	}
}
