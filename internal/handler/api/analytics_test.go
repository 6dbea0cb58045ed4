package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoptrack/shoptrack/internal/domain"
)

type stubAnalyticsService struct {
	abandonmentRate func(ctx context.Context, days int) (*domain.AbandonmentRate, error)
	userBehavior    func(ctx context.Context, userID pgtype.UUID) (*domain.UserBehavior, error)
	productInsights func(ctx context.Context, productID pgtype.UUID) (*domain.ProductInsights, error)
	timeMetrics     func(ctx context.Context, days int) (*domain.TimeMetrics, error)
	dailyMetrics    func(ctx context.Context, date time.Time) (*domain.DailyMetrics, error)
	addedTogether   func(ctx context.Context, limit int32) ([]domain.ProductPair, error)
}

func (s *stubAnalyticsService) AbandonmentRate(ctx context.Context, days int) (*domain.AbandonmentRate, error) {
	return s.abandonmentRate(ctx, days)
}

func (s *stubAnalyticsService) UserBehavior(ctx context.Context, userID pgtype.UUID) (*domain.UserBehavior, error) {
	return s.userBehavior(ctx, userID)
}

func (s *stubAnalyticsService) ProductInsights(ctx context.Context, productID pgtype.UUID) (*domain.ProductInsights, error) {
	return s.productInsights(ctx, productID)
}

func (s *stubAnalyticsService) TimeMetrics(ctx context.Context, days int) (*domain.TimeMetrics, error) {
	return s.timeMetrics(ctx, days)
}

func (s *stubAnalyticsService) DailyMetrics(ctx context.Context, date time.Time) (*domain.DailyMetrics, error) {
	return s.dailyMetrics(ctx, date)
}

func (s *stubAnalyticsService) FrequentlyAddedTogether(ctx context.Context, limit int32) ([]domain.ProductPair, error) {
	return s.addedTogether(ctx, limit)
}

func TestAnalyticsHandler_AbandonmentRate(t *testing.T) {
	svc := &stubAnalyticsService{
		abandonmentRate: func(ctx context.Context, days int) (*domain.AbandonmentRate, error) {
			assert.Equal(t, 7, days)
			return &domain.AbandonmentRate{
				AbandonmentRate: 33.33,
				TimeframeDays:   days,
				TotalCarts:      3,
				AbandonedCarts:  1,
			}, nil
		},
	}
	h := NewAnalyticsHandler(svc, nil)

	rec := httptest.NewRecorder()
	h.AbandonmentRate(rec, authedRequest(http.MethodGet, "/api/analytics/abandonment-rate?days=7", "", uuidStr(testID()), "admin"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, 33.33, body["abandonment_rate"])
	assert.Equal(t, float64(3), body["total_carts"])
}

func TestAnalyticsHandler_AbandonmentRate_DefaultsTo30Days(t *testing.T) {
	svc := &stubAnalyticsService{
		abandonmentRate: func(ctx context.Context, days int) (*domain.AbandonmentRate, error) {
			assert.Equal(t, 30, days)
			return &domain.AbandonmentRate{TimeframeDays: days}, nil
		},
	}
	h := NewAnalyticsHandler(svc, nil)

	rec := httptest.NewRecorder()
	h.AbandonmentRate(rec, authedRequest(http.MethodGet, "/api/analytics/abandonment-rate", "", uuidStr(testID()), "admin"))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyticsHandler_AbandonmentRate_BadDays(t *testing.T) {
	h := NewAnalyticsHandler(&stubAnalyticsService{}, nil)

	rec := httptest.NewRecorder()
	h.AbandonmentRate(rec, authedRequest(http.MethodGet, "/api/analytics/abandonment-rate?days=abc", "", uuidStr(testID()), "admin"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsHandler_UserBehavior_Self(t *testing.T) {
	userID := testID()
	svc := &stubAnalyticsService{
		userBehavior: func(ctx context.Context, gotUser pgtype.UUID) (*domain.UserBehavior, error) {
			assert.Equal(t, userID, gotUser)
			return &domain.UserBehavior{
				UserID:       gotUser,
				TotalCarts:   4,
				PurchaseRate: 50,
			}, nil
		},
	}
	h := NewAnalyticsHandler(svc, nil)

	req := authedRequest(http.MethodGet, "/api/analytics/user-behavior/"+uuidStr(userID), "", uuidStr(userID), "customer")
	req.SetPathValue("userID", uuidStr(userID))
	rec := httptest.NewRecorder()
	h.UserBehavior(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(50), body["purchase_rate"])
	assert.Equal(t, uuidStr(userID), body["user_id"])
}

func TestAnalyticsHandler_UserBehavior_OtherUserForbidden(t *testing.T) {
	h := NewAnalyticsHandler(&stubAnalyticsService{}, nil)

	target := testID()
	req := authedRequest(http.MethodGet, "/api/analytics/user-behavior/"+uuidStr(target), "", uuidStr(testID()), "customer")
	req.SetPathValue("userID", uuidStr(target))
	rec := httptest.NewRecorder()
	h.UserBehavior(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	errBody := decodeBody(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, "forbidden", errBody["code"])
}

func TestAnalyticsHandler_UserBehavior_AdminMayReadAnyone(t *testing.T) {
	target := testID()
	svc := &stubAnalyticsService{
		userBehavior: func(ctx context.Context, gotUser pgtype.UUID) (*domain.UserBehavior, error) {
			return &domain.UserBehavior{UserID: gotUser}, nil
		},
	}
	h := NewAnalyticsHandler(svc, nil)

	req := authedRequest(http.MethodGet, "/api/analytics/user-behavior/"+uuidStr(target), "", uuidStr(testID()), "admin")
	req.SetPathValue("userID", uuidStr(target))
	rec := httptest.NewRecorder()
	h.UserBehavior(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyticsHandler_ProductInsights(t *testing.T) {
	productID := testID()
	svc := &stubAnalyticsService{
		productInsights: func(ctx context.Context, gotProduct pgtype.UUID) (*domain.ProductInsights, error) {
			assert.Equal(t, productID, gotProduct)
			return &domain.ProductInsights{
				ProductID:         gotProduct,
				TotalInteractions: 13,
				EventBreakdown: []domain.EventTypeCount{
					{EventType: domain.EventAdded, Count: 8},
					{EventType: domain.EventPurchased, Count: 2},
				},
				ConversionRate:   25,
				AbandonmentCount: 3,
			}, nil
		},
	}
	h := NewAnalyticsHandler(svc, nil)

	req := authedRequest(http.MethodGet, "/api/analytics/product-insights/"+uuidStr(productID), "", uuidStr(testID()), "customer")
	req.SetPathValue("productID", uuidStr(productID))
	rec := httptest.NewRecorder()
	h.ProductInsights(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	breakdown := body["event_breakdown"].(map[string]interface{})
	assert.Equal(t, float64(8), breakdown["added"])
	assert.Equal(t, float64(25), body["conversion_rate"])
	assert.Equal(t, float64(3), body["abandonment_count"])
}

func TestAnalyticsHandler_TimeMetrics_NullableMostActiveHour(t *testing.T) {
	svc := &stubAnalyticsService{
		timeMetrics: func(ctx context.Context, days int) (*domain.TimeMetrics, error) {
			return &domain.TimeMetrics{TimeframeDays: days}, nil
		},
	}
	h := NewAnalyticsHandler(svc, nil)

	rec := httptest.NewRecorder()
	h.TimeMetrics(rec, authedRequest(http.MethodGet, "/api/analytics/time-metrics", "", uuidStr(testID()), "customer"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Nil(t, body["most_active_hour"])
}

func TestAnalyticsHandler_DailyMetrics(t *testing.T) {
	svc := &stubAnalyticsService{
		dailyMetrics: func(ctx context.Context, date time.Time) (*domain.DailyMetrics, error) {
			assert.Equal(t, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), date)
			return &domain.DailyMetrics{Date: date, CompletedPurchases: 2}, nil
		},
	}
	h := NewAnalyticsHandler(svc, nil)

	rec := httptest.NewRecorder()
	h.DailyMetrics(rec, authedRequest(http.MethodGet, "/api/analytics/daily-metrics?date=2026-08-15", "", uuidStr(testID()), "customer"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "2026-08-15", body["date"])
	assert.Equal(t, float64(2), body["completed_purchases"])
}

func TestAnalyticsHandler_DailyMetrics_BadDate(t *testing.T) {
	h := NewAnalyticsHandler(&stubAnalyticsService{}, nil)

	rec := httptest.NewRecorder()
	h.DailyMetrics(rec, authedRequest(http.MethodGet, "/api/analytics/daily-metrics?date=15-08-2026", "", uuidStr(testID()), "customer"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsHandler_FrequentlyAddedTogether(t *testing.T) {
	svc := &stubAnalyticsService{
		addedTogether: func(ctx context.Context, limit int32) ([]domain.ProductPair, error) {
			assert.Equal(t, int32(5), limit)
			return []domain.ProductPair{
				{ProductAName: "Coffee Beans", ProductBName: "Mug", Frequency: 7},
			}, nil
		},
	}
	h := NewAnalyticsHandler(svc, nil)

	rec := httptest.NewRecorder()
	h.FrequentlyAddedTogether(rec, authedRequest(http.MethodGet, "/api/analytics/frequently-added-together?limit=5", "", uuidStr(testID()), "admin"))

	require.Equal(t, http.StatusOK, rec.Code)
	pairs := decodeBody(t, rec)["pairs"].([]interface{})
	require.Len(t, pairs, 1)
	assert.Equal(t, float64(7), pairs[0].(map[string]interface{})["frequency"])
}

func TestAnalyticsHandler_FrequentlyAddedTogether_BadLimit(t *testing.T) {
	h := NewAnalyticsHandler(&stubAnalyticsService{}, nil)

	rec := httptest.NewRecorder()
	h.FrequentlyAddedTogether(rec, authedRequest(http.MethodGet, "/api/analytics/frequently-added-together?limit=0", "", uuidStr(testID()), "admin"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
