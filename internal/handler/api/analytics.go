package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shoptrack/shoptrack/internal/domain"
	"github.com/shoptrack/shoptrack/internal/handler"
	"github.com/shoptrack/shoptrack/internal/middleware"
)

const (
	defaultTimeframeDays = 30
	defaultPairLimit     = 10
)

// AnalyticsHandler exposes the read-only analytics queries. Per-user figures
// are visible to the user themselves and to admins; cross-user reports are
// admin only (enforced at route registration).
type AnalyticsHandler struct {
	analytics domain.AnalyticsService
	logger    *slog.Logger
}

func NewAnalyticsHandler(analytics domain.AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsHandler{
		analytics: analytics,
		logger:    logger,
	}
}

// AbandonmentRate handles GET /api/analytics/abandonment-rate?days=30
func (h *AnalyticsHandler) AbandonmentRate(w http.ResponseWriter, r *http.Request) {
	days, err := queryDays(r, defaultTimeframeDays)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	result, err := h.analytics.AbandonmentRate(r.Context(), days)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, map[string]interface{}{
		"abandonment_rate": result.AbandonmentRate,
		"timeframe_days":   result.TimeframeDays,
		"total_carts":      result.TotalCarts,
		"abandoned_carts":  result.AbandonedCarts,
	})
}

// UserBehavior handles GET /api/analytics/user-behavior/{userID}.
// Callers may read their own figures; admins may read anyone's.
func (h *AnalyticsHandler) UserBehavior(w http.ResponseWriter, r *http.Request) {
	const op = "analytics.user_behavior"

	targetID, ok := parseUUID(r.PathValue("userID"))
	if !ok {
		handler.ErrorResponse(w, r, domain.Invalid(op, "Invalid user ID"))
		return
	}

	caller := middleware.GetUserID(r.Context())
	if caller != uuidStr(targetID) && !middleware.IsAdmin(r.Context()) {
		handler.ErrorResponse(w, r, domain.Forbidden(op, "Cannot access another user's analytics"))
		return
	}

	behavior, err := h.analytics.UserBehavior(r.Context(), targetID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	favorites := make([]map[string]interface{}, 0, len(behavior.FavoriteProducts))
	for _, fav := range behavior.FavoriteProducts {
		favorites = append(favorites, map[string]interface{}{
			"product_id":   uuidStr(fav.ProductID),
			"product_name": fav.ProductName,
			"count":        fav.Count,
		})
	}

	handler.JSON(w, http.StatusOK, map[string]interface{}{
		"user_id":            uuidStr(behavior.UserID),
		"total_carts":        behavior.TotalCarts,
		"purchase_rate":      behavior.PurchaseRate,
		"abandonment_rate":   behavior.AbandonmentRate,
		"average_cart_value": behavior.AverageCartValue,
		"favorite_products":  favorites,
		"total_interactions": behavior.TotalInteractions,
	})
}

// ProductInsights handles GET /api/analytics/product-insights/{productID}
func (h *AnalyticsHandler) ProductInsights(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseUUID(r.PathValue("productID"))
	if !ok {
		handler.ErrorResponse(w, r, domain.Invalid("analytics.product_insights", "Invalid product ID"))
		return
	}

	insights, err := h.analytics.ProductInsights(r.Context(), productID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	breakdown := make(map[string]int64, len(insights.EventBreakdown))
	for _, bucket := range insights.EventBreakdown {
		breakdown[string(bucket.EventType)] = bucket.Count
	}

	handler.JSON(w, http.StatusOK, map[string]interface{}{
		"product_id":         uuidStr(insights.ProductID),
		"total_interactions": insights.TotalInteractions,
		"event_breakdown":    breakdown,
		"conversion_rate":    insights.ConversionRate,
		"recent_activity":    insights.RecentActivity,
		"abandonment_count":  insights.AbandonmentCount,
	})
}

// TimeMetrics handles GET /api/analytics/time-metrics?days=30
func (h *AnalyticsHandler) TimeMetrics(w http.ResponseWriter, r *http.Request) {
	days, err := queryDays(r, defaultTimeframeDays)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	metrics, err := h.analytics.TimeMetrics(r.Context(), days)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	daily := make([]map[string]interface{}, 0, len(metrics.DailyActivity))
	for _, day := range metrics.DailyActivity {
		daily = append(daily, map[string]interface{}{
			"date":  day.Date.Format("2006-01-02"),
			"count": day.Count,
		})
	}

	handler.JSON(w, http.StatusOK, map[string]interface{}{
		"timeframe_days":                   metrics.TimeframeDays,
		"total_carts":                      metrics.TotalCarts,
		"total_events":                     metrics.TotalEvents,
		"average_session_duration_seconds": metrics.AverageSessionDurationSeconds,
		"daily_activity":                   daily,
		"most_active_hour":                 metrics.MostActiveHour,
	})
}

// DailyMetrics handles GET /api/analytics/daily-metrics?date=YYYY-MM-DD.
// Date defaults to today.
func (h *AnalyticsHandler) DailyMetrics(w http.ResponseWriter, r *http.Request) {
	date := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			handler.ErrorResponse(w, r, domain.Invalid("analytics.daily_metrics", "Date must be YYYY-MM-DD"))
			return
		}
		date = parsed
	}

	metrics, err := h.analytics.DailyMetrics(r.Context(), date)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, map[string]interface{}{
		"date":                metrics.Date.Format("2006-01-02"),
		"active_carts":        metrics.ActiveCarts,
		"completed_purchases": metrics.CompletedPurchases,
		"abandoned_carts":     metrics.AbandonedCarts,
		"total_events":        metrics.TotalEvents,
		"new_users":           metrics.NewUsers,
	})
}

// FrequentlyAddedTogether handles GET
// /api/analytics/frequently-added-together?limit=10 (admin)
func (h *AnalyticsHandler) FrequentlyAddedTogether(w http.ResponseWriter, r *http.Request) {
	const op = "analytics.frequently_added_together"

	limit := int32(defaultPairLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed < 1 {
			handler.ErrorResponse(w, r, domain.Invalid(op, "Limit must be a positive integer"))
			return
		}
		limit = int32(parsed)
	}

	pairs, err := h.analytics.FrequentlyAddedTogether(r.Context(), limit)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	resp := make([]map[string]interface{}, 0, len(pairs))
	for _, pair := range pairs {
		resp = append(resp, map[string]interface{}{
			"product_a_id":   uuidStr(pair.ProductAID),
			"product_a_name": pair.ProductAName,
			"product_b_id":   uuidStr(pair.ProductBID),
			"product_b_name": pair.ProductBName,
			"frequency":      pair.Frequency,
		})
	}
	handler.JSON(w, http.StatusOK, map[string]interface{}{"pairs": resp})
}

func queryDays(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return fallback, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 {
		return 0, domain.Invalid("analytics", "Days must be a positive integer")
	}
	return days, nil
}
