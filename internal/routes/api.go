package routes

import (
	"github.com/shoptrack/shoptrack/internal/middleware"
	"github.com/shoptrack/shoptrack/internal/router"
)

// RegisterAPI wires the JSON API onto the router.
//
// Route tiers:
//   - public: auth endpoints (rate limited), catalog reads, probes
//   - auth:   cart mutation, profile, per-user analytics
//   - admin:  catalog writes, cross-user analytics
func RegisterAPI(r *router.Router, deps APIDeps) {
	requireAuth := middleware.RequireAuth(deps.TokenVerifier)

	// Probes and metrics
	r.Get("/healthz", deps.HealthHandler.Healthz)
	r.Handle("GET", "/metrics", deps.MetricsHandler)

	// Auth
	if deps.AuthRateLimit != nil {
		r.Post("/api/auth/register", deps.AuthHandler.Register, deps.AuthRateLimit)
		r.Post("/api/auth/login", deps.AuthHandler.Login, deps.AuthRateLimit)
	} else {
		r.Post("/api/auth/register", deps.AuthHandler.Register)
		r.Post("/api/auth/login", deps.AuthHandler.Login)
	}
	r.Post("/api/auth/refresh", deps.AuthHandler.Refresh)

	authed := r.Group(requireAuth)
	authed.Get("/api/auth/profile", deps.AuthHandler.Profile)
	authed.Put("/api/auth/profile", deps.AuthHandler.UpdateProfile)

	// Catalog
	r.Get("/api/products", deps.ProductHandler.List)
	r.Get("/api/products/{id}", deps.ProductHandler.Get)

	admin := r.Group(requireAuth, middleware.RequireAdmin)
	admin.Post("/api/products", deps.ProductHandler.Create)
	admin.Put("/api/products/{id}", deps.ProductHandler.Update)
	admin.Delete("/api/products/{id}", deps.ProductHandler.Delete)

	// Cart
	authed.Get("/api/carts", deps.CartHandler.Get)
	authed.Post("/api/carts/items", deps.CartHandler.AddItem)
	authed.Put("/api/carts/items/{id}", deps.CartHandler.UpdateItem)
	authed.Delete("/api/carts/items/{id}", deps.CartHandler.RemoveItem)
	authed.Post("/api/carts/checkout", deps.CartHandler.Checkout)

	// Analytics
	authed.Get("/api/analytics/abandonment-rate", deps.AnalyticsHandler.AbandonmentRate)
	authed.Get("/api/analytics/user-behavior/{userID}", deps.AnalyticsHandler.UserBehavior)
	authed.Get("/api/analytics/product-insights/{productID}", deps.AnalyticsHandler.ProductInsights)
	authed.Get("/api/analytics/time-metrics", deps.AnalyticsHandler.TimeMetrics)
	authed.Get("/api/analytics/daily-metrics", deps.AnalyticsHandler.DailyMetrics)
	admin.Get("/api/analytics/frequently-added-together", deps.AnalyticsHandler.FrequentlyAddedTogether)
}
