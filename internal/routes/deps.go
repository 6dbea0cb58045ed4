// Package routes binds handlers to URL patterns with their middleware tiers.
package routes

import (
	"net/http"

	"github.com/shoptrack/shoptrack/internal/handler/api"
	"github.com/shoptrack/shoptrack/internal/middleware"
)

// APIDeps contains dependencies for the JSON API routes
type APIDeps struct {
	// Auth (registration, login, refresh, profile)
	AuthHandler *api.AuthHandler

	// Catalog
	ProductHandler *api.ProductHandler

	// Cart
	CartHandler *api.CartHandler

	// Analytics
	AnalyticsHandler *api.AnalyticsHandler

	// Probes
	HealthHandler *api.HealthHandler

	// TokenVerifier validates bearer tokens for protected routes
	TokenVerifier middleware.TokenVerifier

	// MetricsHandler serves the Prometheus scrape endpoint
	MetricsHandler http.Handler

	// AuthRateLimit guards login and registration; nil disables limiting
	AuthRateLimit func(http.Handler) http.Handler
}
