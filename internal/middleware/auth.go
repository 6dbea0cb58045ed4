package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shoptrack/shoptrack/internal/auth"
	"github.com/shoptrack/shoptrack/internal/domain"
)

const (
	// UserIDContextKey is the context key for the authenticated user's ID
	UserIDContextKey contextKey = "user_id"

	// RoleContextKey is the context key for the authenticated user's role
	RoleContextKey contextKey = "role"
)

// TokenVerifier verifies bearer tokens. *auth.TokenManager satisfies it.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token. On success the
// user ID and role are stored in the request context.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				respondUnauthorized(w, r)
				return
			}

			claims, err := verifier.VerifyAccessToken(token)
			if err != nil {
				respondUnauthorized(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDContextKey, claims.UserID)
			ctx = context.WithValue(ctx, RoleContextKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects authenticated requests whose role is not admin.
// Must run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetRole(r.Context()) != string(domain.RoleAdmin) {
			respondForbidden(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserID retrieves the authenticated user's ID from the context.
// Returns "" for unauthenticated requests.
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDContextKey).(string); ok {
		return id
	}
	return ""
}

// GetRole retrieves the authenticated user's role from the context.
func GetRole(ctx context.Context) string {
	if role, ok := ctx.Value(RoleContextKey).(string); ok {
		return role
	}
	return ""
}

// IsAdmin reports whether the request context carries the admin role.
func IsAdmin(ctx context.Context) bool {
	return GetRole(ctx) == string(domain.RoleAdmin)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
