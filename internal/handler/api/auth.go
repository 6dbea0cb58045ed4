package api

import (
	"log/slog"
	"net/http"

	"github.com/shoptrack/shoptrack/internal/domain"
	"github.com/shoptrack/shoptrack/internal/handler"
	"github.com/shoptrack/shoptrack/internal/middleware"
	"github.com/shoptrack/shoptrack/internal/telemetry"
)

// AuthHandler handles registration, login, token refresh, and profile access.
type AuthHandler struct {
	users   domain.UserService
	metrics *telemetry.BusinessMetrics
	logger  *slog.Logger
}

func NewAuthHandler(users domain.UserService, metrics *telemetry.BusinessMetrics, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		users:   users,
		metrics: metrics,
		logger:  logger,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	user, err := h.users.Register(r.Context(), domain.RegisterParams{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordSignup()
	}
	handler.JSON(w, http.StatusCreated, newUserResponse(user))
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	user, pair, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordLogin(false)
		}
		handler.ErrorResponse(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordLogin(true)
	}
	handler.JSON(w, http.StatusOK, map[string]interface{}{
		"user":          newUserResponse(user),
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// Refresh handles POST /api/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	pair, err := h.users.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, map[string]string{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// Profile handles GET /api/auth/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUID(middleware.GetUserID(r.Context()))
	if !ok {
		handler.ErrorResponse(w, r, domain.Unauthorized("auth.profile", "Authentication required"))
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, newUserResponse(user))
}

// UpdateProfile handles PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUID(middleware.GetUserID(r.Context()))
	if !ok {
		handler.ErrorResponse(w, r, domain.Unauthorized("auth.profile", "Authentication required"))
		return
	}

	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, domain.UpdateProfileParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, newUserResponse(user))
}
