package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/shoptrack/shoptrack/internal/auth"
	"github.com/shoptrack/shoptrack/internal/domain"
	"github.com/shoptrack/shoptrack/internal/repository"
)

// UserService handles registration, login, and profile management.
type UserService struct {
	store  Datastore
	tokens *auth.TokenManager
	logger *slog.Logger
}

func NewUserService(store Datastore, tokens *auth.TokenManager, logger *slog.Logger) *UserService {
	return &UserService{
		store:  store,
		tokens: tokens,
		logger: logger,
	}
}

var _ domain.UserService = (*UserService)(nil)

// Register creates a new customer account. Email is normalized to lowercase.
func (s *UserService) Register(ctx context.Context, params domain.RegisterParams) (*domain.User, error) {
	const op = "user.register"

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.Invalid(op, "A valid email address is required")
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return nil, domain.Invalid(op, "Password must be at least 8 characters")
		}
		return nil, domain.Internal(err, op, "Failed to hash password")
	}

	row, err := s.store.CreateUser(ctx, repository.CreateUserParams{
		Email:        email,
		PasswordHash: hash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Role:         string(domain.RoleCustomer),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, domain.Internal(err, op, "Failed to create user")
	}

	s.logger.Info("user registered", "user_id", row.ID, "email", email)
	return userFromRow(row), nil
}

// Login verifies credentials and issues an access/refresh token pair.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, *domain.TokenPair, error) {
	const op = "user.login"

	row, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, domain.Internal(err, op, "Failed to look up user")
	}

	if err := auth.VerifyPassword(password, row.PasswordHash); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, domain.Internal(err, op, "Failed to verify password")
	}

	pair, err := s.issueTokens(row)
	if err != nil {
		return nil, nil, domain.Internal(err, op, "Failed to issue tokens")
	}

	s.logger.Info("user logged in", "user_id", row.ID)
	return userFromRow(row), pair, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair. The user is
// re-read so role changes take effect on rotation.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	const op = "user.refresh"

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	id, err := parseUUID(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	row, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, domain.Internal(err, op, "Failed to look up user")
	}

	pair, err := s.issueTokens(row)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to issue tokens")
	}
	return pair, nil
}

func (s *UserService) GetUser(ctx context.Context, id pgtype.UUID) (*domain.User, error) {
	row, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, domain.Internal(err, "user.get", "Failed to look up user")
	}
	return userFromRow(row), nil
}

// UpdateProfile merges the provided fields over the stored profile.
func (s *UserService) UpdateProfile(ctx context.Context, id pgtype.UUID, params domain.UpdateProfileParams) (*domain.User, error) {
	const op = "user.update_profile"

	current, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, domain.Internal(err, op, "Failed to look up user")
	}

	firstName := current.FirstName
	if params.FirstName != nil {
		firstName = *params.FirstName
	}
	lastName := current.LastName
	if params.LastName != nil {
		lastName = *params.LastName
	}

	row, err := s.store.UpdateUserProfile(ctx, repository.UpdateUserProfileParams{
		ID:        id,
		FirstName: firstName,
		LastName:  lastName,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to update profile")
	}
	return userFromRow(row), nil
}

func (s *UserService) issueTokens(row repository.User) (*domain.TokenPair, error) {
	userID := uuidString(row.ID)
	access, err := s.tokens.GenerateAccessToken(userID, row.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(userID, row.Role)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
