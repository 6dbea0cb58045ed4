package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// UserRole distinguishes regular shoppers from administrators.
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

// User represents a registered account.
type User struct {
	ID        pgtype.UUID
	Email     string
	FirstName string
	LastName  string
	Role      UserRole
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// TokenPair is the credential set issued on login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterParams contains the fields accepted at registration.
type RegisterParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UpdateProfileParams contains the mutable profile fields.
// Nil fields are left unchanged.
type UpdateProfileParams struct {
	FirstName *string
	LastName  *string
}

// UserService provides account registration, authentication, and profile access.
type UserService interface {
	// Register creates a new customer account.
	Register(ctx context.Context, params RegisterParams) (*User, error)

	// Login verifies credentials and issues a token pair.
	Login(ctx context.Context, email, password string) (*User, *TokenPair, error)

	// Refresh exchanges a valid refresh token for a new token pair.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, id pgtype.UUID) (*User, error)

	// UpdateProfile updates the caller's profile fields.
	UpdateProfile(ctx context.Context, id pgtype.UUID, params UpdateProfileParams) (*User, error)
}
