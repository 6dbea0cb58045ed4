package service

import (
	"github.com/shoptrack/shoptrack/internal/domain"
)

// Not-found errors - use domain.ENOTFOUND
var (
	ErrUserNotFound     = domain.Errorf(domain.ENOTFOUND, "", "User not found")
	ErrProductNotFound  = domain.Errorf(domain.ENOTFOUND, "", "Product not found")
	ErrCartNotFound     = domain.Errorf(domain.ENOTFOUND, "", "Cart not found")
	ErrCartItemNotFound = domain.Errorf(domain.ENOTFOUND, "", "Cart item not found")
)

// Validation errors - use domain.EINVALID
var (
	ErrInvalidQuantity = domain.Errorf(domain.EINVALID, "", "Quantity must be greater than 0")
	ErrEmptyCart       = domain.Errorf(domain.EINVALID, "", "Cart is empty")
)

// Conflict errors - use domain.ECONFLICT
var (
	ErrEmailTaken    = domain.Errorf(domain.ECONFLICT, "", "Email address already registered")
	ErrCartNotActive = domain.Errorf(domain.ECONFLICT, "", "Cart is no longer active")
)

// Auth errors
var (
	ErrInvalidCredentials = domain.Errorf(domain.EUNAUTHORIZED, "", "Invalid email or password")
	ErrInvalidToken       = domain.Errorf(domain.EUNAUTHORIZED, "", "Invalid or expired token")
)

// insufficientStock reports how many units are actually available. The
// available count is part of the message because clients surface it directly.
func insufficientStock(op string, available int32) error {
	return domain.Errorf(domain.ECONFLICT, op, "Insufficient stock. Only %d items available", available)
}

// additionalStockAvailable is the variant for cumulative adds, where the
// cart already holds some units and only the remainder is available.
func additionalStockAvailable(op string, additional int32) error {
	return domain.Errorf(domain.ECONFLICT, op, "Insufficient stock. Only %d additional items available", additional)
}
