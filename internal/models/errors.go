package models

import "errors"

// Domain errors surfaced by the store workflows. Callers classify them with errors.Is.
var (
	ErrBookNotFound       = errors.New("book not found")
	ErrOutOfStock         = errors.New("book is out of stock")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrWeakPassword       = errors.New("password must be at least 6 characters long")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrOrderCancelled     = errors.New("order cancelled")
	ErrCartChanged        = errors.New("cart changed while the order was being placed")
	ErrSessionNotFound    = errors.New("session not found")
)
