package cli

import (
	"errors"

	"bookstore/internal/models"
)

// messageFor turns a workflow error into the text shown to the user.
func messageFor(err error) string {
	switch {
	case errors.Is(err, models.ErrBookNotFound):
		return "Book not found."
	case errors.Is(err, models.ErrOutOfStock):
		return "Book is out of stock."
	case errors.Is(err, models.ErrInsufficientStock):
		return "Not enough stock left to place this order."
	case errors.Is(err, models.ErrInvalidRating):
		return "Invalid rating. Please enter a rating between 1 and 5."
	case errors.Is(err, models.ErrDuplicateUsername):
		return "Username already exists. Please choose a different username."
	case errors.Is(err, models.ErrWeakPassword):
		return "Password must be at least 6 characters long."
	case errors.Is(err, models.ErrInvalidCredentials):
		return "Invalid login credentials."
	case errors.Is(err, models.ErrEmptyCart):
		return "Your cart is empty."
	case errors.Is(err, models.ErrNotAuthenticated):
		return "You need to log in or sign up to place an order."
	case errors.Is(err, models.ErrOrderCancelled):
		return "Order cancelled."
	case errors.Is(err, models.ErrCartChanged):
		return "Your cart changed while the order was being placed. Please try again."
	}
	return "Something went wrong: " + err.Error()
}
