package models

// User represents a customer account. Credentials are compared as plain text.
type User struct {
	Username string  `json:"username"`
	Password string  `json:"-" validate:"min=6"` // No json tag for security
	Wishlist []*Book `json:"wishlist"`
}

// NewUser creates a user with an empty wishlist.
func NewUser(username, password string) *User {
	return &User{
		Username: username,
		Password: password,
	}
}
