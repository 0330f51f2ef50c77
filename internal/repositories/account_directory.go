package repositories

import (
	"fmt"
	"strings"
	"sync"

	"bookstore/internal/models"
)

// AccountDirectory is the shared in-memory user collection. Its lock also
// guards every user's wishlist.
type AccountDirectory struct {
	users []*models.User
	mu    sync.RWMutex
}

// NewAccountDirectory creates a directory holding the given users in order.
func NewAccountDirectory(users []*models.User) *AccountDirectory {
	return &AccountDirectory{users: users}
}

// FindByUsername returns the user with exactly this username, or nil.
func (d *AccountDirectory) FindByUsername(username string) *models.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.find(username)
}

// Add appends a new user unless the username is already taken.
func (d *AccountDirectory) Add(user *models.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.find(user.Username) != nil {
		return fmt.Errorf("%w: %s", models.ErrDuplicateUsername, user.Username)
	}
	d.users = append(d.users, user)
	return nil
}

// Authenticate returns the user only when both username and password match exactly.
func (d *AccountDirectory) Authenticate(username, password string) *models.User {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, u := range d.users {
		if u.Username == username && u.Password == password {
			return u
		}
	}
	return nil
}

// Records copies every user's credentials in directory order.
func (d *AccountDirectory) Records() []UserRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	records := make([]UserRecord, 0, len(d.users))
	for _, u := range d.users {
		records = append(records, UserRecord{Username: u.Username, Password: u.Password})
	}
	return records
}

// Len returns the number of registered users.
func (d *AccountDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}

// AddToWishlist appends the book to the user's wishlist. Duplicates are kept.
func (d *AccountDirectory) AddToWishlist(user *models.User, book *models.Book) {
	d.mu.Lock()
	defer d.mu.Unlock()
	user.Wishlist = append(user.Wishlist, book)
}

// AddToWishlistOnce appends the book unless the wishlist already holds that title.
// It reports whether the book was added.
func (d *AccountDirectory) AddToWishlistOnce(user *models.User, book *models.Book) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, b := range user.Wishlist {
		if strings.EqualFold(b.Title, book.Title) {
			return false
		}
	}
	user.Wishlist = append(user.Wishlist, book)
	return true
}

// Wishlist returns a copy of the user's wishlist.
func (d *AccountDirectory) Wishlist(user *models.User) []*models.Book {
	d.mu.RLock()
	defer d.mu.RUnlock()

	books := make([]*models.Book, len(user.Wishlist))
	copy(books, user.Wishlist)
	return books
}

func (d *AccountDirectory) find(username string) *models.User {
	for _, u := range d.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}
