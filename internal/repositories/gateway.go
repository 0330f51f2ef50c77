package repositories

import (
	"errors"

	"bookstore/internal/models"
)

var (
	ErrPersistenceRead  = errors.New("persistence read error")
	ErrPersistenceWrite = errors.New("persistence write error")
)

// UserRecord is the persisted form of a user.
type UserRecord struct {
	Username string
	Password string
}

// InventoryRecord is the persisted form of a catalog book.
type InventoryRecord struct {
	Title  string
	Author string
	Price  float64
	Stock  int
}

// Gateway loads and stores users and inventory. Save operations replace the
// stored contents with the given records, in order.
type Gateway interface {
	LoadUsers() ([]UserRecord, error)
	SaveUsers(users []UserRecord) error
	LoadInventory() ([]InventoryRecord, error)
	SaveInventory(books []InventoryRecord) error
}

// LoadCatalog builds a catalog from the gateway's inventory records.
func LoadCatalog(g Gateway) (*Catalog, error) {
	records, err := g.LoadInventory()
	if err != nil {
		return nil, err
	}
	books := make([]*models.Book, 0, len(records))
	for _, r := range records {
		books = append(books, models.NewBook(r.Title, r.Author, r.Price, r.Stock))
	}
	return NewCatalog(books), nil
}

// LoadAccountDirectory builds a directory from the gateway's user records.
func LoadAccountDirectory(g Gateway) (*AccountDirectory, error) {
	records, err := g.LoadUsers()
	if err != nil {
		return nil, err
	}
	users := make([]*models.User, 0, len(records))
	for _, r := range records {
		users = append(users, models.NewUser(r.Username, r.Password))
	}
	return NewAccountDirectory(users), nil
}
