package repositories

import (
	"fmt"
	"strings"
	"sync"

	"bookstore/internal/models"
)

// SearchField selects which book attribute a search matches against.
type SearchField int

const (
	SearchByTitle SearchField = iota
	SearchByAuthor
)

// ParseSearchField maps "title" or "author" to a SearchField.
func ParseSearchField(s string) (SearchField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "title", "":
		return SearchByTitle, nil
	case "author":
		return SearchByAuthor, nil
	}
	return 0, fmt.Errorf("unknown search field %q", s)
}

// Catalog is the shared in-memory book collection. A single catalog-wide
// mutex guards every book, including stock and reviews.
type Catalog struct {
	books []*models.Book
	mu    sync.Mutex
}

// NewCatalog creates a catalog holding the given books in order.
func NewCatalog(books []*models.Book) *Catalog {
	return &Catalog{books: books}
}

// Update runs fn while holding the catalog lock, so a lookup followed by a
// mutation is seen as one step by other callers. fn must not block on I/O.
func (c *Catalog) Update(fn func(tx *CatalogTx) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(&CatalogTx{c: c})
}

// FindByTitle returns the first book whose title matches case-insensitively.
func (c *Catalog) FindByTitle(title string) *models.Book {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findByTitle(title)
}

// Search returns the books whose title or author contains keyword, ignoring case.
func (c *Catalog) Search(field SearchField, keyword string) []*models.Book {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.search(field, keyword)
}

// DecrementStock takes one unit of the book out of stock.
func (c *Catalog) DecrementStock(book *models.Book) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return decrement(book)
}

// AverageRating returns the mean review rating of the book.
func (c *Catalog) AverageRating(book *models.Book) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return book.AverageRating()
}

// Len returns the number of books in the catalog.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.books)
}

// Snapshot copies every book's persisted fields in catalog order.
func (c *Catalog) Snapshot() []InventoryRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := make([]InventoryRecord, 0, len(c.books))
	for _, b := range c.books {
		records = append(records, InventoryRecord{
			Title:  b.Title,
			Author: b.Author,
			Price:  b.Price,
			Stock:  b.Stock,
		})
	}
	return records
}

func (c *Catalog) findByTitle(title string) *models.Book {
	for _, b := range c.books {
		if strings.EqualFold(b.Title, title) {
			return b
		}
	}
	return nil
}

func (c *Catalog) search(field SearchField, keyword string) []*models.Book {
	needle := strings.ToLower(keyword)
	results := make([]*models.Book, 0)
	for _, b := range c.books {
		value := b.Title
		if field == SearchByAuthor {
			value = b.Author
		}
		if strings.Contains(strings.ToLower(value), needle) {
			results = append(results, b)
		}
	}
	return results
}

func decrement(book *models.Book) error {
	if book.Stock <= 0 {
		return fmt.Errorf("%w: %s", models.ErrOutOfStock, book.Title)
	}
	book.Stock--
	return nil
}

// CatalogTx exposes catalog operations to code already holding the lock.
// It is only valid inside the Update callback that produced it.
type CatalogTx struct {
	c *Catalog
}

// Books returns the catalog's books in order.
func (tx *CatalogTx) Books() []*models.Book {
	books := make([]*models.Book, len(tx.c.books))
	copy(books, tx.c.books)
	return books
}

// At returns the book at the zero-based catalog position.
func (tx *CatalogTx) At(index int) (*models.Book, error) {
	if index < 0 || index >= len(tx.c.books) {
		return nil, fmt.Errorf("%w: no book at position %d", models.ErrBookNotFound, index+1)
	}
	return tx.c.books[index], nil
}

// FindByTitle returns the first book whose title matches case-insensitively.
func (tx *CatalogTx) FindByTitle(title string) *models.Book {
	return tx.c.findByTitle(title)
}

// Search returns the books whose chosen field contains keyword, ignoring case.
func (tx *CatalogTx) Search(field SearchField, keyword string) []*models.Book {
	return tx.c.search(field, keyword)
}

// DecrementStock takes one unit of the book out of stock.
func (tx *CatalogTx) DecrementStock(book *models.Book) error {
	return decrement(book)
}

// Restock returns n units of the book to stock.
func (tx *CatalogTx) Restock(book *models.Book, n int) {
	book.Stock += n
}

// AddReview appends a review to the book.
func (tx *CatalogTx) AddReview(book *models.Book, review models.Review) {
	book.Reviews = append(book.Reviews, review)
}
