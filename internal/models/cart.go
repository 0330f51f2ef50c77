package models

import "sync"

// CartItem is one unit of a book in a cart. Reserved items already had their
// stock taken out of the catalog when they were added.
type CartItem struct {
	Book     *Book
	Reserved bool
}

// Cart is the per-session staging list of books pending purchase.
type Cart struct {
	items []CartItem
	mu    sync.Mutex
}

// NewCart creates an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// Add appends an unreserved unit of the book. No stock check is done here.
func (c *Cart) Add(book *Book) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, CartItem{Book: book})
}

// AddReserved appends a unit whose stock was already taken by the caller.
func (c *Cart) AddReserved(book *Book) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, CartItem{Book: book, Reserved: true})
}

// Total sums the current price of every unit in the cart.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total float64
	for _, item := range c.items {
		total += item.Book.Price
	}
	return total
}

// Items returns a copy of the cart contents in insertion order.
func (c *Cart) Items() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]CartItem, len(c.items))
	copy(items, c.items)
	return items
}

// Len returns the number of units in the cart.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// IsEmpty reports whether the cart holds no units.
func (c *Cart) IsEmpty() bool {
	return c.Len() == 0
}

// TakePrefix removes items from the front of the cart if the cart still
// starts with exactly those items, and reports whether it did. Units added
// after items was read stay in the cart.
func (c *Cart) TakePrefix(items []CartItem) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(items) > len(c.items) {
		return false
	}
	for i, item := range items {
		if c.items[i] != item {
			return false
		}
	}
	rest := make([]CartItem, len(c.items)-len(items))
	copy(rest, c.items[len(items):])
	c.items = rest
	return true
}

// Clear empties the cart and returns what it held.
func (c *Cart) Clear() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := c.items
	c.items = nil
	return items
}
