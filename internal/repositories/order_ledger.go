package repositories

import (
	"sync"
	"time"

	"bookstore/internal/models"
)

// OrderLedger is the append-only order history. Order numbers start at 1 and
// live only as long as the process.
type OrderLedger struct {
	orders []models.Order
	next   int
	mu     sync.RWMutex
}

// NewOrderLedger creates an empty ledger.
func NewOrderLedger() *OrderLedger {
	return &OrderLedger{next: 1}
}

// Append allocates the next order number and records the order.
func (l *OrderLedger) Append(username string, items []models.OrderItem, total float64, at time.Time) models.Order {
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := make([]models.OrderItem, len(items))
	copy(snapshot, items)

	order := models.Order{
		Number:     l.next,
		Username:   username,
		Items:      snapshot,
		TotalPrice: total,
		CreatedAt:  at,
	}
	l.next++
	l.orders = append(l.orders, order)
	return order
}

// HasPurchased reports whether any recorded order by the user contains the title.
func (l *OrderLedger) HasPurchased(username, title string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := range l.orders {
		if l.orders[i].Username == username && l.orders[i].Contains(title) {
			return true
		}
	}
	return false
}

// ForUser returns the user's orders, oldest first.
func (l *OrderLedger) ForUser(username string) []models.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()

	orders := make([]models.Order, 0)
	for _, o := range l.orders {
		if o.Username == username {
			orders = append(orders, o)
		}
	}
	return orders
}

// All returns every order, oldest first.
func (l *OrderLedger) All() []models.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()

	orders := make([]models.Order, len(l.orders))
	copy(orders, l.orders)
	return orders
}

// Len returns the number of recorded orders.
func (l *OrderLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.orders)
}
