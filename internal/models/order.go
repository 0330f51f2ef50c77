package models

import (
	"strings"
	"time"
)

// OrderItem is a value snapshot of a book at the time of purchase.
type OrderItem struct {
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Price  float64 `json:"price"` // Price at the time of order
}

// Order represents a completed purchase. Orders are never modified.
type Order struct {
	Number     int         `json:"number"`
	Username   string      `json:"username"`
	Items      []OrderItem `json:"items"`
	TotalPrice float64     `json:"total_price"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Contains reports whether the order includes the given title.
func (o *Order) Contains(title string) bool {
	for _, item := range o.Items {
		if strings.EqualFold(item.Title, title) {
			return true
		}
	}
	return false
}

// OrderEvent is the message published when an order is placed.
type OrderEvent struct {
	OrderNumber int       `json:"order_number"`
	Username    string    `json:"username"`
	Titles      []string  `json:"titles"`
	Total       float64   `json:"total"`
	PlacedAt    time.Time `json:"placed_at"`
}

// NewOrderEvent builds the published view of an order.
func NewOrderEvent(order *Order) OrderEvent {
	titles := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		titles = append(titles, item.Title)
	}
	return OrderEvent{
		OrderNumber: order.Number,
		Username:    order.Username,
		Titles:      titles,
		Total:       order.TotalPrice,
		PlacedAt:    order.CreatedAt,
	}
}
