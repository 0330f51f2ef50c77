package services

import (
	"fmt"
	"log"
	"time"

	"bookstore/internal/models"
	"bookstore/internal/repositories"
)

// EventPublisher delivers order events to other systems.
type EventPublisher interface {
	PublishOrderPlaced(event models.OrderEvent) error
}

// ConfirmFunc is shown the order total and reports whether to go ahead.
type ConfirmFunc func(total float64) bool

// OrderService handles order placement and order history.
type OrderService struct {
	catalog   *repositories.Catalog
	directory *repositories.AccountDirectory
	ledger    *repositories.OrderLedger
	inventory *InventoryService
	publisher EventPublisher // optional
	now       func() time.Time
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(catalog *repositories.Catalog, directory *repositories.AccountDirectory, ledger *repositories.OrderLedger, inventory *InventoryService, publisher EventPublisher) *OrderService {
	return &OrderService{
		catalog:   catalog,
		directory: directory,
		ledger:    ledger,
		inventory: inventory,
		publisher: publisher,
		now:       time.Now,
	}
}

// Quote returns the cart total at current prices.
func (s *OrderService) Quote(session *Session) (float64, error) {
	_, total, err := s.snapshot(session)
	return total, err
}

// snapshot reads the session's cart once, together with its total.
func (s *OrderService) snapshot(session *Session) ([]models.CartItem, float64, error) {
	if err := requireSession(session); err != nil {
		return nil, 0, err
	}
	items := session.Cart.Items()
	if len(items) == 0 {
		return nil, 0, models.ErrEmptyCart
	}
	return items, sumPrices(items), nil
}

func sumPrices(items []models.CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Book.Price
	}
	return total
}

// PlaceOrder turns the session's cart into an order.
//
// The cart is read once and its total passed to confirm, before any lock is
// taken; a declined order changes nothing. The rest happens under the
// catalog lock and works only on the units that were confirmed: unreserved
// units are checked against stock and taken out of it, the order is appended
// to the ledger, and each distinct book the user is buying for the first time
// goes on their wishlist. Units added to the cart after confirmation stay in
// the cart. If the confirmed units are no longer at the front of the cart the
// order fails with ErrCartChanged; if any unreserved unit is unavailable it
// fails with ErrInsufficientStock. Either way nothing changes.
// Reserved units had their stock taken when added.
func (s *OrderService) PlaceOrder(session *Session, confirm ConfirmFunc) (*models.Order, error) {
	items, total, err := s.snapshot(session)
	if err != nil {
		return nil, err
	}
	if confirm != nil && !confirm(total) {
		return nil, models.ErrOrderCancelled
	}

	user := session.User
	var order models.Order
	err = s.catalog.Update(func(tx *repositories.CatalogTx) error {
		var distinct []*models.Book
		wanted := make(map[*models.Book]int)
		seen := make(map[*models.Book]bool)
		for _, item := range items {
			if !seen[item.Book] {
				seen[item.Book] = true
				distinct = append(distinct, item.Book)
			}
			if !item.Reserved {
				wanted[item.Book]++
			}
		}
		for _, b := range distinct {
			if n := wanted[b]; b.Stock < n {
				return fmt.Errorf("%w for %s (requested: %d, available: %d)", models.ErrInsufficientStock, b.Title, n, b.Stock)
			}
		}
		if !session.Cart.TakePrefix(items) {
			return models.ErrCartChanged
		}

		var firstPurchases []*models.Book
		for _, b := range distinct {
			if !s.ledger.HasPurchased(user.Username, b.Title) {
				firstPurchases = append(firstPurchases, b)
			}
		}

		orderItems := make([]models.OrderItem, 0, len(items))
		var orderTotal float64
		for _, item := range items {
			orderItems = append(orderItems, models.OrderItem{
				Title:  item.Book.Title,
				Author: item.Book.Author,
				Price:  item.Book.Price,
			})
			orderTotal += item.Book.Price
		}
		order = s.ledger.Append(user.Username, orderItems, orderTotal, s.now())

		for _, b := range distinct {
			for i := 0; i < wanted[b]; i++ {
				if err := tx.DecrementStock(b); err != nil {
					// Availability was checked above under the same lock.
					return fmt.Errorf("order #%d: %w", order.Number, err)
				}
			}
		}
		for _, b := range firstPurchases {
			s.directory.AddToWishlistOnce(user, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.inventory.Flush(); err != nil {
		log.Printf("Error updating inventory after order #%d: %v", order.Number, err)
	}
	s.publish(&order)
	return &order, nil
}

func (s *OrderService) publish(order *models.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderPlaced(models.NewOrderEvent(order)); err != nil {
		log.Printf("Warning: Failed to publish order placed event for order #%d: %v", order.Number, err)
	}
}

// OrdersFor returns the session user's orders, oldest first.
func (s *OrderService) OrdersFor(session *Session) ([]models.Order, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	return s.ledger.ForUser(session.User.Username), nil
}
