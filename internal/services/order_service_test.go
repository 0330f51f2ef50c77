package services_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"bookstore/internal/models"
	"bookstore/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func confirmYes(float64) bool { return true }

func TestOrderService_PlaceOrderScenario(t *testing.T) {
	dune := models.NewBook("Dune", "Herbert", 9.99, 3)
	s := newStore([]*models.Book{dune}, []*models.User{models.NewUser("alice", "secret1")}, nil)
	session := s.login(t, "alice", "secret1")

	_, err := s.books.AddToCart(session, "Dune", false)
	require.NoError(t, err)
	_, err = s.books.AddToCart(session, "Dune", false)
	require.NoError(t, err)
	assert.Equal(t, 1, dune.Stock)

	s.gateway.On("SaveInventory", []repositories.InventoryRecord{
		{Title: "Dune", Author: "Herbert", Price: 9.99, Stock: 1},
	}).Return(nil).Once()

	var quoted float64
	order, err := s.orders.PlaceOrder(session, func(total float64) bool {
		quoted = total
		return true
	})
	require.NoError(t, err)

	assert.Equal(t, 1, order.Number)
	assert.InDelta(t, 19.98, order.TotalPrice, 1e-9)
	assert.InDelta(t, 19.98, quoted, 1e-9)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, 1, dune.Stock)
	assert.True(t, session.Cart.IsEmpty())

	wishlist := s.directory.Wishlist(session.User)
	require.Len(t, wishlist, 1)
	assert.Same(t, dune, wishlist[0])
	s.gateway.AssertExpectations(t)
}

func TestOrderService_WishlistedBookIsNotAddedTwice(t *testing.T) {
	dune := models.NewBook("Dune", "Herbert", 9.99, 3)
	s := newStore([]*models.Book{dune}, []*models.User{models.NewUser("alice", "secret1")}, nil)
	s.gateway.On("SaveInventory", mock.Anything).Return(nil)
	session := s.login(t, "alice", "secret1")

	_, err := s.books.AddToCart(session, "Dune", true)
	require.NoError(t, err)
	_, err = s.orders.PlaceOrder(session, confirmYes)
	require.NoError(t, err)

	assert.Len(t, s.directory.Wishlist(session.User), 1)
}

func TestOrderService_UnreservedItemsDecrementAtPlacement(t *testing.T) {
	dune := models.NewBook("Dune", "Herbert", 9.99, 5)
	emma := models.NewBook("Emma", "Austen", 5.00, 2)
	s := newStore([]*models.Book{dune, emma}, []*models.User{models.NewUser("alice", "secret1")}, nil)
	s.gateway.On("SaveInventory", mock.Anything).Return(nil)
	session := s.login(t, "alice", "secret1")

	session.Cart.Add(dune)
	session.Cart.Add(emma)
	session.Cart.Add(dune)
	before := s.ledger.Len()

	order, err := s.orders.PlaceOrder(session, confirmYes)
	require.NoError(t, err)

	assert.Equal(t, before+1, s.ledger.Len())
	assert.Equal(t, 1, order.Number)
	assert.Equal(t, 3, dune.Stock, "two units of Dune bought")
	assert.Equal(t, 1, emma.Stock, "one unit of Emma bought")
	assert.InDelta(t, 24.98, order.TotalPrice, 1e-9)
	assert.True(t, session.Cart.IsEmpty())

	titles := make([]string, 0)
	for _, b := range s.directory.Wishlist(session.User) {
		titles = append(titles, b.Title)
	}
	assert.Equal(t, []string{"Dune", "Emma"}, titles, "one entry per distinct book")
}

func TestOrderService_SecondPurchaseDoesNotReaddToWishlist(t *testing.T) {
	dune := models.NewBook("Dune", "Herbert", 9.99, 10)
	s := newStore([]*models.Book{dune}, []*models.User{models.NewUser("alice", "secret1")}, nil)
	s.gateway.On("SaveInventory", mock.Anything).Return(nil)
	session := s.login(t, "alice", "secret1")

	session.Cart.Add(dune)
	first, err := s.orders.PlaceOrder(session, confirmYes)
	require.NoError(t, err)

	// Clear the wishlist to see whether the second order adds it again.
	session.User.Wishlist = nil

	session.Cart.Add(dune)
	second, err := s.orders.PlaceOrder(session, confirmYes)
	require.NoError(t, err)

	assert.Equal(t, first.Number+1, second.Number)
	assert.Empty(t, s.directory.Wishlist(session.User))
	assert.Equal(t, 8, dune.Stock)
}

func TestOrderService_OrderIsASnapshot(t *testing.T) {
	dune := models.NewBook("Dune", "Herbert", 9.99, 10)
	s := newStore([]*models.Book{dune}, []*models.User{models.NewUser("alice", "secret1")}, nil)
	s.gateway.On("SaveInventory", mock.Anything).Return(nil)
	session := s.login(t, "alice", "secret1")

	session.Cart.Add(dune)
	order, err := s.orders.PlaceOrder(session, confirmYes)
	require.NoError(t, err)

	dune.Price = 50
	dune.Stock = 0

	orders, err := s.orders.OrdersFor(session)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 9.99, orders[0].TotalPrice)
	assert.Equal(t, 9.99, orders[0].Items[0].Price)
	assert.Equal(t, order.Number, orders[0].Number)
}

func TestOrderService_Preconditions(t *testing.T) {
	dune := models.NewBook("Dune", "Herbert", 9.99, 3)
	s := newStore([]*models.Book{dune}, []*models.User{models.NewUser("alice", "secret1")}, nil)
	session := s.login(t, "alice", "secret1")

	_, err := s.orders.PlaceOrder(session, confirmYes)
	assert.True(t, errors.Is(err, models.ErrEmptyCart))

	_, err = s.orders.PlaceOrder(nil, confirmYes)
	assert.True(t, errors.Is(err, models.ErrNotAuthenticated))

	_, err = s.orders.Quote(session)
	assert.True(t, errors.Is(err, models.ErrEmptyCart))

	assert.Equal(t, 0, s.ledger.Len())
	s.gateway.AssertNotCalled(t, "SaveInventory", mock.Anything)
}

func TestOrderService_DeclinedOrderChangesNothing(t *testing.T) {
	dune := models.NewBook("Dune", "Herbert", 9.99, 3)
	s := newStore([]*models.Book{dune}, []*models.User{models.NewUser("alice", "secret1")}, nil)
	session := s.login(t, "alice", "secret1")

	session.Cart.Add(dune)
	_, err := s.orders.PlaceOrder(session, func(float64) bool { return false })
	assert.True(t, errors.Is(err, models.ErrOrderCancelled))

	assert.Equal(t, 0, s.ledger.Len())
	assert.Equal(t, 3, dune.Stock)
	assert.Equal(t, 1, session.Cart.Len(), "cart is retained")
	assert.Empty(t, s.directory.Wishlist(session.User))
	s.gateway.AssertNotCalled(t, "SaveInventory", mock.Anything)
}

func TestOrderService_ItemsAddedDuringConfirmationStayInCart(t *testing.T) {
	dune := models.NewBook("Dune", "Herbert", 9.99, 3)
	s := newStore([]*models.Book{dune}, []*models.User{models.NewUser("alice", "secret1")}, nil)
	s.gateway.On("SaveInventory", mock.Anything).Return(nil)
	session := s.login(t, "alice", "secret1")

	_, err := s.books.AddToCart(session, "Dune", false)
	require.NoError(t, err)

	var quoted float64
	order, err := s.orders.PlaceOrder(session, func(total float64) bool {
		quoted = total
		// Another request on the same session adds to the cart.
		_, addErr := s.books.AddToCart(session, "Dune", false)
		require.NoError(t, addErr)
		return true
	})
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	var sum float64
	for _, item := range order.Items {
		sum += item.Price
	}
	assert.InDelta(t, sum, order.TotalPrice, 1e-9)
	assert.InDelta(t, quoted, order.TotalPrice, 1e-9)

	assert.Equal(t, []models.CartItem{{Book: dune, Reserved: true}}, session.Cart.Items())
	assert.Equal(t, 1, dune.Stock)
}

func TestOrderService_CartEmptiedDuringConfirmationFails(t *testing.T) {
	dune := models.NewBook("Dune", "Herbert", 9.99, 3)
	s := newStore([]*models.Book{dune}, []*models.User{models.NewUser("alice", "secret1")}, nil)
	session := s.login(t, "alice", "secret1")

	session.Cart.Add(dune)
	_, err := s.orders.PlaceOrder(session, func(float64) bool {
		session.Cart.Clear()
		return true
	})
	assert.True(t, errors.Is(err, models.ErrCartChanged))

	assert.Equal(t, 0, s.ledger.Len())
	assert.Equal(t, 3, dune.Stock)
	assert.Empty(t, s.directory.Wishlist(session.User))
	s.gateway.AssertNotCalled(t, "SaveInventory", mock.Anything)
}

func TestOrderService_InsufficientStockFailsWholeOrder(t *testing.T) {
	dune := models.NewBook("Dune", "Herbert", 9.99, 1)
	emma := models.NewBook("Emma", "Austen", 5.00, 5)
	s := newStore([]*models.Book{dune, emma}, []*models.User{models.NewUser("alice", "secret1")}, nil)
	session := s.login(t, "alice", "secret1")

	session.Cart.Add(emma)
	session.Cart.Add(dune)
	session.Cart.Add(dune)

	_, err := s.orders.PlaceOrder(session, confirmYes)
	assert.True(t, errors.Is(err, models.ErrInsufficientStock))
	assert.Contains(t, err.Error(), "Dune")

	assert.Equal(t, 0, s.ledger.Len())
	assert.Equal(t, 1, dune.Stock)
	assert.Equal(t, 5, emma.Stock)
	assert.Equal(t, 3, session.Cart.Len())
}

func TestOrderService_FlushFailureKeepsOrder(t *testing.T) {
	dune := models.NewBook("Dune", "Herbert", 9.99, 3)
	s := newStore([]*models.Book{dune}, []*models.User{models.NewUser("alice", "secret1")}, nil)
	s.gateway.On("SaveInventory", mock.Anything).Return(fmt.Errorf("%w: read-only", repositories.ErrPersistenceWrite)).Once()
	session := s.login(t, "alice", "secret1")

	session.Cart.Add(dune)
	order, err := s.orders.PlaceOrder(session, confirmYes)
	require.NoError(t, err)
	assert.Equal(t, 1, order.Number)
	assert.Equal(t, 2, dune.Stock)
	assert.Equal(t, 1, s.ledger.Len())
	s.gateway.AssertExpectations(t)
}

func TestOrderService_PublishesOrderPlaced(t *testing.T) {
	dune := models.NewBook("Dune", "Herbert", 9.99, 3)
	publisher := new(MockPublisher)
	s := newStore([]*models.Book{dune}, []*models.User{models.NewUser("alice", "secret1")}, publisher)
	s.gateway.On("SaveInventory", mock.Anything).Return(nil)
	session := s.login(t, "alice", "secret1")

	publisher.On("PublishOrderPlaced", mock.MatchedBy(func(e models.OrderEvent) bool {
		return e.OrderNumber == 1 && e.Username == "alice" && len(e.Titles) == 1 && e.Titles[0] == "Dune"
	})).Return(nil).Once()

	session.Cart.Add(dune)
	_, err := s.orders.PlaceOrder(session, confirmYes)
	require.NoError(t, err)
	publisher.AssertExpectations(t)

	publisher.On("PublishOrderPlaced", mock.Anything).Return(errors.New("broker down")).Once()
	session.Cart.Add(dune)
	order, err := s.orders.PlaceOrder(session, confirmYes)
	assert.NoError(t, err, "publish failures do not fail the order")
	assert.Equal(t, 2, order.Number)
	publisher.AssertExpectations(t)
}

func TestOrderService_ConcurrentOrdersGetSequentialNumbers(t *testing.T) {
	dune := models.NewBook("Dune", "Herbert", 9.99, 100)
	users := make([]*models.User, 0, 25)
	for i := 0; i < 25; i++ {
		users = append(users, models.NewUser(fmt.Sprintf("user%02d", i), "secret1"))
	}
	s := newStore([]*models.Book{dune}, users, nil)
	s.gateway.On("SaveInventory", mock.Anything).Return(nil)

	var wg sync.WaitGroup
	for _, u := range users {
		session := s.login(t, u.Username, "secret1")
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 2; i++ {
				session.Cart.Add(dune)
				if _, err := s.orders.PlaceOrder(session, confirmYes); err != nil {
					t.Errorf("place order: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	orders := s.ledger.All()
	require.Len(t, orders, 50)
	for i, o := range orders {
		assert.Equal(t, i+1, o.Number)
	}
	assert.Equal(t, 50, dune.Stock)
}
