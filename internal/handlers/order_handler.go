package handlers

import (
	"log"

	"bookstore/internal/middleware"
	"bookstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Post("/", h.HandlePlaceOrder)
}

// HandleGetOrders returns the caller's orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.OrdersFor(middleware.CurrentSession(c))
	if err != nil {
		return errorResponse(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandlePlaceOrder places an order for the caller's cart. The request itself
// is the confirmation.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	order, err := h.service.PlaceOrder(middleware.CurrentSession(c), nil)
	if err != nil {
		log.Printf("Error placing order: %v", err)
		return errorResponse(c, "Could not place order", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order":   order,
		"invoice": services.Invoice(order),
	})
}
