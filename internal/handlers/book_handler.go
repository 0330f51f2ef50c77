package handlers

import (
	"log"

	"bookstore/internal/middleware"
	"bookstore/internal/repositories"
	"bookstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// BookHandler handles HTTP requests for the catalog, cart and wishlist.
type BookHandler struct {
	service  *services.CatalogService
	validate *validator.Validate
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(service *services.CatalogService) *BookHandler {
	return &BookHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the catalog, cart and wishlist routes.
func (h *BookHandler) RegisterRoutes(router fiber.Router) {
	bookRoutes := router.Group("/books")
	bookRoutes.Get("/", h.HandleListBooks)
	bookRoutes.Get("/search", h.HandleSearch)
	bookRoutes.Post("/reviews", h.HandleReview)

	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleViewCart)
	cartRoutes.Post("/items", h.HandleAddToCart)

	wishlistRoutes := router.Group("/wishlist")
	wishlistRoutes.Get("/", h.HandleViewWishlist)
	wishlistRoutes.Post("/", h.HandleAddToWishlist)
}

// HandleListBooks returns the whole catalog.
func (h *BookHandler) HandleListBooks(c *fiber.Ctx) error {
	return c.JSON(h.service.ListBooks())
}

// HandleSearch searches the catalog by title or author.
func (h *BookHandler) HandleSearch(c *fiber.Ctx) error {
	field, err := repositories.ParseSearchField(c.Query("field"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid search field",
			"error":   err.Error(),
		})
	}
	return c.JSON(h.service.Search(field, c.Query("q")))
}

// AddToCartRequest represents the request body for adding a book to the cart.
type AddToCartRequest struct {
	Title         string `json:"title" validate:"required"`
	AddToWishlist bool   `json:"add_to_wishlist"`
}

// HandleAddToCart reserves one unit of a book for the caller's cart.
func (h *BookHandler) HandleAddToCart(c *fiber.Ctx) error {
	var req AddToCartRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	book, err := h.service.AddToCart(middleware.CurrentSession(c), req.Title, req.AddToWishlist)
	if err != nil {
		log.Printf("Error adding %q to cart: %v", req.Title, err)
		return errorResponse(c, "Could not add book to cart", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Added to cart: " + book.Title,
		"book":    book,
	})
}

// HandleViewCart returns the caller's cart and its current total.
func (h *BookHandler) HandleViewCart(c *fiber.Ctx) error {
	items, total, err := h.service.CartContents(middleware.CurrentSession(c))
	if err != nil {
		return errorResponse(c, "Could not read cart", err)
	}
	return c.JSON(fiber.Map{
		"items": items,
		"total": total,
	})
}

// ReviewRequest represents the request body for a book review.
type ReviewRequest struct {
	Title   string `json:"title" validate:"required"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// HandleReview adds the caller's review to a book.
func (h *BookHandler) HandleReview(c *fiber.Ctx) error {
	var req ReviewRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	if err := h.service.SubmitReview(middleware.CurrentSession(c), req.Title, req.Rating, req.Comment); err != nil {
		log.Printf("Error reviewing %q: %v", req.Title, err)
		return errorResponse(c, "Could not submit review", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Thank you for your review!",
	})
}

// WishlistRequest represents the request body for adding to the wishlist.
type WishlistRequest struct {
	Title string `json:"title" validate:"required"`
}

// HandleAddToWishlist appends a book to the caller's wishlist.
func (h *BookHandler) HandleAddToWishlist(c *fiber.Ctx) error {
	var req WishlistRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	if err := h.service.AddToWishlist(middleware.CurrentSession(c), req.Title); err != nil {
		return errorResponse(c, "Could not add book to wishlist", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": req.Title + " has been added to your Wishlist.",
	})
}

// HandleViewWishlist returns the caller's wishlist.
func (h *BookHandler) HandleViewWishlist(c *fiber.Ctx) error {
	books, err := h.service.Wishlist(middleware.CurrentSession(c))
	if err != nil {
		return errorResponse(c, "Could not read wishlist", err)
	}
	return c.JSON(books)
}
