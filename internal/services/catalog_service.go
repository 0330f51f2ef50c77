package services

import (
	"fmt"

	"bookstore/internal/models"
	"bookstore/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// BookView is a read-only copy of a book taken under the catalog lock.
type BookView struct {
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Price         float64 `json:"price"`
	Stock         int     `json:"stock"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

func viewOf(b *models.Book) BookView {
	return BookView{
		Title:         b.Title,
		Author:        b.Author,
		Price:         b.Price,
		Stock:         b.Stock,
		AverageRating: b.AverageRating(),
		ReviewCount:   len(b.Reviews),
	}
}

// CatalogService handles browsing, searching, reviews and wishlists.
type CatalogService struct {
	catalog   *repositories.Catalog
	directory *repositories.AccountDirectory
	validate  *validator.Validate
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(catalog *repositories.Catalog, directory *repositories.AccountDirectory) *CatalogService {
	return &CatalogService{
		catalog:   catalog,
		directory: directory,
		validate:  validator.New(),
	}
}

// ListBooks returns every book in catalog order.
func (s *CatalogService) ListBooks() []BookView {
	var views []BookView
	_ = s.catalog.Update(func(tx *repositories.CatalogTx) error {
		books := tx.Books()
		views = make([]BookView, 0, len(books))
		for _, b := range books {
			views = append(views, viewOf(b))
		}
		return nil
	})
	return views
}

// Search returns the books whose chosen field contains keyword, ignoring case.
func (s *CatalogService) Search(field repositories.SearchField, keyword string) []BookView {
	var views []BookView
	_ = s.catalog.Update(func(tx *repositories.CatalogTx) error {
		views = make([]BookView, 0)
		for _, b := range tx.Search(field, keyword) {
			views = append(views, viewOf(b))
		}
		return nil
	})
	return views
}

// FindBook returns the book with the given title.
func (s *CatalogService) FindBook(title string) (BookView, error) {
	var view BookView
	err := s.catalog.Update(func(tx *repositories.CatalogTx) error {
		b := tx.FindByTitle(title)
		if b == nil {
			return fmt.Errorf("%w: %s", models.ErrBookNotFound, title)
		}
		view = viewOf(b)
		return nil
	})
	return view, err
}

// AddToCart reserves one unit of the titled book and puts it in the session's cart.
func (s *CatalogService) AddToCart(session *Session, title string, addToWishlist bool) (BookView, error) {
	return s.addToCart(session, addToWishlist, func(tx *repositories.CatalogTx) (*models.Book, error) {
		b := tx.FindByTitle(title)
		if b == nil {
			return nil, fmt.Errorf("%w: %s", models.ErrBookNotFound, title)
		}
		return b, nil
	})
}

// AddToCartAt is AddToCart for the book at a one-based catalog position.
func (s *CatalogService) AddToCartAt(session *Session, position int, addToWishlist bool) (BookView, error) {
	return s.addToCart(session, addToWishlist, func(tx *repositories.CatalogTx) (*models.Book, error) {
		return tx.At(position - 1)
	})
}

func (s *CatalogService) addToCart(session *Session, addToWishlist bool, pick func(tx *repositories.CatalogTx) (*models.Book, error)) (BookView, error) {
	if err := requireSession(session); err != nil {
		return BookView{}, err
	}

	var view BookView
	err := s.catalog.Update(func(tx *repositories.CatalogTx) error {
		b, err := pick(tx)
		if err != nil {
			return err
		}
		if err := tx.DecrementStock(b); err != nil {
			return err
		}
		session.Cart.AddReserved(b)
		if addToWishlist {
			s.directory.AddToWishlist(session.User, b)
		}
		view = viewOf(b)
		return nil
	})
	return view, err
}

// CartContents returns the session's cart items and their current total.
func (s *CatalogService) CartContents(session *Session) ([]BookView, float64, error) {
	if err := requireSession(session); err != nil {
		return nil, 0, err
	}

	var views []BookView
	var total float64
	_ = s.catalog.Update(func(tx *repositories.CatalogTx) error {
		items := session.Cart.Items()
		views = make([]BookView, 0, len(items))
		for _, item := range items {
			views = append(views, viewOf(item.Book))
		}
		total = session.Cart.Total()
		return nil
	})
	return views, total, nil
}

// SubmitReview adds a review to the titled book. Out-of-stock books cannot
// be reviewed.
func (s *CatalogService) SubmitReview(session *Session, title string, rating int, comment string) error {
	if err := requireSession(session); err != nil {
		return err
	}

	return s.catalog.Update(func(tx *repositories.CatalogTx) error {
		b := tx.FindByTitle(title)
		if b == nil {
			return fmt.Errorf("%w: %s", models.ErrBookNotFound, title)
		}
		if b.Stock <= 0 {
			return fmt.Errorf("%w: %s", models.ErrOutOfStock, b.Title)
		}

		review := models.Review{
			Username: session.User.Username,
			Rating:   rating,
			Comment:  comment,
		}
		if err := s.validate.Struct(review); err != nil {
			return fmt.Errorf("%w: got %d", models.ErrInvalidRating, rating)
		}
		tx.AddReview(b, review)
		return nil
	})
}

// Reviews returns the titled book's reviews, oldest first.
func (s *CatalogService) Reviews(title string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.catalog.Update(func(tx *repositories.CatalogTx) error {
		b := tx.FindByTitle(title)
		if b == nil {
			return fmt.Errorf("%w: %s", models.ErrBookNotFound, title)
		}
		reviews = make([]models.Review, len(b.Reviews))
		copy(reviews, b.Reviews)
		return nil
	})
	return reviews, err
}

// AddToWishlist appends the titled book to the session user's wishlist.
func (s *CatalogService) AddToWishlist(session *Session, title string) error {
	if err := requireSession(session); err != nil {
		return err
	}
	b := s.catalog.FindByTitle(title)
	if b == nil {
		return fmt.Errorf("%w: %s", models.ErrBookNotFound, title)
	}
	s.directory.AddToWishlist(session.User, b)
	return nil
}

// AddToWishlistAt appends the book at a one-based catalog position to the
// session user's wishlist.
func (s *CatalogService) AddToWishlistAt(session *Session, position int) (BookView, error) {
	if err := requireSession(session); err != nil {
		return BookView{}, err
	}

	var view BookView
	err := s.catalog.Update(func(tx *repositories.CatalogTx) error {
		b, err := tx.At(position - 1)
		if err != nil {
			return err
		}
		s.directory.AddToWishlist(session.User, b)
		view = viewOf(b)
		return nil
	})
	return view, err
}

// Wishlist returns the session user's wishlist in the order books were added.
func (s *CatalogService) Wishlist(session *Session) ([]BookView, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}

	books := s.directory.Wishlist(session.User)
	views := make([]BookView, 0, len(books))
	_ = s.catalog.Update(func(tx *repositories.CatalogTx) error {
		for _, b := range books {
			views = append(views, viewOf(b))
		}
		return nil
	})
	return views, nil
}
