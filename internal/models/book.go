package models

// Review is a single rating left on a book. Reviews are never edited.
type Review struct {
	Username string `json:"username"`
	Rating   int    `json:"rating" validate:"min=1,max=5"`
	Comment  string `json:"comment"`
}

// Book represents a title in the store catalog.
// Stock and Reviews are guarded by the owning catalog's lock.
type Book struct {
	Title   string   `json:"title"`
	Author  string   `json:"author"`
	Price   float64  `json:"price" validate:"gte=0"`
	Stock   int      `json:"stock"`
	Reviews []Review `json:"reviews"`
}

// NewBook creates a book with no reviews.
func NewBook(title, author string, price float64, stock int) *Book {
	return &Book{
		Title:  title,
		Author: author,
		Price:  price,
		Stock:  stock,
	}
}

// AverageRating returns the mean rating, or 0 when the book has no reviews.
func (b *Book) AverageRating() float64 {
	if len(b.Reviews) == 0 {
		return 0
	}
	total := 0
	for _, r := range b.Reviews {
		total += r.Rating
	}
	return float64(total) / float64(len(b.Reviews))
}
