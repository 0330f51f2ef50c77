package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bookstore/internal/models"
	"bookstore/internal/repositories"
	"bookstore/internal/services"
)

// Shell is the numbered-menu terminal front end of the store.
type Shell struct {
	auth      *services.AuthService
	catalog   *services.CatalogService
	orders    *services.OrderService
	inventory *services.InventoryService

	in      *bufio.Scanner
	out     io.Writer
	session *services.Session
}

// NewShell creates a shell reading commands from in and writing to out.
func NewShell(auth *services.AuthService, catalog *services.CatalogService, orders *services.OrderService, inventory *services.InventoryService, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		auth:      auth,
		catalog:   catalog,
		orders:    orders,
		inventory: inventory,
		in:        bufio.NewScanner(in),
		out:       out,
	}
}

var errExit = errors.New("exit")

// Run drives the menus until the user exits or input ends, then saves the inventory.
func (s *Shell) Run() error {
	for {
		s.println("Welcome to the Book Store!")
		var err error
		if s.session == nil {
			err = s.mainMenu()
		} else {
			err = s.storeMenu()
		}
		if err != nil {
			if errors.Is(err, errExit) || errors.Is(err, io.EOF) {
				s.endSession()
				s.println("Goodbye!")
				return s.inventory.Flush()
			}
			return err
		}
	}
}

func (s *Shell) mainMenu() error {
	s.println("1. Login")
	s.println("2. Sign Up")
	s.println("3. Exit")
	choice, err := s.readChoice()
	if err != nil {
		return err
	}

	switch choice {
	case 1:
		return s.login()
	case 2:
		return s.signUp()
	case 3:
		return errExit
	default:
		s.println("Invalid choice. Please try again.")
	}
	return nil
}

func (s *Shell) storeMenu() error {
	for s.session != nil {
		s.println("Select an option:")
		s.println("1. Browse Book Catalog")
		s.println("2. Search for Books")
		s.println("3. View Cart")
		s.println("4. Process Order")
		s.println("5. View Wishlist")
		s.println("6. Rate and Review a Book")
		s.println("7. Log Out")
		s.println("8. Exit")
		choice, err := s.readChoice()
		if err != nil {
			return err
		}

		switch choice {
		case 1:
			err = s.browse()
		case 2:
			err = s.search()
		case 3:
			s.viewCart()
		case 4:
			err = s.processOrder()
		case 5:
			s.viewWishlist()
		case 6:
			err = s.review()
		case 7:
			s.logOut()
		case 8:
			return errExit
		default:
			s.println("Invalid choice. Please try again.")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Shell) login() error {
	username, err := s.prompt("Enter your username: ")
	if err != nil {
		return err
	}
	password, err := s.prompt("Enter your password: ")
	if err != nil {
		return err
	}

	session, err := s.auth.Login(strings.TrimSpace(username), strings.TrimSpace(password))
	if err != nil {
		s.println("Invalid login credentials.")
		return nil
	}
	s.session = session
	s.println("Login successful")
	return nil
}

func (s *Shell) signUp() error {
	username, err := s.prompt("Enter a new username: ")
	if err != nil {
		return err
	}
	password, err := s.prompt("Enter a password (at least 6 characters): ")
	if err != nil {
		return err
	}

	if _, err := s.auth.Register(username, password); err != nil {
		s.println(messageFor(err))
		return nil
	}
	s.println("Account created. You can now log in.")
	return nil
}

func (s *Shell) browse() error {
	books := s.catalog.ListBooks()
	s.println("Book Catalog:")
	s.printBooks(books)

	choice, err := s.readChoiceWithPrompt("Enter the number of the book to add to cart (0 to go back):")
	if err != nil {
		return err
	}
	if choice == 0 {
		return nil
	}
	if choice < 0 || choice > len(books) {
		s.println("Invalid choice. Please try again.")
		return nil
	}

	book, err := s.catalog.AddToCartAt(s.session, choice, false)
	if err != nil {
		s.println(messageFor(err))
		return nil
	}
	s.println("Added to cart: " + book.Title)

	answer, err := s.prompt("Do you want to add it to your Wishlist? (y/n): ")
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(answer), "y") {
		return nil
	}
	if _, err := s.catalog.AddToWishlistAt(s.session, choice); err != nil {
		s.println(messageFor(err))
		return nil
	}
	s.println(book.Title + " has been added to your Wishlist.")
	return nil
}

func (s *Shell) search() error {
	s.println("Search by:")
	s.println("1. Title")
	s.println("2. Author")
	choice, err := s.readChoice()
	if err != nil {
		return err
	}

	var field repositories.SearchField
	switch choice {
	case 1:
		field = repositories.SearchByTitle
	case 2:
		field = repositories.SearchByAuthor
	default:
		s.println("Invalid choice.")
		return nil
	}

	label := "title"
	if field == repositories.SearchByAuthor {
		label = "author"
	}
	keyword, err := s.prompt("Enter the " + label + ":")
	if err != nil {
		return err
	}

	results := s.catalog.Search(field, keyword)
	if len(results) == 0 {
		s.println("No books found.")
		return nil
	}
	s.println("Search results:")
	s.printBooks(results)
	return nil
}

func (s *Shell) viewCart() {
	items, total, err := s.catalog.CartContents(s.session)
	if err != nil {
		s.println(messageFor(err))
		return
	}
	s.println("Shopping Cart:")
	for _, b := range items {
		s.printf("- %s by %s - Rs %.2f\n", b.Title, b.Author, b.Price)
	}
	s.printf("Total Price: Rs %.2f\n", total)
}

func (s *Shell) processOrder() error {
	var promptErr error
	confirm := func(total float64) bool {
		s.printf("Total Price: Rs %.2f\n", total)
		answer, err := s.prompt("Confirm order? (y/n): ")
		if err != nil {
			promptErr = err
			return false
		}
		return strings.EqualFold(strings.TrimSpace(answer), "y")
	}

	order, err := s.orders.PlaceOrder(s.session, confirm)
	if promptErr != nil {
		return promptErr
	}
	if err != nil {
		s.println(messageFor(err))
		return nil
	}

	s.println("Order placed successfully!")
	for _, line := range services.Invoice(order) {
		s.println(line)
	}
	return nil
}

func (s *Shell) viewWishlist() {
	books, err := s.catalog.Wishlist(s.session)
	if err != nil {
		s.println(messageFor(err))
		return
	}
	s.println("Wishlist for " + s.session.User.Username + ":")
	for _, b := range books {
		s.printf("- %s by %s - Rs %.2f\n", b.Title, b.Author, b.Price)
	}
}

func (s *Shell) review() error {
	title, err := s.prompt("Enter the title of the book you want to rate and review:")
	if err != nil {
		return err
	}
	book, err := s.catalog.FindBook(title)
	if err != nil {
		s.println(messageFor(err))
		return nil
	}
	if book.Stock <= 0 {
		s.println(messageFor(models.ErrOutOfStock))
		return nil
	}

	rating, err := s.readChoiceWithPrompt("Enter your rating (1-5):")
	if err != nil {
		return err
	}
	if rating < 1 || rating > 5 {
		s.println(messageFor(models.ErrInvalidRating))
		return nil
	}
	comment, err := s.prompt("Enter your review:")
	if err != nil {
		return err
	}

	if err := s.catalog.SubmitReview(s.session, title, rating, comment); err != nil {
		s.println(messageFor(err))
		return nil
	}
	s.println("Thank you for your review!")
	return nil
}

func (s *Shell) logOut() {
	s.endSession()
	s.println("Logged out successfully.")
}

// endSession logs the current user out, returning unordered cart units to stock.
func (s *Shell) endSession() {
	if s.session == nil {
		return
	}
	if err := s.auth.Logout(s.session); err != nil {
		s.println(messageFor(err))
	}
	s.session = nil
}

func (s *Shell) printBooks(books []services.BookView) {
	for i, b := range books {
		s.printf("%d. %s by %s - Rs %.2f (Stock: %d)\n", i+1, b.Title, b.Author, b.Price, b.Stock)
	}
}

func (s *Shell) prompt(text string) (string, error) {
	s.println(text)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.in.Text(), nil
}

func (s *Shell) readChoice() (int, error) {
	return s.readChoiceWithPrompt("")
}

// readChoiceWithPrompt reads a number; anything unparsable reads as -1.
func (s *Shell) readChoiceWithPrompt(text string) (int, error) {
	var line string
	var err error
	if text == "" {
		if !s.in.Scan() {
			if err := s.in.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		line = s.in.Text()
	} else if line, err = s.prompt(text); err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return -1, nil
	}
	return n, nil
}

func (s *Shell) println(text string) {
	fmt.Fprintln(s.out, text)
}

func (s *Shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}
