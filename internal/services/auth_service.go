package services

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"bookstore/internal/models"
	"bookstore/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
)

// AuthService handles registration, login and session tokens.
// Passwords are stored and compared as plain text.
type AuthService struct {
	directory  *repositories.AccountDirectory
	catalog    *repositories.Catalog
	gateway    repositories.Gateway
	sessions   *SessionManager
	validate   *validator.Validate
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which a session and its token are valid
	usersMu    sync.Mutex    // serializes user store writes
}

// NewAuthService creates a new AuthService.
func NewAuthService(directory *repositories.AccountDirectory, catalog *repositories.Catalog, gateway repositories.Gateway, sessions *SessionManager, jwtSecret string, tokenDurat time.Duration) *AuthService {
	return &AuthService{
		directory:  directory,
		catalog:    catalog,
		gateway:    gateway,
		sessions:   sessions,
		validate:   validator.New(),
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenDurat,
	}
}

// Register creates a user and writes the user store right away.
// A failed write is logged; the user stays registered in memory.
func (s *AuthService) Register(username, password string) (*models.User, error) {
	if s.directory.FindByUsername(username) != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrDuplicateUsername, username)
	}

	user := models.NewUser(username, password)
	if err := s.validateUser(user); err != nil {
		return nil, err
	}
	if err := s.directory.Add(user); err != nil {
		return nil, err
	}

	if err := s.saveUsers(); err != nil {
		log.Printf("Error saving users after registering %s: %v", username, err)
	}
	return user, nil
}

// saveUsers snapshots and writes the whole directory under usersMu.
func (s *AuthService) saveUsers() error {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	return s.gateway.SaveUsers(s.directory.Records())
}

func (s *AuthService) validateUser(user *models.User) error {
	err := s.validate.Struct(user)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("failed to validate user: %w", err)
	}
	return models.ErrWeakPassword
}

// Authenticate returns the user whose username and password both match exactly.
func (s *AuthService) Authenticate(username, password string) (*models.User, error) {
	user := s.directory.Authenticate(username, password)
	if user == nil {
		return nil, models.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates the user and opens a session with an empty cart.
// The session lives as long as its token.
func (s *AuthService) Login(username, password string) (*Session, error) {
	user, err := s.Authenticate(username, password)
	if err != nil {
		return nil, err
	}
	return s.sessions.Open(user, s.tokenDurat), nil
}

// Logout ends the session and returns any stock reserved by its cart.
func (s *AuthService) Logout(session *Session) error {
	if err := requireSession(session); err != nil {
		return err
	}
	s.sessions.Close(session.ID)
	return s.release(session)
}

// ReapExpired ends every session that expired by now, releasing reserved
// stock the same way Logout does. It returns how many sessions ended.
func (s *AuthService) ReapExpired(now time.Time) int {
	expired := s.sessions.CloseExpired(now)
	for _, session := range expired {
		if err := s.release(session); err != nil {
			log.Printf("Error releasing cart of expired session %s: %v", session.ID, err)
		}
	}
	if len(expired) > 0 {
		log.Printf("Ended %d expired session(s)", len(expired))
	}
	return len(expired)
}

// EndAllSessions ends every live session and releases their reserved stock.
func (s *AuthService) EndAllSessions() int {
	sessions := s.sessions.CloseAll()
	for _, session := range sessions {
		if err := s.release(session); err != nil {
			log.Printf("Error releasing cart of session %s: %v", session.ID, err)
		}
	}
	return len(sessions)
}

// release empties the session's cart and restocks its reserved units.
func (s *AuthService) release(session *Session) error {
	return s.catalog.Update(func(tx *repositories.CatalogTx) error {
		for _, item := range session.Cart.Clear() {
			if item.Reserved {
				tx.Restock(item.Book, 1)
			}
		}
		return nil
	})
}

// Session looks up a live session by ID.
func (s *AuthService) Session(id string) (*Session, error) {
	return s.sessions.Get(id)
}

// IssueToken signs a token that identifies the session.
func (s *AuthService) IssueToken(session *Session) (string, error) {
	if err := requireSession(session); err != nil {
		return "", err
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"session_id": session.ID,
		"username":   session.User.Username,
		"exp":        time.Now().Add(s.tokenDurat).Unix(),
		"iat":        time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// SessionFromToken resolves a token to its live session.
func (s *AuthService) SessionFromToken(tokenString string) (*Session, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	id, ok := claims["session_id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("invalid token: missing session id")
	}
	return s.sessions.Get(id)
}
