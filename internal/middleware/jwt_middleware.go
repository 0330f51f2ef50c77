package middleware

import (
	"log"
	"strings"

	"bookstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SessionKey is the fiber.Ctx local holding the caller's *services.Session.
const SessionKey = "session"

// AuthRequired is a Fiber middleware that resolves the bearer token to a live session.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		session, err := authService.SessionFromToken(parts[1])
		if err != nil {
			log.Printf("Session token rejected: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired session",
				"error":   err.Error(),
			})
		}

		c.Locals(SessionKey, session)
		c.Locals("username", session.User.Username)
		return c.Next()
	}
}

// CurrentSession returns the session stored by AuthRequired, or nil.
func CurrentSession(c *fiber.Ctx) *services.Session {
	session, _ := c.Locals(SessionKey).(*services.Session)
	return session
}
