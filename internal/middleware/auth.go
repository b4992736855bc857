package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"human-connection/internal/domain"
	"human-connection/internal/service/auth"
)

const (
	UserContextKey   = "user"
	UserIDContextKey = "user_id"
)

func AuthRequired(authService auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return Unauthorized("Missing authorization header")
		}

		user, err := authenticate(c, authService, authHeader)
		if err != nil {
			return err
		}

		c.Locals(UserContextKey, user)
		c.Locals(UserIDContextKey, user.ID)

		return c.Next()
	}
}

// OptionalAuth identifies the viewer when a valid token is sent and lets
// anonymous requests through untouched.
func OptionalAuth(authService auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Next()
		}

		user, err := authenticate(c, authService, authHeader)
		if err != nil {
			return err
		}

		c.Locals(UserContextKey, user)
		c.Locals(UserIDContextKey, user.ID)

		return c.Next()
	}
}

func authenticate(c *fiber.Ctx, authService auth.Service, authHeader string) (*domain.User, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, Unauthorized("Invalid authorization header format")
	}

	claims, err := authService.ValidateAccessToken(parts[1])
	if err != nil {
		return nil, Unauthorized("Invalid or expired token")
	}

	user, err := authService.GetUserByID(c.UserContext(), claims.UserID)
	if err != nil || user == nil {
		return nil, Unauthorized("User not found")
	}
	if user.Disabled {
		return nil, Unauthorized("Account is disabled")
	}
	return user, nil
}

func GetCurrentUser(c *fiber.Ctx) *domain.User {
	user, ok := c.Locals(UserContextKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}

func GetCurrentUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals(UserIDContextKey).(string)
	return userID
}

// GetViewer returns the requesting user, or the anonymous viewer.
func GetViewer(c *fiber.Ctx) domain.Viewer {
	return domain.ViewerOf(GetCurrentUser(c))
}
