package middleware

import (
	"github.com/gofiber/fiber/v2"

	"human-connection/internal/domain"
)

func RequireRole(requiredRole domain.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetCurrentUser(c)
		if user == nil {
			return Unauthorized("User not found")
		}

		if !user.HasRole(requiredRole) {
			return Forbidden("Insufficient permissions for this operation")
		}

		return c.Next()
	}
}

func IsModerator(c *fiber.Ctx) bool {
	user := GetCurrentUser(c)
	return user != nil && user.HasRole(domain.RoleModerator)
}

func IsAdmin(c *fiber.Ctx) bool {
	user := GetCurrentUser(c)
	return user != nil && user.HasRole(domain.RoleAdmin)
}
