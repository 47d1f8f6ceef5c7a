package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/apperr"
)

// RequireRoles admits callers whose stored role is one of allowed. It must run
// after ResolveCaller.
func RequireRoles(allowed ...string) fiber.Handler {
	allowedSet := map[string]bool{}
	for _, r := range allowed {
		allowedSet[strings.ToLower(r)] = true
	}

	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if role == "" {
			return apperr.Unauthorized("create your profile first")
		}
		if !allowedSet[strings.ToLower(role)] {
			return apperr.Unauthorized("forbidden: insufficient role")
		}
		return c.Next()
	}
}
