package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/models"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/utils"
)

// CallerLookup is the part of the user directory ResolveCaller needs.
type CallerLookup interface {
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
}

// ResolveCaller maps the verified token subject to the internal user and stores
// externalId, and when the user exists userId and role, in locals. Callers that
// have not created their profile yet pass through with externalId only.
func ResolveCaller(users CallerLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*utils.Claims)
		if !ok || claims == nil {
			return apperr.Unauthenticated("missing token")
		}

		ext := strings.TrimSpace(claims.Subject)
		c.Locals("externalId", ext)

		u, err := users.GetByExternalID(c.UserContext(), ext)
		if err != nil {
			return err
		}
		if u != nil {
			c.Locals("userId", u.ID)
			c.Locals("role", string(u.Role))
		}
		return c.Next()
	}
}

// CallerID returns the internal id ResolveCaller attached.
func CallerID(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := c.Locals("userId").(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, apperr.Unauthorized("create your profile first")
	}
	return id, nil
}

// ExternalID returns the token subject.
func ExternalID(c *fiber.Ctx) string {
	s, _ := c.Locals("externalId").(string)
	return s
}

// TokenClaims returns the verified claims.
func TokenClaims(c *fiber.Ctx) *utils.Claims {
	claims, _ := c.Locals("claims").(*utils.Claims)
	return claims
}
