package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/utils"
)

const TokenCookie = "jm_token"

// JWT verifies the caller's token from the Authorization header, the jm_token
// cookie or, for websocket upgrades, the token query parameter.
func JWT(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := bearer(c.Get(fiber.HeaderAuthorization))
		if tokenStr == "" {
			tokenStr = c.Cookies(TokenCookie)
		}
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}
		if tokenStr == "" {
			return apperr.Unauthenticated("missing token")
		}

		claims, err := utils.ParseJWT(secret, tokenStr)
		if err != nil {
			return apperr.Unauthenticated("invalid token")
		}

		c.Locals("claims", claims)
		c.Locals("token", tokenStr)
		return c.Next()
	}
}

func bearer(h string) string {
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// RawToken returns the verified token string.
func RawToken(c *fiber.Ctx) string {
	s, _ := c.Locals("token").(string)
	return s
}
