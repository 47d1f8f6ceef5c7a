package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/services/users"
)

// SessionHandler lets browser clients trade the provider's bearer token for
// the jm_token cookie, which JWT then accepts on every request.
type SessionHandler struct {
	Users  *users.Directory
	Secure bool
}

func NewSessionHandler(dir *users.Directory, secure bool) *SessionHandler {
	return &SessionHandler{Users: dir, Secure: secure}
}

func (h *SessionHandler) Routes(r fiber.Router) {
	r.Post("/session", h.Login)
	r.Post("/session/logout", h.Logout)
}

// Login stores the caller's token in the cookie until the token expires and
// returns the caller's profile, null when they have not signed up yet.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	claims := middleware.TokenClaims(c)
	maxAge := 0
	if claims != nil && claims.ExpiresAt != nil {
		maxAge = int(time.Until(claims.ExpiresAt.Time).Seconds())
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    middleware.RawToken(c),
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.Secure,
		SameSite: "Lax",
		MaxAge:   maxAge,
	})

	u, err := h.Users.GetProfile(c.UserContext(), middleware.ExternalID(c))
	if err != nil {
		return err
	}
	return ok(c, u)
}

func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.Secure,
		SameSite: "Lax",
	})
	return c.JSON(fiber.Map{"success": true, "message": "logged out"})
}
