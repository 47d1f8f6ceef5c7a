package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/services/users"
)

type UserHandler struct {
	Users *users.Directory
}

func NewUserHandler(dir *users.Directory) *UserHandler {
	return &UserHandler{Users: dir}
}

func (h *UserHandler) Routes(r fiber.Router) {
	r.Post("/users", h.Create)
	r.Get("/users/me", h.Me)
	r.Put("/users/me/profile", h.UpdateProfile)
	r.Post("/users/batch", h.Batch)
	r.Get("/users/external/:externalId", h.IDByExternalID)
	r.Get("/users/:id", h.Get)
}

// Create registers the caller on first sign-in. Name and email default to the token's claims.
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in users.CreateInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	in.ExternalID = middleware.ExternalID(c)
	if claims := middleware.TokenClaims(c); claims != nil {
		if in.Name == "" {
			in.Name = claims.Name
		}
		if in.Email == "" {
			in.Email = claims.Email
		}
	}

	u, isNew, err := h.Users.CreateUser(c.UserContext(), in)
	if err != nil {
		return err
	}
	if isNew {
		return created(c, u)
	}
	return ok(c, u)
}

// Me returns the caller's profile, or null before the first sign-in completes.
func (h *UserHandler) Me(c *fiber.Ctx) error {
	u, err := h.Users.GetProfile(c.UserContext(), middleware.ExternalID(c))
	if err != nil {
		return err
	}
	return ok(c, u)
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var in users.ProfileUpdate
	if err := bindBody(c, &in); err != nil {
		return err
	}
	in.ExternalID = middleware.ExternalID(c)

	u, err := h.Users.UpdateProfile(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, u)
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	u, err := h.Users.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.NotFound("user not found")
	}
	return ok(c, u)
}

func (h *UserHandler) Batch(c *fiber.Ctx) error {
	var req struct {
		IDs []uuid.UUID `json:"ids"`
	}
	if err := bindBody(c, &req); err != nil {
		return err
	}
	list, err := h.Users.GetByIDs(c.UserContext(), req.IDs)
	if err != nil {
		return err
	}
	return ok(c, list)
}

func (h *UserHandler) IDByExternalID(c *fiber.Ctx) error {
	id, err := h.Users.IDByExternalID(c.UserContext(), c.Params("externalId"))
	if err != nil {
		return err
	}
	return ok(c, id)
}
