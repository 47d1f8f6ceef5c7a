package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/services/reviews"
)

type ReviewHandler struct {
	Reviews *reviews.Store
}

func NewReviewHandler(store *reviews.Store) *ReviewHandler {
	return &ReviewHandler{Reviews: store}
}

func (h *ReviewHandler) Routes(r fiber.Router) {
	r.Post("/reviews", h.Create)
	r.Get("/reviews/job/:jobId", h.ByJob)
	r.Get("/reviews/reviewee/:userId", h.ByReviewee)
	r.Get("/reviews/reviewer/:userId", h.ByReviewer)
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	var in reviews.CreateInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	review, err := h.Reviews.Create(c.UserContext(), middleware.ExternalID(c), in)
	if err != nil {
		return err
	}
	return created(c, review)
}

func (h *ReviewHandler) ByJob(c *fiber.Ctx) error {
	id, err := paramUUID(c, "jobId")
	if err != nil {
		return err
	}
	list, err := h.Reviews.ListByJob(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, list)
}

func (h *ReviewHandler) ByReviewee(c *fiber.Ctx) error {
	id, err := paramUUID(c, "userId")
	if err != nil {
		return err
	}
	list, err := h.Reviews.ListByReviewee(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, list)
}

func (h *ReviewHandler) ByReviewer(c *fiber.Ctx) error {
	id, err := paramUUID(c, "userId")
	if err != nil {
		return err
	}
	list, err := h.Reviews.ListByReviewer(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, list)
}
