package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/models"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/services/jobs"
)

type JobHandler struct {
	Jobs *jobs.Registry
}

func NewJobHandler(registry *jobs.Registry) *JobHandler {
	return &JobHandler{Jobs: registry}
}

func (h *JobHandler) Routes(r fiber.Router) {
	hirer := middleware.RequireRoles(string(models.RoleHirer))
	worker := middleware.RequireRoles(string(models.RoleWorker))

	r.Post("/jobs", hirer, h.Create)
	r.Get("/jobs/open", h.ListOpen)
	r.Get("/jobs/posted", h.ListPosted)
	r.Get("/jobs/accepted", h.ListAccepted)
	r.Get("/jobs/:id", h.Get)
	r.Get("/jobs/:id/quote", h.Quote)
	r.Get("/jobs/:id/payment", h.Payment)
	r.Post("/jobs/:id/accept", worker, h.Accept)
	r.Post("/jobs/:id/complete", hirer, h.Complete)
}

func (h *JobHandler) Create(c *fiber.Ctx) error {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}
	var in jobs.CreateInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	job, err := h.Jobs.Create(c.UserContext(), callerID, in)
	if err != nil {
		return err
	}
	return created(c, job)
}

func (h *JobHandler) Get(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	job, err := h.Jobs.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, job)
}

func (h *JobHandler) ListOpen(c *fiber.Ctx) error {
	list, err := h.Jobs.ListOpen(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, list)
}

// ListPosted lists the caller's own postings, filtered by ?status= or ?excludeCompleted=true.
func (h *JobHandler) ListPosted(c *fiber.Ctx) error {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}

	var list []models.Job
	if status := c.Query("status"); status != "" {
		list, err = h.Jobs.ListByPosterAndStatus(c.UserContext(), callerID, models.JobStatus(status))
	} else {
		exclude := false
		if raw := c.Query("excludeCompleted"); raw != "" {
			if exclude, err = strconv.ParseBool(raw); err != nil {
				return apperr.ValidationFailed("excludeCompleted must be a boolean")
			}
		}
		list, err = h.Jobs.ListByPoster(c.UserContext(), callerID, exclude)
	}
	if err != nil {
		return err
	}
	return ok(c, list)
}

func (h *JobHandler) ListAccepted(c *fiber.Ctx) error {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}
	var status *models.JobStatus
	if raw := c.Query("status"); raw != "" {
		s := models.JobStatus(raw)
		status = &s
	}
	list, err := h.Jobs.ListByAcceptor(c.UserContext(), callerID, status)
	if err != nil {
		return err
	}
	return ok(c, list)
}

func (h *JobHandler) Quote(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	q, err := h.Jobs.Quote(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, q)
}

func (h *JobHandler) Payment(c *fiber.Ctx) error {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Jobs.Payment(c.UserContext(), callerID, id)
	if err != nil {
		return err
	}
	return ok(c, p)
}

func (h *JobHandler) Accept(c *fiber.Ctx) error {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	job, err := h.Jobs.Accept(c.UserContext(), callerID, id)
	if err != nil {
		return err
	}
	return ok(c, job)
}

func (h *JobHandler) Complete(c *fiber.Ctx) error {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var in jobs.CompleteInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	job, err := h.Jobs.Complete(c.UserContext(), callerID, id, in)
	if err != nil {
		return err
	}
	return ok(c, job)
}
