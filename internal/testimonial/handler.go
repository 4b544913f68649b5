package testimonial

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/marcosvbento/storefront-backend/internal/apperr"
	"github.com/marcosvbento/storefront-backend/internal/user"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/testimonials", h.list)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/testimonials", h.create)
	app.Delete("/api/v1/testimonials/:testimonialId", h.delete)
}

func (h *Handler) list(c *fiber.Ctx) error {
	testimonials, err := h.repo.List()
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(testimonials)
}

func (h *Handler) create(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin role required"})
	}

	payload := new(Testimonial)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Author == "" || payload.Quote == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "author and quote are required"})
	}

	payload.ID = uuid.NewString()
	created, err := h.repo.Create(*payload)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) delete(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin role required"})
	}

	if err := h.repo.Delete(c.Params("testimonialId")); err != nil {
		return apperr.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
