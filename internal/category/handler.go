package category

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/marcosvbento/storefront-backend/internal/apperr"
	"github.com/marcosvbento/storefront-backend/internal/user"
)

// Handler serves the category list straight from the repository; the module
// has no business rules of its own.
type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/categories", h.list)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/categories", h.create)
	app.Delete("/api/v1/categories/:categoryId", h.delete)
}

func (h *Handler) list(c *fiber.Ctx) error {
	categories, err := h.repo.List()
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(categories)
}

func (h *Handler) create(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin role required"})
	}

	payload := new(Category)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "name is required"})
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

	if err := h.repo.Delete(c.Params("categoryId")); err != nil {
		return apperr.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
