package favorite

import (
	"github.com/gofiber/fiber/v2"

	"github.com/marcosvbento/storefront-backend/internal/apperr"
	"github.com/marcosvbento/storefront-backend/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/favorites", h.list)
	app.Post("/api/v1/favorites", h.add)
	app.Delete("/api/v1/favorites/:productId", h.remove)
}

type addFavoriteRequest struct {
	ProductID string `json:"productId"`
}

func (h *Handler) list(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return err
	}

	favorites, err := h.service.List(userID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(favorites)
}

func (h *Handler) add(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return err
	}

	payload := new(addFavoriteRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "productId is required"})
	}

	f, err := h.service.Add(userID, payload.ProductID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(f)
}

func (h *Handler) remove(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return err
	}

	if err := h.service.Remove(userID, c.Params("productId")); err != nil {
		return apperr.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
