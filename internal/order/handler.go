package order

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

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
	app.Post("/api/v1/orders", h.create)
	app.Get("/api/v1/orders", h.list)
	app.Get("/api/v1/orders/:orderId", h.get)
	app.Patch("/api/v1/orders/:orderId/status", h.updateStatus)
}

type createOrderRequest struct {
	AddressID     string `json:"addressId"`
	PaymentMethod string `json:"paymentMethod"`
	ShippingCost  string `json:"shippingCost"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) create(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return err
	}

	payload := new(createOrderRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	shippingCost := decimal.Zero
	if payload.ShippingCost != "" {
		parsed, err := decimal.NewFromString(payload.ShippingCost)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid shippingCost"})
		}
		shippingCost = parsed
	}

	o, err := h.service.Create(userID, payload.AddressID, payload.PaymentMethod, shippingCost)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *Handler) list(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return err
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", defaultPageLimit)

	orders, meta, err := h.service.List(userID, user.IsAdminFromCtx(c), c.Query("status"), page, limit)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"orders": orders, "meta": meta})
}

func (h *Handler) get(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return err
	}

	o, err := h.service.Get(c.Params("orderId"), userID, user.IsAdminFromCtx(c))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return err
	}

	payload := new(updateStatusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	status, err := ParseStatus(payload.Status)
	if err != nil {
		return apperr.Respond(c, err)
	}

	o, err := h.service.UpdateStatus(c.Params("orderId"), status, userID, user.IsAdminFromCtx(c))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(o)
}
