package payment

import (
	"github.com/gofiber/fiber/v2"

	"github.com/marcosvbento/storefront-backend/internal/apperr"
	"github.com/marcosvbento/storefront-backend/internal/user"
)

// Handler exposes payment operations. The webhook endpoint is public; the
// gateway authenticates it with its signature header instead of a user token.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/v1/payments/webhook", h.webhook)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/payments", h.create)
	app.Post("/api/v1/payments/process", h.process)
	app.Post("/api/v1/payments/:paymentId/cancel", h.cancel)
	app.Get("/api/v1/payments/order/:orderId", h.getByOrder)
}

type createPaymentRequest struct {
	OrderID string `json:"orderId"`
	Method  string `json:"method"`
}

func (h *Handler) create(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return err
	}

	payload := new(createPaymentRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.OrderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "orderId is required"})
	}

	p, err := h.service.Create(userID, user.IsAdminFromCtx(c), payload.OrderID, Method(payload.Method))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *Handler) process(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return err
	}

	payload := new(createPaymentRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.OrderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "orderId is required"})
	}

	p, err := h.service.Process(c.Context(), userID, user.IsAdminFromCtx(c), payload.OrderID, Method(payload.Method))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{
		"paymentId":    p.ID,
		"clientSecret": p.ClientSecret,
		"status":       p.Status,
	})
}

func (h *Handler) cancel(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return err
	}

	p, err := h.service.Cancel(c.Context(), userID, user.IsAdminFromCtx(c), c.Params("paymentId"))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) getByOrder(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return err
	}

	p, err := h.service.GetByOrder(c.Params("orderId"), userID, user.IsAdminFromCtx(c))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) webhook(c *fiber.Ctx) error {
	if err := h.service.HandleWebhook(c.Body(), c.Get("Stripe-Signature")); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"received": true})
}
