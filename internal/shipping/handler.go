package shipping

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/marcosvbento/storefront-backend/internal/apperr"
	"github.com/marcosvbento/storefront-backend/internal/user"
)

// Handler exposes the shipping calculator and the free-shipping rule admin
// surface.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/v1/shipping/validate-zipcode", h.validateZipCode)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/shipping/calculate", h.calculate)
	app.Get("/api/v1/shipping/free-shipping-rules", h.listRules)
	app.Get("/api/v1/shipping/free-shipping-rules/:ruleId", h.getRule)
	app.Post("/api/v1/shipping/free-shipping-rules", h.createRule)
	app.Put("/api/v1/shipping/free-shipping-rules/:ruleId", h.updateRule)
	app.Delete("/api/v1/shipping/free-shipping-rules/:ruleId", h.deleteRule)
}

type calculateRequest struct {
	ZipCode string      `json:"zipCode"`
	Items   []ItemInput `json:"items"`
}

type validateZipCodeRequest struct {
	ZipCode string `json:"zipCode"`
}

type ruleRequest struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	MinOrderValue     string   `json:"minOrderValue"`
	Regions           []string `json:"regions"`
	ProductCategories []string `json:"productCategories"`
	ServiceTypes      []string `json:"serviceTypes"`
	Active            *bool    `json:"active"`
}

func (h *Handler) validateZipCode(c *fiber.Ctx) error {
	payload := new(validateZipCodeRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	info, err := h.service.ValidateZipCode(c.Context(), payload.ZipCode)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(info)
}

func (h *Handler) calculate(c *fiber.Ctx) error {
	payload := new(calculateRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	result, err := h.service.Calculate(c.Context(), payload.ZipCode, payload.Items)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(result)
}

func (h *Handler) listRules(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin role required"})
	}

	rules, err := h.service.ListRules()
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(rules)
}

func (h *Handler) getRule(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin role required"})
	}

	rule, err := h.service.GetRule(c.Params("ruleId"))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(rule)
}

func (h *Handler) createRule(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin role required"})
	}

	rule, err := parseRule(c)
	if err != nil {
		return apperr.Respond(c, err)
	}

	created, err := h.service.CreateRule(rule)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateRule(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin role required"})
	}

	rule, err := parseRule(c)
	if err != nil {
		return apperr.Respond(c, err)
	}

	updated, err := h.service.UpdateRule(c.Params("ruleId"), rule)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) deleteRule(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin role required"})
	}

	if err := h.service.DeleteRule(c.Params("ruleId")); err != nil {
		return apperr.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseRule(c *fiber.Ctx) (FreeShippingRule, error) {
	payload := new(ruleRequest)
	if err := c.BodyParser(payload); err != nil {
		return FreeShippingRule{}, apperr.Validation(err.Error())
	}

	minValue := decimal.Zero
	if payload.MinOrderValue != "" {
		parsed, err := decimal.NewFromString(payload.MinOrderValue)
		if err != nil {
			return FreeShippingRule{}, apperr.Validation("invalid minOrderValue")
		}
		minValue = parsed
	}

	rule := FreeShippingRule{
		Name:              payload.Name,
		Description:       payload.Description,
		MinOrderValue:     minValue,
		Regions:           payload.Regions,
		ProductCategories: payload.ProductCategories,
		Active:            true,
	}
	if payload.Active != nil {
		rule.Active = *payload.Active
	}
	for _, t := range payload.ServiceTypes {
		rule.ServiceTypes = append(rule.ServiceTypes, ServiceType(t))
	}
	return rule, nil
}
