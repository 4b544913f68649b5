package product

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/marcosvbento/storefront-backend/internal/apperr"
	"github.com/marcosvbento/storefront-backend/internal/user"
)

// Handler delegates catalog operations to the product service. Reads are
// public; writes require the admin role.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/products", h.list)
	app.Get("/api/v1/products/featured", h.listFeatured)
	app.Get("/api/v1/products/:id", h.get)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/products", h.create)
	app.Put("/api/v1/products/:id", h.update)
	app.Delete("/api/v1/products/:id", h.delete)
}

type productRequest struct {
	Title           string   `json:"title"`
	Price           string   `json:"price"`
	DiscountedPrice *string  `json:"discountedPrice"`
	Stock           int      `json:"stock"`
	Category        string   `json:"category"`
	Featured        bool     `json:"featured"`
	Images          []string `json:"images"`
}

func (h *Handler) list(c *fiber.Ctx) error {
	products, err := h.service.List()
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(products)
}

func (h *Handler) listFeatured(c *fiber.Ctx) error {
	products, err := h.service.ListFeatured()
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(products)
}

func (h *Handler) get(c *fiber.Ctx) error {
	p, err := h.service.GetByID(c.Params("id"))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) create(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin role required"})
	}

	p, err := h.parseProduct(c)
	if err != nil {
		return apperr.Respond(c, err)
	}

	created, err := h.service.Create(p)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) update(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin role required"})
	}

	p, err := h.parseProduct(c)
	if err != nil {
		return apperr.Respond(c, err)
	}

	updated, err := h.service.Update(c.Params("id"), p)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) delete(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin role required"})
	}

	if err := h.service.Delete(c.Params("id")); err != nil {
		return apperr.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) parseProduct(c *fiber.Ctx) (Product, error) {
	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return Product{}, apperr.Validation(err.Error())
	}

	price, err := decimal.NewFromString(payload.Price)
	if err != nil {
		return Product{}, apperr.Validation("invalid price")
	}

	p := Product{
		Title:    payload.Title,
		Price:    price,
		Stock:    payload.Stock,
		Category: payload.Category,
		Featured: payload.Featured,
	}
	if payload.DiscountedPrice != nil {
		d, err := decimal.NewFromString(*payload.DiscountedPrice)
		if err != nil {
			return Product{}, apperr.Validation("invalid discountedPrice")
		}
		p.DiscountedPrice = &d
	}
	for _, url := range payload.Images {
		p.Images = append(p.Images, Image{URL: url})
	}
	return p, nil
}
