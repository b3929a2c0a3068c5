package enquiry

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/apparel-shop-backend/internal/address"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Post("/api/v1/enquiries", h.createEnquiry)
}

// RegisterAdminRoutes expects r to be mounted at /api/v1/admin.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/enquiries", h.listEnquiries)
}

func (h *Handler) createEnquiry(c *fiber.Ctx) error {
	e := new(Enquiry)
	if err := c.BodyParser(e); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	created, err := h.service.Submit(c.UserContext(), *e)
	if err != nil {
		var ves address.ValidationErrors
		if errors.As(err, &ves) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": ves})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) listEnquiries(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(items)
}
