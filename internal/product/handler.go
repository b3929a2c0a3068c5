package product

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/apparel-shop-backend/internal/upload"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/api/v1/products", h.getProducts)
	app.Get("/api/v1/product/:id<[0-9]+>", h.getProduct)
	app.Get("/api/v1/product/:id<[0-9]+>/image", h.getImage)
}

// RegisterAdminRoutes expects r to be mounted at /api/v1/admin behind the
// admin guard.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/products", h.adminListProducts)
	r.Patch("/products/:id<[0-9]+>", h.updateProduct)
	r.Patch("/variants/:id<[0-9]+>", h.updateStock)
	r.Post("/products/:id<[0-9]+>/image", h.uploadImage)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	products, err := h.service.List(c.UserContext(), strings.TrimSpace(c.Query("category")))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(products)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	p, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(p)
}

func (h *Handler) getImage(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid id")
	}
	img, err := h.service.Image(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoImage) {
			return c.Status(fiber.StatusNotFound).SendString("image not available")
		}
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}
	ct := img.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	c.Set(fiber.HeaderContentType, ct)
	c.Set(fiber.HeaderCacheControl, "public, max-age=300")
	return c.Send(img.Data)
}

func (h *Handler) adminListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(products)
}

func validateUpdate(u *Update) map[string]string {
	errs := map[string]string{}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		errs["name"] = "name must not be empty"
	}
	if u.Price != nil && *u.Price < 0 {
		errs["price"] = "price must be >= 0"
	}
	return errs
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	u := new(Update)
	if err := c.BodyParser(u); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if ves := validateUpdate(u); len(ves) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": ves})
	}

	updated, err := h.service.Update(c.UserContext(), id, *u)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(updated)
}

type stockRequest struct {
	Stock *int `json:"stock"`
}

func (h *Handler) updateStock(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	payload := new(stockRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Stock == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": map[string]string{"stock": "stock is required"}})
	}

	v, err := h.service.SetStock(c.UserContext(), id, *payload.Stock)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidStock):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": map[string]string{"stock": err.Error()}})
		case errors.Is(err, ErrVariantNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "variant not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.JSON(v)
}

func (h *Handler) uploadImage(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "file is required"})
	}
	img, err := upload.ReadImage(file)
	if err != nil {
		if upload.IsValidation(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": map[string]string{"file": err.Error()}})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	if err := h.service.SetImage(c.UserContext(), id, img); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "ok", "imageUrl": ImagePath(id)})
}
