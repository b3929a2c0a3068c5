package order

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/wichananm65/apparel-shop-backend/internal/upload"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/api/v1/orders/:code", h.getPublicOrder)
	app.Post("/api/v1/orders/:code/payment-proof", h.uploadProof)
}

// RegisterAdminRoutes expects r to be mounted at /api/v1/admin behind the
// admin guard.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/orders", h.listOrders)
	r.Get("/orders/:code", h.getOrder)
	r.Patch("/orders/:code", h.updateStatus)
	r.Get("/orders/:code/payment-proof", h.getProof)
}

// statusFor maps service errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrNoProof):
		return fiber.StatusNotFound
	case errors.Is(err, ErrIllegalTransition), errors.Is(err, ErrStatusConflict),
		errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrDuplicateOrder):
		return fiber.StatusConflict
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidOrder),
		errors.Is(err, ErrProofNotAllowed), upload.IsValidation(err):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// Error writes err as a JSON message with the mapped status.
func Error(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"message": err.Error()})
}

// codeParam copies the order code out of the request buffer.
func codeParam(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("code"))
}

func (h *Handler) getPublicOrder(c *fiber.Ctx) error {
	o, err := h.service.Get(c.UserContext(), codeParam(c))
	if err != nil {
		return Error(c, err)
	}
	return c.JSON(o.Public())
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	o, err := h.service.Get(c.UserContext(), codeParam(c))
	if err != nil {
		return Error(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) listOrders(c *fiber.Ctx) error {
	f := ListFilter{Status: Status(strings.ToLower(strings.TrimSpace(c.Query("status"))))}
	orders, err := h.service.List(c.UserContext(), f)
	if err != nil {
		return Error(c, err)
	}
	return c.JSON(orders)
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	u := new(StatusUpdate)
	if err := c.BodyParser(u); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	o, err := h.service.SetStatus(c.UserContext(), codeParam(c), *u)
	if err != nil {
		return Error(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) uploadProof(c *fiber.Ctx) error {
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

	p := Proof{ContentType: img.ContentType, Data: img.Data, Note: utils.CopyString(strings.TrimSpace(c.FormValue("note")))}
	if err := h.service.AttachPaymentProof(c.UserContext(), codeParam(c), p); err != nil {
		return Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "payment proof received"})
}

func (h *Handler) getProof(c *fiber.Ctx) error {
	p, err := h.service.LatestProof(c.UserContext(), codeParam(c))
	if err != nil {
		return Error(c, err)
	}
	c.Set(fiber.HeaderContentType, p.ContentType)
	return c.Send(p.Data)
}
