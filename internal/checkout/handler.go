package checkout

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/apparel-shop-backend/internal/address"
	"github.com/wichananm65/apparel-shop-backend/internal/cart"
	"github.com/wichananm65/apparel-shop-backend/internal/order"
	"github.com/wichananm65/apparel-shop-backend/internal/upload"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	g := app.Group("/api/v1/checkout")
	g.Get("/", h.getState)
	g.Put("/customer", h.setCustomer)
	g.Put("/address", h.setAddress)
	g.Put("/pincode", h.setPincode)
	g.Put("/locality", h.selectLocality)
	g.Post("/logo", h.attachLogo)
	g.Delete("/logo", h.removeLogo)
	g.Post("/next", h.next)
	g.Post("/back", h.back)
	g.Put("/payment-method", h.setPaymentMethod)
	g.Post("/submit", h.submit)
	g.Post("/upi/confirm", h.confirmUPI)
}

func fail(c *fiber.Ctx, err error) error {
	var ves address.ValidationErrors
	switch {
	case errors.As(err, &ves):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": ves})
	case errors.Is(err, cart.ErrNoSession):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "missing " + cart.SessionHeader + " header"})
	case errors.Is(err, ErrNoPendingPayment):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrWrongStep):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrNoPaymentMethod), errors.Is(err, address.ErrUnknownLocality):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return order.Error(c, err)
	}
}

func (h *Handler) session(c *fiber.Ctx) string {
	id, _ := cart.SessionID(c)
	return id
}

func (h *Handler) reply(c *fiber.Ctx, st State, err error) error {
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(st)
}

func (h *Handler) getState(c *fiber.Ctx) error {
	st, err := h.service.State(c.UserContext(), h.session(c))
	return h.reply(c, st, err)
}

func (h *Handler) setCustomer(c *fiber.Ctx) error {
	cu := new(address.Customer)
	if err := c.BodyParser(cu); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	st, err := h.service.SetCustomer(c.UserContext(), h.session(c), *cu)
	return h.reply(c, st, err)
}

func (h *Handler) setAddress(c *fiber.Ctx) error {
	a := new(address.Address)
	if err := c.BodyParser(a); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	st, err := h.service.SetAddress(c.UserContext(), h.session(c), *a)
	return h.reply(c, st, err)
}

type pincodeRequest struct {
	Pincode string `json:"pincode"`
}

func (h *Handler) setPincode(c *fiber.Ctx) error {
	req := new(pincodeRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	st, err := h.service.SetPincode(c.UserContext(), h.session(c), req.Pincode)
	return h.reply(c, st, err)
}

type localityRequest struct {
	City string `json:"city"`
}

func (h *Handler) selectLocality(c *fiber.Ctx) error {
	req := new(localityRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	st, err := h.service.SelectLocality(c.UserContext(), h.session(c), req.City)
	return h.reply(c, st, err)
}

func (h *Handler) attachLogo(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": map[string]string{"logo": "file is required"}})
	}
	img, err := upload.ReadImage(file)
	if err != nil {
		if upload.IsValidation(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": map[string]string{"logo": err.Error()}})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	st, err := h.service.AttachLogo(c.UserContext(), h.session(c), img)
	return h.reply(c, st, err)
}

func (h *Handler) removeLogo(c *fiber.Ctx) error {
	st, err := h.service.RemoveLogo(c.UserContext(), h.session(c))
	return h.reply(c, st, err)
}

func (h *Handler) next(c *fiber.Ctx) error {
	st, err := h.service.Next(c.UserContext(), h.session(c))
	return h.reply(c, st, err)
}

func (h *Handler) back(c *fiber.Ctx) error {
	st, err := h.service.Back(c.UserContext(), h.session(c))
	return h.reply(c, st, err)
}

type paymentMethodRequest struct {
	PaymentMethod order.PaymentMethod `json:"paymentMethod"`
}

func (h *Handler) setPaymentMethod(c *fiber.Ctx) error {
	req := new(paymentMethodRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	st, err := h.service.SetPaymentMethod(c.UserContext(), h.session(c), req.PaymentMethod)
	return h.reply(c, st, err)
}

func (h *Handler) submit(c *fiber.Ctx) error {
	res, err := h.service.Submit(c.UserContext(), h.session(c))
	if err != nil {
		return fail(c, err)
	}
	status := fiber.StatusCreated
	if res.PaymentMethod == order.MethodUPI {
		status = fiber.StatusAccepted
	}
	return c.Status(status).JSON(res)
}

func (h *Handler) confirmUPI(c *fiber.Ctx) error {
	res, err := h.service.ConfirmUPI(c.UserContext(), h.session(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}
