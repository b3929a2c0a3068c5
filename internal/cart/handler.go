package cart

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// SessionHeader carries the storefront session id.
const SessionHeader = "X-Session-ID"

// SessionID reads and sanity-checks the session header. The result is a
// copy, so it can outlive the request.
func SessionID(c *fiber.Ctx) (string, error) {
	id := strings.TrimSpace(c.Get(SessionHeader))
	if id == "" || len(id) > 128 {
		return "", ErrNoSession
	}
	return utils.CopyString(id), nil
}

// Handler delegates cart operations to the cart service.
// This keeps cart-specific HTTP routing isolated.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/api/v1/cart", h.getCart)
	app.Post("/api/v1/cart/items", h.addToCart)
	app.Patch("/api/v1/cart/items/:lineId", h.updateQuantity)
	app.Delete("/api/v1/cart/items/:lineId", h.removeItem)
	app.Delete("/api/v1/cart", h.clearCart)
}

type addItemRequest struct {
	ProductID int    `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int    `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	ImageRef  string `json:"imageRef"`
	LogoRef   string `json:"logoRef"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	Items      []Item `json:"items"`
	Count      int    `json:"count"`
	TotalPrice int    `json:"totalPrice"`
}

func toResponse(s *Store) cartResponse {
	return cartResponse{Items: s.Items(), Count: s.Count(), TotalPrice: s.TotalPrice()}
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	sid, err := SessionID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	st, err := h.service.GetCart(c.UserContext(), sid)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(toResponse(st))
}

func (h *Handler) addToCart(c *fiber.Ctx) error {
	sid, err := SessionID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	payload := new(addItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}
	if payload.UnitPrice < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "unitPrice must be >= 0"})
	}

	st, err := h.service.AddToCart(c.UserContext(), sid, Item{
		ProductID: payload.ProductID,
		Name:      strings.TrimSpace(payload.Name),
		UnitPrice: payload.UnitPrice,
		Quantity:  payload.Quantity,
		Size:      strings.TrimSpace(payload.Size),
		Color:     strings.TrimSpace(payload.Color),
		ImageRef:  payload.ImageRef,
		LogoRef:   payload.LogoRef,
	})
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
		}
		if errors.Is(err, ErrUnknownProduct) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.Status(fiber.StatusOK).JSON(toResponse(st))
}

func (h *Handler) updateQuantity(c *fiber.Ctx) error {
	sid, err := SessionID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	payload := new(quantityRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	st, err := h.service.UpdateQuantity(c.UserContext(), sid, c.Params("lineId"), payload.Quantity)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(toResponse(st))
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	sid, err := SessionID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	st, err := h.service.RemoveItem(c.UserContext(), sid, c.Params("lineId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(toResponse(st))
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	sid, err := SessionID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := h.service.ClearCart(c.UserContext(), sid); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
