package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "soltienda/internal/log"
	"soltienda/internal/services"
	"soltienda/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

// GET /api/cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	cv, err := h.Cart.View(ensureSID(c))
	if err != nil {
		applog.Error(c, "cart.view.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not load cart")
	}
	return c.JSON(cv)
}

type addItemReq struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// POST /api/cart/items
func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req addItemReq
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "malformed body")
	}
	id, ok := validate.ID(req.ProductID)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return jsonError(c, fiber.StatusBadRequest, "missing productId")
	}
	qty := req.Quantity
	if qty < 1 {
		qty = 1
	}
	if err := h.Cart.Add(sid, id, qty); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return jsonError(c, fiber.StatusNotFound, "product not found")
		}
		applog.Error(c, "cart.add.fail", err, map[string]any{"product_id": id})
		return jsonError(c, fiber.StatusInternalServerError, "could not update cart")
	}
	return h.View(c)
}

type updateQtyReq struct {
	Quantity int `json:"quantity"`
}

// PUT /api/cart/items/:productId
func (h *CartHandler) UpdateQuantity(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, ok := validate.ID(c.Params("productId"))
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "item not in cart")
	}
	var req updateQtyReq
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "malformed body")
	}
	if err := h.Cart.UpdateQuantity(sid, id, req.Quantity); err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			return jsonError(c, fiber.StatusNotFound, "item not in cart")
		}
		applog.Error(c, "cart.update.fail", err, map[string]any{"product_id": id})
		return jsonError(c, fiber.StatusInternalServerError, "could not update cart")
	}
	return h.View(c)
}

// DELETE /api/cart/items/:productId
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, ok := validate.ID(c.Params("productId"))
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "item not in cart")
	}
	if err := h.Cart.Remove(sid, id); err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			return jsonError(c, fiber.StatusNotFound, "item not in cart")
		}
		applog.Error(c, "cart.remove.fail", err, map[string]any{"product_id": id})
		return jsonError(c, fiber.StatusInternalServerError, "could not update cart")
	}
	return h.View(c)
}

// DELETE /api/cart
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	sid := ensureSID(c)
	if err := h.Cart.Clear(sid); err != nil {
		applog.Error(c, "cart.clear.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not update cart")
	}
	return h.View(c)
}
