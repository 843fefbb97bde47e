package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"soltienda/internal/domain"
	applog "soltienda/internal/log"
	"soltienda/internal/receipt"
	"soltienda/internal/services"
	"soltienda/internal/validate"
)

type OrderHandler struct {
	Order *services.OrderService
}

type createOrderReq struct {
	CustomerInfo  domain.CustomerInfo `json:"customerInfo"`
	Items         []domain.OrderItem  `json:"items"`
	PaymentMethod string              `json:"paymentMethod"`
	Total         *float64            `json:"total"`
}

// validCustomer checks the four required fields, returning the first bad one.
func validCustomer(info domain.CustomerInfo) (domain.CustomerInfo, string) {
	name, ok := validate.Name(info.Name)
	if !ok {
		return info, "name"
	}
	email, ok := validate.Email(info.Email)
	if !ok {
		return info, "email"
	}
	phone, ok := validate.Phone(info.Phone)
	if !ok {
		return info, "phone"
	}
	address, ok := validate.Address(info.Address)
	if !ok {
		return info, "address"
	}
	return domain.CustomerInfo{Name: name, Email: email, Phone: phone, Address: address}, ""
}

// POST /api/orders: the storefront submits its cart contents directly.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var req createOrderReq
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "malformed body")
	}
	info, bad := validCustomer(req.CustomerInfo)
	if bad != "" {
		applog.Security(c, "validation.fail", map[string]any{"field": bad})
		return jsonError(c, fiber.StatusBadRequest, "invalid customer "+bad)
	}
	payment, ok := validate.PaymentMethod(req.PaymentMethod)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "paymentMethod"})
		return jsonError(c, fiber.StatusBadRequest, "invalid payment method")
	}
	clientTotal := -1.0
	if req.Total != nil {
		clientTotal = *req.Total
	}

	o, err := h.Order.Create(info, req.Items, payment, clientTotal)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCart):
			return jsonError(c, fiber.StatusBadRequest, "cart is empty")
		case errors.Is(err, services.ErrTotalMismatch):
			applog.Security(c, "order.total.mismatch", map[string]any{"error": err.Error()})
			return jsonError(c, fiber.StatusBadRequest, "total does not match items")
		default:
			applog.Error(c, "orders.create.fail", err, nil)
			return jsonError(c, fiber.StatusInternalServerError, "could not save order")
		}
	}
	applog.Audit(c, "orders.create", map[string]any{"order_id": o.ID, "total": o.Total})
	return c.Status(fiber.StatusCreated).JSON(o)
}

type checkoutReq struct {
	CustomerInfo  domain.CustomerInfo `json:"customerInfo"`
	PaymentMethod string              `json:"paymentMethod"`
}

// POST /api/checkout converts the server-held session cart into an order.
// The cart survives any failure here so the shopper can retry.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req checkoutReq
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "malformed body")
	}
	info, bad := validCustomer(req.CustomerInfo)
	if bad != "" {
		applog.Security(c, "validation.fail", map[string]any{"field": bad})
		return jsonError(c, fiber.StatusBadRequest, "invalid customer "+bad)
	}
	payment, ok := validate.PaymentMethod(req.PaymentMethod)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "paymentMethod"})
		return jsonError(c, fiber.StatusBadRequest, "invalid payment method")
	}

	o, err := h.Order.Checkout(sid, info, payment)
	if err != nil {
		if errors.Is(err, services.ErrEmptyCart) {
			return jsonError(c, fiber.StatusBadRequest, "cart is empty")
		}
		applog.Error(c, "checkout.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not place order")
	}
	applog.Audit(c, "checkout.place", map[string]any{"order_id": o.ID, "total": o.Total})
	return c.Status(fiber.StatusCreated).JSON(o)
}

// GET /api/orders  (admin)
func (h *OrderHandler) List(c *fiber.Ctx) error {
	orders, err := h.Order.List()
	if err != nil {
		applog.Error(c, "orders.list.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not load orders")
	}
	return c.JSON(orders)
}

// GET /api/orders/:id
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	o, ok := h.getOrder(c)
	if !ok {
		return nil
	}
	return c.JSON(o)
}

type updateStatusReq struct {
	Status string `json:"status"`
}

// PUT /api/orders/:id/status  (admin)
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "order not found")
	}
	var req updateStatusReq
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "malformed body")
	}

	o, err := h.Order.UpdateStatus(id, domain.Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			return jsonError(c, fiber.StatusNotFound, "order not found")
		case errors.Is(err, domain.ErrInvalidTransition):
			applog.Security(c, "orders.status.reject", map[string]any{"order_id": id, "status": req.Status})
			return jsonError(c, fiber.StatusBadRequest, err.Error())
		default:
			applog.Error(c, "orders.status.fail", err, map[string]any{"order_id": id})
			return jsonError(c, fiber.StatusInternalServerError, "could not update order")
		}
	}
	applog.Audit(c, "orders.status.update", map[string]any{"order_id": id, "status": req.Status})
	return c.JSON(o)
}

// GET /api/orders/:id/pdf
func (h *OrderHandler) PDF(c *fiber.Ctx) error {
	o, ok := h.getOrder(c)
	if !ok {
		return nil
	}
	b, rerr := receipt.Render(o)
	if rerr != nil {
		// A total that disagrees with its items is corrupt data, not a bad request.
		applog.Error(c, "orders.pdf.fail", rerr, map[string]any{"order_id": o.ID})
		return jsonError(c, fiber.StatusInternalServerError, "could not generate receipt")
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename=orden-`+o.ID+`.pdf`)
	return c.Send(b)
}

// getOrder loads the path order, writing the error response itself when the
// returned bool is false.
func (h *OrderHandler) getOrder(c *fiber.Ctx) (domain.Order, bool) {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		_ = jsonError(c, fiber.StatusNotFound, "order not found")
		return domain.Order{}, false
	}
	o, err := h.Order.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			_ = jsonError(c, fiber.StatusNotFound, "order not found")
			return domain.Order{}, false
		}
		applog.Error(c, "orders.get.fail", err, map[string]any{"order_id": id})
		_ = jsonError(c, fiber.StatusInternalServerError, "could not load order")
		return domain.Order{}, false
	}
	return o, true
}
