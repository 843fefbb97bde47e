package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "soltienda/internal/log"
	"soltienda/internal/services"
)

type DashboardHandler struct {
	Dash *services.DashboardService
}

// GET /api/dashboard/stats  (admin)
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.Dash.Stats()
	if err != nil {
		applog.Error(c, "dashboard.stats.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not load stats")
	}
	return c.JSON(stats)
}

// GET /api/customers  (admin)
func (h *DashboardHandler) Customers(c *fiber.Ctx) error {
	customers, err := h.Dash.Customers()
	if err != nil {
		applog.Error(c, "customers.list.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not load customers")
	}
	return c.JSON(customers)
}
