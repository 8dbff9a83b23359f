package http

import "github.com/gofiber/fiber/v2"

// DashboardSummary handles GET /dashboard/summary.
func (h *Handler) DashboardSummary(c *fiber.Ctx) error {
	return c.JSON(h.Dashboard.Summary(c.UserContext()))
}
