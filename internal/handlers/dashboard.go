package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/services/dashboard"
)

type DashboardHandler struct {
	Dashboard *dashboard.DashboardService
}

func NewDashboardHandler(svc *dashboard.DashboardService) *DashboardHandler {
	return &DashboardHandler{Dashboard: svc}
}

// Get returns the role-specific dashboard summary.
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	uid, role, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	stats, err := h.Dashboard.For(c.UserContext(), uid, role)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, stats)
}
