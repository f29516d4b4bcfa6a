package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/services/escrow"
)

type PaymentHandler struct {
	Escrow *escrow.EscrowService
}

func NewPaymentHandler(svc *escrow.EscrowService) *PaymentHandler {
	return &PaymentHandler{Escrow: svc}
}

func (h *PaymentHandler) List(c *fiber.Ctx) error {
	uid, _, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	status := c.Query("status")
	switch models.PaymentStatus(status) {
	case "", models.PaymentPending, models.PaymentEscrowed, models.PaymentReleased, models.PaymentRefunded:
	default:
		return fail(c, apperr.Invalid("Unknown payment status"))
	}

	payments, err := h.Escrow.ListForUser(c.UserContext(), uid, status)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, payments)
}

func (h *PaymentHandler) Get(c *fiber.Ctx) error {
	uid, role, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	detail, err := h.Escrow.Get(c.UserContext(), uid, role, id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, detail)
}

// Transition returns the handler for one escrow action.
func (h *PaymentHandler) Transition(action escrow.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, _, err := getAuth(c)
		if err != nil {
			return fail(c, err)
		}
		id, err := paramUUID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		p, err := h.Escrow.Apply(c.UserContext(), uid, id, action)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, p)
	}
}
