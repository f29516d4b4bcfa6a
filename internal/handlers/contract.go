package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/services/contracting"
)

type ContractHandler struct {
	Contracting *contracting.ContractingService
}

func NewContractHandler(svc *contracting.ContractingService) *ContractHandler {
	return &ContractHandler{Contracting: svc}
}

func (h *ContractHandler) List(c *fiber.Ctx) error {
	uid, _, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	contracts, err := h.Contracting.ListContracts(c.UserContext(), uid, 0)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, contracts)
}

func (h *ContractHandler) Get(c *fiber.Ctx) error {
	uid, role, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	contract, err := h.Contracting.GetContract(c.UserContext(), uid, role, id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, contract)
}

// Complete closes the contract once its payment has been released.
func (h *ContractHandler) Complete(c *fiber.Ctx) error {
	uid, _, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	contract, err := h.Contracting.CompleteContract(c.UserContext(), uid, id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, contract)
}
