package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/services/contracting"
)

type ProposalHandler struct {
	Contracting *contracting.ContractingService
}

func NewProposalHandler(svc *contracting.ContractingService) *ProposalHandler {
	return &ProposalHandler{Contracting: svc}
}

type SubmitProposalReq struct {
	CoverLetter       string `json:"cover_letter" validate:"required,max=5000"`
	ProposedRate      int64  `json:"proposed_rate" validate:"gt=0"`
	EstimatedDuration *int   `json:"estimated_duration" validate:"omitempty,gt=0"`
}

func (h *ProposalHandler) Submit(c *fiber.Ctx) error {
	uid, _, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	projectID, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req SubmitProposalReq
	if handled, err := bind(c, &req); handled {
		return err
	}

	p, err := h.Contracting.SubmitProposal(c.UserContext(), uid, projectID, contracting.SubmitInput{
		CoverLetter:       req.CoverLetter,
		ProposedRate:      req.ProposedRate,
		EstimatedDuration: req.EstimatedDuration,
	})
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Proposal submitted", p)
}

func (h *ProposalHandler) ListForProject(c *fiber.Ctx) error {
	uid, _, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	projectID, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	proposals, err := h.Contracting.ListForProject(c.UserContext(), uid, projectID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, proposals)
}

func (h *ProposalHandler) Mine(c *fiber.Ctx) error {
	uid, _, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	proposals, err := h.Contracting.ListMine(c.UserContext(), uid, 0)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, proposals)
}

type AcceptProposalReq struct {
	AgreedRate    *int64  `json:"agreed_rate" validate:"omitempty,gt=0"`
	PaymentAmount *int64  `json:"payment_amount" validate:"omitempty,gt=0"`
	StartDate     *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate       *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	DeferFunding  bool    `json:"defer_funding"`
}

// Accept creates the contract and its payment. The body is optional.
func (h *ProposalHandler) Accept(c *fiber.Ctx) error {
	uid, _, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req AcceptProposalReq
	if len(c.Body()) > 0 {
		if handled, err := bind(c, &req); handled {
			return err
		}
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return fail(c, apperr.Invalid("Invalid start_date"))
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return fail(c, apperr.Invalid("Invalid end_date"))
	}

	contract, err := h.Contracting.AcceptProposal(c.UserContext(), uid, id, contracting.AcceptInput{
		AgreedRate:    req.AgreedRate,
		PaymentAmount: req.PaymentAmount,
		StartDate:     start,
		EndDate:       end,
		DeferFunding:  req.DeferFunding,
	})
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Proposal accepted", contract)
}

func (h *ProposalHandler) Reject(c *fiber.Ctx) error {
	uid, _, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	p, err := h.Contracting.RejectProposal(c.UserContext(), uid, id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, p)
}
