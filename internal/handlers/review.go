package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/services/review"
)

type ReviewHandler struct {
	Reviews *review.ReviewService
}

func NewReviewHandler(svc *review.ReviewService) *ReviewHandler {
	return &ReviewHandler{Reviews: svc}
}

type CreateReviewReq struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	uid, _, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	contractID, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req CreateReviewReq
	if handled, err := bind(c, &req); handled {
		return err
	}

	r, err := h.Reviews.Create(c.UserContext(), uid, contractID, req.Rating, req.Comment)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Review created", r)
}
