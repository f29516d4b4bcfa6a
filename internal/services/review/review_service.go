package review

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/realtime"
)

const EventReviewCreated = "review_created"

type ReviewService struct {
	DB       *gorm.DB
	Notifier realtime.Notifier
}

func NewReviewService(db *gorm.DB, notifier realtime.Notifier) *ReviewService {
	if notifier == nil {
		notifier = realtime.NopNotifier{}
	}
	return &ReviewService{DB: db, Notifier: notifier}
}

// Create records the caller's review of the other party on a completed contract.
func (s *ReviewService) Create(ctx context.Context, reviewerID, contractID uuid.UUID, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apperr.Invalid("Rating must be between 1 and 5")
	}

	var review models.Review
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contract models.Contract
		if err := tx.First(&contract, "id = ?", contractID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Contract not found")
			}
			return apperr.Internal(err, "load contract")
		}
		if !contract.IsParty(reviewerID) {
			return apperr.Forbidden("Only contract parties can leave a review")
		}
		if contract.Status != models.ContractCompleted {
			return apperr.Conflict("Reviews open once the contract is completed")
		}

		var existing int64
		if err := tx.Model(&models.Review{}).
			Where("contract_id = ? AND reviewer_id = ?", contractID, reviewerID).
			Count(&existing).Error; err != nil {
			return apperr.Internal(err, "count reviews")
		}
		if existing > 0 {
			return apperr.Conflict("You already reviewed this contract")
		}

		review = models.Review{
			ContractID: contract.ID,
			ReviewerID: reviewerID,
			RevieweeID: contract.Counterparty(reviewerID),
			Rating:     rating,
			Comment:    strings.TrimSpace(comment),
		}
		if err := tx.Create(&review).Error; err != nil {
			return apperr.Internal(err, "create review")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Notify(ctx, realtime.Event{Type: EventReviewCreated, Data: review}, review.RevieweeID)
	return &review, nil
}

// Received lists reviews about a profile, newest first.
func (s *ReviewService) Received(ctx context.Context, profileID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	if err := s.DB.WithContext(ctx).Preload("Reviewer").
		Where("reviewee_id = ?", profileID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, apperr.Internal(err, "list reviews")
	}
	return reviews, nil
}

// Average returns the mean rating, zero when there are no reviews.
func Average(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
