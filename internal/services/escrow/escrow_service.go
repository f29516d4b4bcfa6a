package escrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/logger"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/metrics"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/realtime"
)

const EventPaymentUpdated = "payment_updated"

type EscrowService struct {
	DB       *gorm.DB
	Notifier realtime.Notifier
	Metrics  *metrics.Metrics
}

func NewEscrowService(db *gorm.DB, notifier realtime.Notifier, m *metrics.Metrics) *EscrowService {
	if notifier == nil {
		notifier = realtime.NopNotifier{}
	}
	return &EscrowService{DB: db, Notifier: notifier, Metrics: m}
}

// Apply runs one client-initiated transition on a payment.
func (s *EscrowService) Apply(ctx context.Context, actorID, paymentID uuid.UUID, action Action) (*models.Payment, error) {
	if _, ok := Target(action); !ok {
		return nil, apperr.Invalid("Unknown payment action")
	}

	var (
		payment  models.Payment
		contract models.Contract
		changed  bool
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payment, "id = ?", paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Payment not found")
			}
			return apperr.Internal(err, "load payment")
		}
		if err := tx.First(&contract, "id = ?", payment.ContractID).Error; err != nil {
			return apperr.Internal(err, "load contract")
		}
		if contract.ClientID != actorID {
			return apperr.Forbidden("Only the client can " + string(action) + " this payment")
		}

		var err error
		changed, err = s.ApplyTx(tx, &payment, action, Describe(action, contract.ID))
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.Committed(ctx, &payment, action, contract.ClientID, contract.FreelancerID)
	} else {
		logger.L().Info("payment transition repeated", zap.String("payment", payment.ID.String()), zap.String("action", string(action)))
	}
	return &payment, nil
}

// ApplyTx performs the transition inside an open transaction. It reports false
// when the payment already sits in the action's target state.
func (s *EscrowService) ApplyTx(tx *gorm.DB, payment *models.Payment, action Action, description string) (bool, error) {
	if target, ok := Target(action); ok && payment.Status == target {
		return false, nil
	}
	to, txType, err := Next(payment.Status, action)
	if err != nil {
		return false, apperr.Wrap(err, apperr.CodeConflict, fmt.Sprintf("Cannot %s a %s payment", action, payment.Status))
	}
	if payment.Amount <= 0 {
		return false, apperr.Invalid("Payment amount must be greater than zero")
	}

	now := time.Now()
	updates := map[string]any{"status": to, "updated_at": now}
	switch to {
	case models.PaymentEscrowed:
		updates["escrow_date"] = now
	case models.PaymentReleased:
		updates["release_date"] = now
	case models.PaymentRefunded:
		updates["refund_date"] = now
	}

	res := tx.Model(&models.Payment{}).
		Where("id = ? AND status = ?", payment.ID, payment.Status).
		Updates(updates)
	if res.Error != nil {
		return false, apperr.Internal(res.Error, "update payment")
	}
	if res.RowsAffected == 0 {
		return false, apperr.Conflict("Payment was changed by another request")
	}

	ledger := models.Transaction{
		PaymentID:   payment.ID,
		Type:        txType,
		Amount:      payment.Amount,
		Description: description,
	}
	if err := tx.Create(&ledger).Error; err != nil {
		return false, apperr.Internal(err, "append transaction")
	}

	payment.Status = to
	payment.UpdatedAt = now
	switch to {
	case models.PaymentEscrowed:
		payment.EscrowDate = &now
	case models.PaymentReleased:
		payment.ReleaseDate = &now
	case models.PaymentRefunded:
		payment.RefundDate = &now
	}
	return true, nil
}

// Committed records a transition after its transaction has committed.
func (s *EscrowService) Committed(ctx context.Context, payment *models.Payment, action Action, parties ...uuid.UUID) {
	s.Metrics.EscrowTransition(string(action))
	logger.L().Info("payment transition",
		zap.String("payment", payment.ID.String()),
		zap.String("action", string(action)),
		zap.String("status", string(payment.Status)),
		zap.Int64("amount", payment.Amount),
	)
	s.Notifier.Notify(ctx, realtime.Event{Type: EventPaymentUpdated, Data: payment}, parties...)
}

func Describe(action Action, contractID uuid.UUID) string {
	switch action {
	case ActionEscrow:
		return "Funds escrowed for contract " + contractID.String()
	case ActionRelease:
		return "Funds released to freelancer for contract " + contractID.String()
	default:
		return "Funds refunded to client for contract " + contractID.String()
	}
}

// ListForUser returns payments on contracts where the user is a party, newest first.
func (s *EscrowService) ListForUser(ctx context.Context, userID uuid.UUID, status string) ([]models.Payment, error) {
	q := s.DB.WithContext(ctx).
		Joins("JOIN contracts ON contracts.id = payments.contract_id").
		Where("(contracts.client_id = ? OR contracts.freelancer_id = ?)", userID, userID).
		Preload("Contract").Preload("Contract.Project").
		Order("payments.created_at DESC")
	if status != "" {
		q = q.Where("payments.status = ?", status)
	}

	var payments []models.Payment
	if err := q.Find(&payments).Error; err != nil {
		return nil, apperr.Internal(err, "list payments")
	}
	return payments, nil
}

type PaymentDetail struct {
	models.Payment
	Transactions []models.Transaction `json:"transactions"`
}

// Get returns a payment with its ledger, newest first, for a contract party or admin.
func (s *EscrowService) Get(ctx context.Context, userID uuid.UUID, role models.Role, paymentID uuid.UUID) (*PaymentDetail, error) {
	db := s.DB.WithContext(ctx)

	var payment models.Payment
	if err := db.Preload("Contract").Preload("Contract.Project").First(&payment, "id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Payment not found")
		}
		return nil, apperr.Internal(err, "load payment")
	}
	if role != models.RoleAdmin && (payment.Contract == nil || !payment.Contract.IsParty(userID)) {
		return nil, apperr.Forbidden("Access denied")
	}

	var txs []models.Transaction
	if err := db.Where("payment_id = ?", payment.ID).Order("created_at DESC").Find(&txs).Error; err != nil {
		return nil, apperr.Internal(err, "list transactions")
	}
	return &PaymentDetail{Payment: payment, Transactions: txs}, nil
}
