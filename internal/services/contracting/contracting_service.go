package contracting

import (
	"context"
	"errors"
	"strings"
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
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/services/escrow"
)

const (
	EventProposalCreated  = "proposal_created"
	EventProposalAccepted = "proposal_accepted"
	EventProposalRejected = "proposal_rejected"
	EventContractUpdated  = "contract_updated"
)

type ContractingService struct {
	DB       *gorm.DB
	Escrow   *escrow.EscrowService
	Notifier realtime.Notifier
	Metrics  *metrics.Metrics
}

func NewContractingService(db *gorm.DB, esc *escrow.EscrowService, notifier realtime.Notifier, m *metrics.Metrics) *ContractingService {
	if notifier == nil {
		notifier = realtime.NopNotifier{}
	}
	return &ContractingService{DB: db, Escrow: esc, Notifier: notifier, Metrics: m}
}

// SubmitInput carries a freelancer's bid.
type SubmitInput struct {
	CoverLetter       string
	ProposedRate      int64
	EstimatedDuration *int
}

func (s *ContractingService) SubmitProposal(ctx context.Context, freelancerID, projectID uuid.UUID, in SubmitInput) (*models.Proposal, error) {
	if strings.TrimSpace(in.CoverLetter) == "" {
		return nil, apperr.Invalid("Cover letter is required")
	}
	if in.ProposedRate <= 0 {
		return nil, apperr.Invalid("Proposed rate must be greater than zero")
	}
	if in.EstimatedDuration != nil && *in.EstimatedDuration <= 0 {
		return nil, apperr.Invalid("Estimated duration must be positive")
	}

	var proposal models.Proposal
	var clientID uuid.UUID
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, "id = ?", projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Project not found")
			}
			return apperr.Internal(err, "load project")
		}
		if project.ClientID == freelancerID {
			return apperr.Forbidden("You cannot bid on your own project")
		}
		if project.Status != models.ProjectOpen {
			return apperr.Conflict("Project is not accepting proposals")
		}

		var existing int64
		if err := tx.Model(&models.Proposal{}).
			Where("project_id = ? AND freelancer_id = ?", projectID, freelancerID).
			Count(&existing).Error; err != nil {
			return apperr.Internal(err, "count proposals")
		}
		if existing > 0 {
			return apperr.Conflict("You already submitted a proposal for this project")
		}

		proposal = models.Proposal{
			ProjectID:         projectID,
			FreelancerID:      freelancerID,
			CoverLetter:       strings.TrimSpace(in.CoverLetter),
			ProposedRate:      in.ProposedRate,
			EstimatedDuration: in.EstimatedDuration,
			Status:            models.ProposalPending,
		}
		if err := tx.Create(&proposal).Error; err != nil {
			return apperr.Internal(err, "create proposal")
		}
		clientID = project.ClientID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Notify(ctx, realtime.Event{Type: EventProposalCreated, Data: proposal}, clientID)
	return &proposal, nil
}

// ListForProject returns a project's proposals, newest first, to its owner.
func (s *ContractingService) ListForProject(ctx context.Context, actorID, projectID uuid.UUID) ([]models.Proposal, error) {
	db := s.DB.WithContext(ctx)

	var project models.Project
	if err := db.First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Project not found")
		}
		return nil, apperr.Internal(err, "load project")
	}
	if project.ClientID != actorID {
		return nil, apperr.Forbidden("Only the project owner can view proposals")
	}

	var proposals []models.Proposal
	if err := db.Preload("Freelancer").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&proposals).Error; err != nil {
		return nil, apperr.Internal(err, "list proposals")
	}
	return proposals, nil
}

// ListMine returns a freelancer's proposals with their projects, newest first.
func (s *ContractingService) ListMine(ctx context.Context, freelancerID uuid.UUID, limit int) ([]models.Proposal, error) {
	q := s.DB.WithContext(ctx).Preload("Project").
		Where("freelancer_id = ?", freelancerID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var proposals []models.Proposal
	if err := q.Find(&proposals).Error; err != nil {
		return nil, apperr.Internal(err, "list proposals")
	}
	return proposals, nil
}

// AcceptInput overrides the defaults taken from the proposal.
type AcceptInput struct {
	AgreedRate    *int64
	PaymentAmount *int64
	StartDate     *time.Time
	EndDate       *time.Time
	DeferFunding  bool
}

// AcceptProposal turns a pending proposal into a contract with its payment.
// Every write happens in one transaction.
func (s *ContractingService) AcceptProposal(ctx context.Context, actorID, proposalID uuid.UUID, in AcceptInput) (contract *models.Contract, err error) {
	defer func() { s.Metrics.Workflow("accept_proposal", err) }()

	var (
		payment  models.Payment
		proposal models.Proposal
		funded   bool
	)
	contract = &models.Contract{}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&proposal, "id = ?", proposalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Proposal not found")
			}
			return apperr.Internal(err, "load proposal")
		}

		var project models.Project
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&project, "id = ?", proposal.ProjectID).Error; err != nil {
			return apperr.Internal(err, "load project")
		}
		if project.ClientID != actorID {
			return apperr.Forbidden("Only the project owner can accept proposals")
		}
		if proposal.Status != models.ProposalPending {
			return apperr.Conflict("Proposal is no longer pending")
		}
		if project.Status != models.ProjectOpen {
			return apperr.Conflict("Project is not open")
		}

		rate := proposal.ProposedRate
		if in.AgreedRate != nil {
			rate = *in.AgreedRate
		}
		amount := rate
		if in.PaymentAmount != nil {
			amount = *in.PaymentAmount
		}
		if rate <= 0 || amount <= 0 {
			return apperr.Invalid("Agreed rate and payment amount must be greater than zero")
		}
		start := today()
		if in.StartDate != nil {
			start = *in.StartDate
		}
		if in.EndDate != nil && in.EndDate.Before(start) {
			return apperr.Invalid("End date must not be before start date")
		}

		res := tx.Model(&models.Proposal{}).
			Where("id = ? AND status = ?", proposal.ID, models.ProposalPending).
			Update("status", models.ProposalAccepted)
		if res.Error != nil {
			return apperr.Internal(res.Error, "accept proposal")
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("Proposal was changed by another request")
		}

		res = tx.Model(&models.Project{}).
			Where("id = ? AND status = ?", project.ID, models.ProjectOpen).
			Update("status", models.ProjectInProgress)
		if res.Error != nil {
			return apperr.Internal(res.Error, "start project")
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("Project was changed by another request")
		}

		*contract = models.Contract{
			ProjectID:    project.ID,
			ClientID:     project.ClientID,
			FreelancerID: proposal.FreelancerID,
			ProposalID:   proposal.ID,
			AgreedRate:   rate,
			StartDate:    start,
			EndDate:      in.EndDate,
			Status:       models.ContractActive,
		}
		if err := tx.Create(contract).Error; err != nil {
			return apperr.Internal(err, "create contract")
		}

		payment = models.Payment{ContractID: contract.ID, Amount: amount, Status: models.PaymentPending}
		if err := tx.Create(&payment).Error; err != nil {
			return apperr.Internal(err, "create payment")
		}
		if in.DeferFunding {
			return nil
		}

		var err error
		funded, err = s.Escrow.ApplyTx(tx, &payment, escrow.ActionEscrow, "Initial payment placed in escrow")
		return err
	})
	if err != nil {
		logger.L().Warn("accept proposal failed", zap.String("proposal", proposalID.String()), zap.Error(err))
		return nil, err
	}

	contract.Payment = &payment
	if funded {
		s.Escrow.Committed(ctx, &payment, escrow.ActionEscrow, contract.ClientID, contract.FreelancerID)
	}
	logger.L().Info("proposal accepted",
		zap.String("proposal", proposalID.String()),
		zap.String("contract", contract.ID.String()),
		zap.Int64("amount", payment.Amount),
	)
	s.Notifier.Notify(ctx, realtime.Event{Type: EventProposalAccepted, Data: contract}, contract.FreelancerID)
	return contract, nil
}

func (s *ContractingService) RejectProposal(ctx context.Context, actorID, proposalID uuid.UUID) (*models.Proposal, error) {
	var (
		proposal models.Proposal
		changed  bool
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Project").First(&proposal, "id = ?", proposalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Proposal not found")
			}
			return apperr.Internal(err, "load proposal")
		}
		if proposal.Project == nil || proposal.Project.ClientID != actorID {
			return apperr.Forbidden("Only the project owner can reject proposals")
		}
		if proposal.Status == models.ProposalRejected {
			return nil
		}
		if proposal.Status != models.ProposalPending {
			return apperr.Conflict("Proposal is no longer pending")
		}

		res := tx.Model(&models.Proposal{}).
			Where("id = ? AND status = ?", proposal.ID, models.ProposalPending).
			Update("status", models.ProposalRejected)
		if res.Error != nil {
			return apperr.Internal(res.Error, "reject proposal")
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("Proposal was changed by another request")
		}
		proposal.Status = models.ProposalRejected
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return &proposal, nil
	}

	s.Notifier.Notify(ctx, realtime.Event{Type: EventProposalRejected, Data: proposal}, proposal.FreelancerID)
	return &proposal, nil
}

// ListContracts returns contracts where the user is either party, newest first.
func (s *ContractingService) ListContracts(ctx context.Context, userID uuid.UUID, limit int) ([]models.Contract, error) {
	q := s.DB.WithContext(ctx).
		Preload("Project").Preload("Client").Preload("Freelancer").Preload("Payment").
		Where("(client_id = ? OR freelancer_id = ?)", userID, userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var contracts []models.Contract
	if err := q.Find(&contracts).Error; err != nil {
		return nil, apperr.Internal(err, "list contracts")
	}
	return contracts, nil
}

// GetContract loads a contract for a party or an admin.
func (s *ContractingService) GetContract(ctx context.Context, userID uuid.UUID, role models.Role, contractID uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	if err := s.DB.WithContext(ctx).
		Preload("Project").Preload("Client").Preload("Freelancer").Preload("Payment").
		First(&contract, "id = ?", contractID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Contract not found")
		}
		return nil, apperr.Internal(err, "load contract")
	}
	if role != models.RoleAdmin && !contract.IsParty(userID) {
		return nil, apperr.Forbidden("Access denied")
	}
	return &contract, nil
}

// CompleteContract closes an active contract whose payment was released.
func (s *ContractingService) CompleteContract(ctx context.Context, actorID, contractID uuid.UUID) (contract *models.Contract, err error) {
	defer func() { s.Metrics.Workflow("complete_contract", err) }()

	contract = &models.Contract{}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(contract, "id = ?", contractID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Contract not found")
			}
			return apperr.Internal(err, "load contract")
		}
		if contract.ClientID != actorID {
			return apperr.Forbidden("Only the client can complete the contract")
		}
		if contract.Status == models.ContractCompleted {
			return nil
		}

		var payment models.Payment
		if err := tx.First(&payment, "contract_id = ?", contract.ID).Error; err != nil {
			return apperr.Internal(err, "load payment")
		}
		if payment.Status != models.PaymentReleased {
			return apperr.Conflict("Release the payment before completing the contract")
		}

		now := time.Now()
		res := tx.Model(&models.Contract{}).
			Where("id = ? AND status = ?", contract.ID, models.ContractActive).
			Updates(map[string]any{"status": models.ContractCompleted, "completed_at": now})
		if res.Error != nil {
			return apperr.Internal(res.Error, "complete contract")
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("Contract was changed by another request")
		}
		if err := tx.Model(&models.Project{}).
			Where("id = ?", contract.ProjectID).
			Update("status", models.ProjectCompleted).Error; err != nil {
			return apperr.Internal(err, "complete project")
		}
		contract.Status = models.ContractCompleted
		contract.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Notify(ctx, realtime.Event{Type: EventContractUpdated, Data: contract}, contract.ClientID, contract.FreelancerID)
	return contract, nil
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
