package dashboard

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/models"
)

const recentLimit = 3

type DashboardService struct {
	DB *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{DB: db}
}

type ClientStats struct {
	TotalProjects   int64             `json:"total_projects"`
	ActiveProjects  int64             `json:"active_projects"`
	ActiveContracts int64             `json:"active_contracts"`
	RecentProjects  []models.Project  `json:"recent_projects"`
	RecentContracts []models.Contract `json:"recent_contracts"`
}

type FreelancerStats struct {
	ActiveProposals int64             `json:"active_proposals"`
	ActiveContracts int64             `json:"active_contracts"`
	TotalEarnings   int64             `json:"total_earnings"`
	OpenProjects    []models.Project  `json:"open_projects"`
	RecentProposals []models.Proposal `json:"recent_proposals"`
}

type AdminStats struct {
	Profiles      int64 `json:"profiles"`
	OpenProjects  int64 `json:"open_projects"`
	Contracts     int64 `json:"contracts"`
	EscrowedTotal int64 `json:"escrowed_total"`
}

// For returns the dashboard matching the caller's role.
func (s *DashboardService) For(ctx context.Context, userID uuid.UUID, role models.Role) (any, error) {
	switch role {
	case models.RoleClient:
		return s.Client(ctx, userID)
	case models.RoleFreelancer:
		return s.Freelancer(ctx, userID)
	case models.RoleAdmin:
		return s.Admin(ctx)
	}
	return nil, apperr.Forbidden("Unknown role")
}

func (s *DashboardService) Client(ctx context.Context, userID uuid.UUID) (*ClientStats, error) {
	db := s.DB.WithContext(ctx)
	out := &ClientStats{}

	if err := db.Model(&models.Project{}).Where("client_id = ?", userID).Count(&out.TotalProjects).Error; err != nil {
		return nil, apperr.Internal(err, "count projects")
	}
	if err := db.Model(&models.Project{}).
		Where("client_id = ? AND status IN ?", userID, []models.ProjectStatus{models.ProjectOpen, models.ProjectInProgress}).
		Count(&out.ActiveProjects).Error; err != nil {
		return nil, apperr.Internal(err, "count active projects")
	}
	if err := db.Model(&models.Contract{}).
		Where("client_id = ? AND status = ?", userID, models.ContractActive).
		Count(&out.ActiveContracts).Error; err != nil {
		return nil, apperr.Internal(err, "count contracts")
	}
	if err := db.Where("client_id = ?", userID).Order("created_at DESC").Limit(recentLimit).
		Find(&out.RecentProjects).Error; err != nil {
		return nil, apperr.Internal(err, "recent projects")
	}
	if err := db.Preload("Project").Preload("Freelancer").
		Where("client_id = ?", userID).Order("created_at DESC").Limit(recentLimit).
		Find(&out.RecentContracts).Error; err != nil {
		return nil, apperr.Internal(err, "recent contracts")
	}
	return out, nil
}

func (s *DashboardService) Freelancer(ctx context.Context, userID uuid.UUID) (*FreelancerStats, error) {
	db := s.DB.WithContext(ctx)
	out := &FreelancerStats{}

	if err := db.Model(&models.Proposal{}).
		Where("freelancer_id = ? AND status = ?", userID, models.ProposalPending).
		Count(&out.ActiveProposals).Error; err != nil {
		return nil, apperr.Internal(err, "count proposals")
	}
	if err := db.Model(&models.Contract{}).
		Where("freelancer_id = ? AND status = ?", userID, models.ContractActive).
		Count(&out.ActiveContracts).Error; err != nil {
		return nil, apperr.Internal(err, "count contracts")
	}

	// earnings are the released ledger entries on the freelancer's contracts
	if err := db.Model(&models.Transaction{}).
		Joins("JOIN payments ON payments.id = transactions.payment_id").
		Joins("JOIN contracts ON contracts.id = payments.contract_id").
		Where("contracts.freelancer_id = ? AND transactions.type = ?", userID, models.TransactionRelease).
		Select("COALESCE(SUM(transactions.amount), 0)").
		Scan(&out.TotalEarnings).Error; err != nil {
		return nil, apperr.Internal(err, "sum earnings")
	}

	if err := db.Preload("Client").Where("status = ?", models.ProjectOpen).
		Order("created_at DESC").Limit(recentLimit).
		Find(&out.OpenProjects).Error; err != nil {
		return nil, apperr.Internal(err, "open projects")
	}
	if err := db.Preload("Project").Where("freelancer_id = ?", userID).
		Order("created_at DESC").Limit(recentLimit).
		Find(&out.RecentProposals).Error; err != nil {
		return nil, apperr.Internal(err, "recent proposals")
	}
	return out, nil
}

func (s *DashboardService) Admin(ctx context.Context) (*AdminStats, error) {
	db := s.DB.WithContext(ctx)
	out := &AdminStats{}

	if err := db.Model(&models.Profile{}).Count(&out.Profiles).Error; err != nil {
		return nil, apperr.Internal(err, "count profiles")
	}
	if err := db.Model(&models.Project{}).Where("status = ?", models.ProjectOpen).Count(&out.OpenProjects).Error; err != nil {
		return nil, apperr.Internal(err, "count projects")
	}
	if err := db.Model(&models.Contract{}).Count(&out.Contracts).Error; err != nil {
		return nil, apperr.Internal(err, "count contracts")
	}
	if err := db.Model(&models.Payment{}).Where("status = ?", models.PaymentEscrowed).
		Select("COALESCE(SUM(amount), 0)").Scan(&out.EscrowedTotal).Error; err != nil {
		return nil, apperr.Internal(err, "sum escrow")
	}
	return out, nil
}
