// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/db"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/models"
)

// NewDB returns a migrated in-memory SQLite database private to the test.
// A single connection keeps every statement on the same memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

func CreateProfile(t *testing.T, gdb *gorm.DB, role models.Role, name string) *models.Profile {
	t.Helper()
	p := &models.Profile{
		Email:    fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		Password: "x",
		FullName: name,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

func CreateProject(t *testing.T, gdb *gorm.DB, client *models.Profile, status models.ProjectStatus) *models.Project {
	t.Helper()
	max := int64(2000)
	p := &models.Project{
		ClientID:       client.ID,
		Title:          "Landing page",
		Description:    "Build a marketing landing page",
		BudgetMax:      &max,
		SkillsRequired: []string{"Go", "React"},
		Status:         status,
	}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

func CreateProposal(t *testing.T, gdb *gorm.DB, project *models.Project, freelancer *models.Profile, rate int64) *models.Proposal {
	t.Helper()
	p := &models.Proposal{
		ProjectID:    project.ID,
		FreelancerID: freelancer.ID,
		CoverLetter:  "I can do this",
		ProposedRate: rate,
		Status:       models.ProposalPending,
	}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

// CreateContract inserts a contract with a payment in the given status,
// bypassing the acceptance workflow.
func CreateContract(t *testing.T, gdb *gorm.DB, project *models.Project, freelancer *models.Profile, amount int64, status models.PaymentStatus) (*models.Contract, *models.Payment) {
	t.Helper()
	proposal := CreateProposal(t, gdb, project, freelancer, amount)
	contract := &models.Contract{
		ProjectID:    project.ID,
		ClientID:     project.ClientID,
		FreelancerID: freelancer.ID,
		ProposalID:   proposal.ID,
		AgreedRate:   amount,
		StartDate:    time.Now(),
		Status:       models.ContractActive,
	}
	require.NoError(t, gdb.Create(contract).Error)

	payment := &models.Payment{ContractID: contract.ID, Amount: amount, Status: status}
	require.NoError(t, gdb.Create(payment).Error)
	return contract, payment
}
