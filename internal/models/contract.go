package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContractStatus string

const (
	ContractActive    ContractStatus = "active"
	ContractCompleted ContractStatus = "completed"
)

type Contract struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID    uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	ClientID     uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;not null;index" json:"freelancer_id"`
	ProposalID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"proposal_id"`

	AgreedRate int64      `gorm:"not null" json:"agreed_rate"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    *time.Time `json:"end_date,omitempty"`

	Status      ContractStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Project    *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Client     *Profile `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Freelancer *Profile `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
	Payment    *Payment `gorm:"foreignKey:ContractID" json:"payment,omitempty"`
}

func (c *Contract) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

func (c *Contract) IsParty(userID uuid.UUID) bool {
	return c.ClientID == userID || c.FreelancerID == userID
}

// Counterparty returns the other side of the contract for a party.
func (c *Contract) Counterparty(userID uuid.UUID) uuid.UUID {
	if userID == c.ClientID {
		return c.FreelancerID
	}
	return c.ClientID
}
