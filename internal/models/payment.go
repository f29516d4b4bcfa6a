package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentEscrowed PaymentStatus = "escrowed"
	PaymentReleased PaymentStatus = "released"
	PaymentRefunded PaymentStatus = "refunded"
)

// Payment is the single escrow instrument attached to a contract.
type Payment struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex" json:"contract_id"`
	Amount     int64         `gorm:"not null" json:"amount"`
	Status     PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	EscrowDate  *time.Time `json:"escrow_date,omitempty"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	RefundDate  *time.Time `json:"refund_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Contract *Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
