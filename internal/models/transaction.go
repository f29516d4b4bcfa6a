package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TransactionEscrow  TransactionType = "escrow"
	TransactionRelease TransactionType = "release"
	TransactionRefund  TransactionType = "refund"
)

var ErrLedgerImmutable = errors.New("transactions are append-only")

// Transaction is an append-only ledger row recording one payment status change.
type Transaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PaymentID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"payment_id"`
	Type        TransactionType `gorm:"type:varchar(20);not null" json:"type"`
	Amount      int64           `gorm:"not null" json:"amount"`
	Description string          `gorm:"type:text" json:"description"`
	CreatedAt   time.Time       `json:"created_at"`

	Payment *Payment `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

// The hooks guard every gorm update and delete path. Raw Exec SQL bypasses them.
func (t *Transaction) BeforeUpdate(tx *gorm.DB) error { return ErrLedgerImmutable }
func (t *Transaction) BeforeDelete(tx *gorm.DB) error { return ErrLedgerImmutable }
