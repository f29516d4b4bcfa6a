package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectDraft      ProjectStatus = "draft"
	ProjectOpen       ProjectStatus = "open"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"
)

type Project struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`

	Title          string                      `gorm:"type:varchar(200);not null" json:"title"`
	Description    string                      `gorm:"type:text" json:"description"`
	BudgetMin      *int64                      `json:"budget_min,omitempty"`
	BudgetMax      *int64                      `json:"budget_max,omitempty"`
	SkillsRequired datatypes.JSONSlice[string] `json:"skills_required"`
	Deadline       *time.Time                  `json:"deadline,omitempty"`

	Status ProjectStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client *Profile `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

// Editable reports whether the owner may still change the posting.
func (p *Project) Editable() bool {
	return p.Status == ProjectDraft || p.Status == ProjectOpen
}
