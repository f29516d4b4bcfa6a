package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleFreelancer, RoleAdmin:
		return true
	}
	return false
}

// Profile is the identity record. Role is fixed at creation; Skills and
// HourlyRate only carry meaning for freelancers.
type Profile struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"email,omitempty"`
	Password string    `gorm:"not null" json:"-"`
	FullName string    `gorm:"type:varchar(120);not null" json:"full_name"`
	Role     Role      `gorm:"type:varchar(20);not null;index" json:"role"`
	IsActive bool      `gorm:"default:true" json:"is_active"`

	AvatarURL string `gorm:"type:text" json:"avatar_url,omitempty"`
	Bio       string `gorm:"type:text" json:"bio,omitempty"`
	Location  string `gorm:"type:varchar(120)" json:"location,omitempty"`
	Phone     string `gorm:"type:varchar(30)" json:"phone,omitempty"`
	Website   string `gorm:"type:text" json:"website,omitempty"`

	// freelancer only
	Skills     datatypes.JSONSlice[string] `json:"skills,omitempty"`
	HourlyRate *int64                      `json:"hourly_rate,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

// PublicView returns a copy without contact details, for responses other
// users can see.
func (p *Profile) PublicView() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Email = ""
	cp.Phone = ""
	return &cp
}
