package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RolePending Role = "pending"
	RoleHirer   Role = "hirer"
	RoleWorker  Role = "worker"
)

// User is the internal profile behind an external identity.
// Rating and JobsCompleted only move as side effects of reviews and completions.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"external_id"`
	Name       string    `gorm:"not null" json:"name"`
	Email      string    `gorm:"type:varchar(150)" json:"email"`
	Role       Role      `gorm:"type:varchar(20);not null;index" json:"role"`

	Bio             *string                     `gorm:"type:text" json:"bio,omitempty"`
	Location        *string                     `gorm:"type:varchar(160)" json:"location,omitempty"`
	Skills          datatypes.JSONSlice[string] `json:"skills,omitempty"`
	ProfileImageURL *string                     `gorm:"type:text" json:"profile_image_url,omitempty"`

	Rating        float64 `gorm:"not null;default:0" json:"rating"`
	JobsCompleted int64   `gorm:"not null;default:0" json:"jobs_completed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}
