package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is a hirer's rating of the worker on a completed, paid job.
// (job, reviewer) is indexed but deliberately not unique.
type Review struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobID      uuid.UUID `gorm:"type:uuid;not null;index;index:idx_reviews_job_reviewer,priority:1" json:"job_id"`
	ReviewerID uuid.UUID `gorm:"type:uuid;not null;index;index:idx_reviews_job_reviewer,priority:2" json:"reviewer_id"`
	RevieweeID uuid.UUID `gorm:"type:uuid;not null;index" json:"reviewee_id"`

	ReviewerName string `gorm:"type:varchar(120)" json:"reviewer_name,omitempty"`
	RevieweeName string `gorm:"type:varchar(120)" json:"reviewee_name,omitempty"`

	Rating  int     `gorm:"not null" json:"rating"` // 1-5
	Comment *string `gorm:"type:text" json:"comment,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
