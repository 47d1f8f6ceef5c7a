package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobStatus string

const (
	JobStatusOpen       JobStatus = "open"
	JobStatusInProgress JobStatus = "in-progress"
	JobStatusCompleted  JobStatus = "completed"
	// reserved, nothing transitions into these
	JobStatusCancelled JobStatus = "cancelled"
	JobStatusPending   JobStatus = "pending"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusOpen, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled, JobStatusPending:
		return true
	}
	return false
}

const PaymentStatusCompleted = "completed"

// Job is a posting. AcceptedBy is set iff Status is in-progress or completed;
// the Payment* fields are set iff Status is completed.
type Job struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Wage        string    `gorm:"type:varchar(32);not null" json:"wage"`
	Location    string    `gorm:"type:varchar(160)" json:"location"`

	PostedBy   uuid.UUID  `gorm:"type:uuid;not null;index" json:"posted_by"`
	AcceptedBy *uuid.UUID `gorm:"type:uuid;index" json:"accepted_by,omitempty"`

	// cached display names, backfilled on read when empty
	HirerName  string `gorm:"type:varchar(120)" json:"hirer_name,omitempty"`
	WorkerName string `gorm:"type:varchar(120)" json:"worker_name,omitempty"`

	Status JobStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	PaymentStatus string     `gorm:"type:varchar(20)" json:"payment_status,omitempty"`
	PaymentMethod string     `gorm:"type:varchar(30)" json:"payment_method,omitempty"`
	PaymentAmount string     `gorm:"type:varchar(32)" json:"payment_amount,omitempty"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) (err error) {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return
}

// IsParticipant reports whether userID is the poster or the acceptor.
func (j *Job) IsParticipant(userID uuid.UUID) bool {
	if j.PostedBy == userID {
		return true
	}
	return j.AcceptedBy != nil && *j.AcceptedBy == userID
}

// OtherParty returns the participant that is not userID.
func (j *Job) OtherParty(userID uuid.UUID) (id *uuid.UUID, name string) {
	if j.PostedBy == userID {
		return j.AcceptedBy, j.WorkerName
	}
	poster := j.PostedBy
	return &poster, j.HirerName
}
