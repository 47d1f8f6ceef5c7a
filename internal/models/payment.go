package models

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodUPI  PaymentMethod = "upi"
)

// Payment records the hirer's confirmation for a completed job.
// JobID is unique: a job is paid at most once.
type Payment struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	JobID         uuid.UUID     `gorm:"type:uuid;uniqueIndex;not null" json:"job_id"`
	HirerID       uuid.UUID     `gorm:"type:uuid;index;not null" json:"hirer_id"`
	WorkerID      uuid.UUID     `gorm:"type:uuid;index;not null" json:"worker_id"`
	Amount        string        `gorm:"type:varchar(32);not null" json:"amount"`
	AmountMinor   int64         `gorm:"not null" json:"amount_minor"` // paise / cents
	Method        PaymentMethod `gorm:"type:varchar(30);not null" json:"method"`
	Status        string        `gorm:"type:varchar(20);not null" json:"status"`
	TransactionID string        `gorm:"type:varchar(20);uniqueIndex" json:"transaction_id"`
	CreatedAt     time.Time     `json:"created_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.TransactionID == "" {
		p.TransactionID = GenerateTransactionID()
	}
	return
}

// GenerateTransactionID returns a random reference like PAY-L9POKTVJ.
func GenerateTransactionID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, 8)
	for i := range b {
		b[i] = letters[rand.IntN(len(letters))]
	}
	return "PAY-" + string(b)
}
