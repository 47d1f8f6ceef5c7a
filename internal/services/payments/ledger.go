package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/models"
)

// Ledger owns payment records and the worker completion counter.
type Ledger struct {
	DB *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{DB: db}
}

type RecordInput struct {
	JobID    uuid.UUID
	HirerID  uuid.UUID
	WorkerID uuid.UUID
	Amount   string
	Method   models.PaymentMethod
	At       time.Time
}

// Record inserts the payment for a job and increments the worker's jobs_completed.
// It must run inside the transaction that completes the job so the three writes
// land together; the unique job_id keeps a replay from paying twice.
func (l *Ledger) Record(tx *gorm.DB, in RecordInput) (*models.Payment, error) {
	minor, err := ParseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	if minor <= 0 {
		return nil, apperr.ValidationFailed("amount must be greater than zero")
	}

	p := models.Payment{
		JobID:       in.JobID,
		HirerID:     in.HirerID,
		WorkerID:    in.WorkerID,
		Amount:      in.Amount,
		AmountMinor: minor,
		Method:      in.Method,
		Status:      models.PaymentStatusCompleted,
		CreatedAt:   in.At,
	}
	if err := tx.Create(&p).Error; err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	result := tx.Model(&models.User{}).
		Where("id = ?", in.WorkerID).
		UpdateColumn("jobs_completed", gorm.Expr("jobs_completed + ?", 1))
	if result.Error != nil {
		return nil, fmt.Errorf("increment jobs_completed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound(fmt.Sprintf("worker %s not found", in.WorkerID))
	}

	return &p, nil
}

// ByJob returns the payment for a job, or nil when the job is unpaid.
func (l *Ledger) ByJob(ctx context.Context, jobID uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	err := l.DB.WithContext(ctx).First(&p, "job_id = ?", jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to fetch payment")
	}
	return &p, nil
}
