package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/models"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/services/names"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/services/payments"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/validation"
)

// Registry stores job postings and drives their lifecycle.
type Registry struct {
	DB       *gorm.DB
	Names    *names.Resolver
	Ledger   *payments.Ledger
	Notifier realtime.Notifier
	Log      *zap.Logger
	Now      func() time.Time
}

func NewRegistry(db *gorm.DB, resolver *names.Resolver, ledger *payments.Ledger, notifier realtime.Notifier, log *zap.Logger) *Registry {
	if notifier == nil {
		notifier = realtime.Nop{}
	}
	return &Registry{
		DB:       db,
		Names:    resolver,
		Ledger:   ledger,
		Notifier: notifier,
		Log:      log,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

type CreateInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Wage        string `json:"wage" validate:"required,max=32"`
	Location    string `json:"location" validate:"required,max=160"`
}

// Create posts a new open job on behalf of a hirer.
func (r *Registry) Create(ctx context.Context, callerID uuid.UUID, in CreateInput) (*models.Job, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Wage = strings.TrimSpace(in.Wage)
	in.Location = strings.TrimSpace(in.Location)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if minor, err := payments.ParseAmount(in.Wage); err != nil {
		return nil, err
	} else if minor <= 0 {
		return nil, apperr.ValidationFailed("wage must be greater than zero")
	}

	caller, err := loadCaller(ctx, r.DB, callerID)
	if err != nil {
		return nil, err
	}
	if caller.Role != models.RoleHirer {
		return nil, apperr.Unauthorized("only hirers can post jobs")
	}

	job := models.Job{
		Title:       in.Title,
		Description: in.Description,
		Wage:        in.Wage,
		Location:    in.Location,
		PostedBy:    caller.ID,
		HirerName:   caller.Name,
		Status:      models.JobStatusOpen,
		CreatedAt:   r.Now(),
	}
	if err := r.DB.WithContext(ctx).Create(&job).Error; err != nil {
		r.Log.Error("failed to create job", zap.Error(err), zap.String("user_id", callerID.String()))
		return nil, apperr.Internal(err, "failed to create job")
	}

	r.Log.Info("job created", zap.String("job_id", job.ID.String()), zap.String("user_id", callerID.String()))
	return &job, nil
}

// Accept assigns an open job to the calling worker. The status check and the
// assignment are one conditional update, so of two concurrent callers exactly
// one wins and the other sees InvalidState.
func (r *Registry) Accept(ctx context.Context, callerID, jobID uuid.UUID) (*models.Job, error) {
	caller, err := loadCaller(ctx, r.DB, callerID)
	if err != nil {
		return nil, err
	}
	if caller.Role != models.RoleWorker {
		return nil, apperr.Unauthorized("only workers can accept jobs")
	}

	job, err := r.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.PostedBy == caller.ID {
		return nil, apperr.Unauthorized("cannot accept your own job")
	}

	err = transition(r.DB.WithContext(ctx), jobID, models.JobStatusOpen, map[string]any{
		"accepted_by": caller.ID,
		"worker_name": caller.Name,
	})
	if err != nil {
		return nil, err
	}

	job, err = r.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	r.Log.Info("job accepted", zap.String("job_id", jobID.String()), zap.String("user_id", callerID.String()))
	r.Notifier.Notify(ctx, realtime.Event{Type: realtime.EventJobStatusUpdate, JobID: job.ID, Data: job}, job.PostedBy, caller.ID)
	return job, nil
}

type CompleteInput struct {
	PaymentMethod models.PaymentMethod `json:"payment_method" validate:"required,oneof=cash upi"`
	PaymentAmount string               `json:"payment_amount" validate:"required,max=32"`
}

// Complete records the hirer's payment and closes the job. The status change,
// the payment row and the worker's counter commit together; a replay finds the
// job already completed and fails with InvalidState, leaving the counter alone.
func (r *Registry) Complete(ctx context.Context, callerID, jobID uuid.UUID, in CompleteInput) (*models.Job, error) {
	in.PaymentAmount = strings.TrimSpace(in.PaymentAmount)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if minor, err := payments.ParseAmount(in.PaymentAmount); err != nil {
		return nil, err
	} else if minor <= 0 {
		return nil, apperr.ValidationFailed("payment_amount must be greater than zero")
	}

	now := r.Now()
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.Job
		if err := tx.First(&job, "id = ?", jobID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("job not found")
			}
			return apperr.Internal(err, "failed to fetch job")
		}
		if job.PostedBy != callerID {
			return apperr.Unauthorized("only the hirer can complete this job")
		}
		if job.Status != models.JobStatusInProgress || job.AcceptedBy == nil {
			return apperr.InvalidState(fmt.Sprintf("job is %s, expected %s", job.Status, models.JobStatusInProgress))
		}

		workerName := job.WorkerName
		var worker models.User
		if err := tx.Select("id", "name").First(&worker, "id = ?", *job.AcceptedBy).Error; err == nil {
			workerName = worker.Name
		}

		if err := transition(tx, jobID, models.JobStatusInProgress, map[string]any{
			"payment_status": models.PaymentStatusCompleted,
			"payment_method": string(in.PaymentMethod),
			"payment_amount": in.PaymentAmount,
			"payment_date":   now,
			"worker_name":    workerName,
		}); err != nil {
			return err
		}

		_, err := r.Ledger.Record(tx, payments.RecordInput{
			JobID:    job.ID,
			HirerID:  job.PostedBy,
			WorkerID: *job.AcceptedBy,
			Amount:   in.PaymentAmount,
			Method:   in.PaymentMethod,
			At:       now,
		})
		return err
	})
	if err != nil {
		if _, ok := apperr.As(err); !ok {
			r.Log.Error("failed to complete job", zap.Error(err), zap.String("job_id", jobID.String()))
			return nil, apperr.Internal(err, "failed to complete job")
		}
		return nil, err
	}

	job, err := r.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	r.Log.Info("job completed",
		zap.String("job_id", jobID.String()),
		zap.String("payment_method", string(in.PaymentMethod)),
		zap.String("payment_amount", in.PaymentAmount),
	)
	recipients := []uuid.UUID{job.PostedBy}
	if job.AcceptedBy != nil {
		recipients = append(recipients, *job.AcceptedBy)
	}
	r.Notifier.Notify(ctx, realtime.Event{Type: realtime.EventJobStatusUpdate, JobID: job.ID, Data: job}, recipients...)
	return job, nil
}

// Get returns a job with its name snapshots filled.
func (r *Registry) Get(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := r.DB.WithContext(ctx).First(&job, "id = ?", jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("job not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to fetch job")
	}
	list := []models.Job{job}
	r.fillNames(ctx, list)
	return &list[0], nil
}

func (r *Registry) ListOpen(ctx context.Context) ([]models.Job, error) {
	return r.list(ctx, r.DB.Where("status = ?", models.JobStatusOpen))
}

// ListByPoster lists a hirer's jobs, optionally hiding completed ones.
func (r *Registry) ListByPoster(ctx context.Context, posterID uuid.UUID, excludeCompleted bool) ([]models.Job, error) {
	q := r.DB.Where("posted_by = ?", posterID)
	if excludeCompleted {
		q = q.Where("status <> ?", models.JobStatusCompleted)
	}
	return r.list(ctx, q)
}

func (r *Registry) ListByPosterAndStatus(ctx context.Context, posterID uuid.UUID, status models.JobStatus) ([]models.Job, error) {
	if !status.Valid() {
		return nil, apperr.ValidationFailed(fmt.Sprintf("unknown status %q", status))
	}
	return r.list(ctx, r.DB.Where("posted_by = ? AND status = ?", posterID, status))
}

// ListByAcceptor lists a worker's jobs; a nil status means any.
func (r *Registry) ListByAcceptor(ctx context.Context, acceptorID uuid.UUID, status *models.JobStatus) ([]models.Job, error) {
	q := r.DB.Where("accepted_by = ?", acceptorID)
	if status != nil {
		if !status.Valid() {
			return nil, apperr.ValidationFailed(fmt.Sprintf("unknown status %q", *status))
		}
		q = q.Where("status = ?", *status)
	}
	return r.list(ctx, q)
}

// Quote prices a job for the hirer: wage plus service fee.
func (r *Registry) Quote(ctx context.Context, jobID uuid.UUID) (payments.Quote, error) {
	job, err := r.Get(ctx, jobID)
	if err != nil {
		return payments.Quote{}, err
	}
	return payments.QuoteFor(job.Wage)
}

// Payment returns the payment recorded for a job, visible to its participants only.
func (r *Registry) Payment(ctx context.Context, callerID, jobID uuid.UUID) (*models.Payment, error) {
	job, err := r.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsParticipant(callerID) {
		return nil, apperr.Unauthorized("not a participant of this job")
	}
	p, err := r.Ledger.ByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("job has no payment")
	}
	return p, nil
}

func (r *Registry) list(ctx context.Context, q *gorm.DB) ([]models.Job, error) {
	var out []models.Job
	if err := q.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		r.Log.Error("failed to list jobs", zap.Error(err))
		return nil, apperr.Internal(err, "failed to list jobs")
	}
	r.fillNames(ctx, out)
	return out, nil
}

func (r *Registry) fillNames(ctx context.Context, list []models.Job) {
	rows := make([]names.Row, 0, len(list))
	for i := range list {
		j := &list[i]
		rows = append(rows, names.Row{
			ID: j.ID,
			Fields: []names.Field{
				{Column: "hirer_name", Value: &j.HirerName, UserID: &j.PostedBy},
				{Column: "worker_name", Value: &j.WorkerName, UserID: j.AcceptedBy},
			},
		})
	}
	r.Names.Fill(ctx, &models.Job{}, rows)
}

func loadCaller(ctx context.Context, db *gorm.DB, callerID uuid.UUID) (*models.User, error) {
	if callerID == uuid.Nil {
		return nil, apperr.Unauthorized("caller identity required")
	}
	var u models.User
	err := db.WithContext(ctx).First(&u, "id = ?", callerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized("unknown caller")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to fetch caller")
	}
	return &u, nil
}
