package reviews

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/models"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/services/names"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/services/users"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/validation"
)

// Store keeps hirers' ratings of the workers they paid.
type Store struct {
	DB       *gorm.DB
	Users    *users.Directory
	Names    *names.Resolver
	Notifier realtime.Notifier
	Log      *zap.Logger
	Now      func() time.Time
}

func NewStore(db *gorm.DB, dir *users.Directory, resolver *names.Resolver, notifier realtime.Notifier, log *zap.Logger) *Store {
	if notifier == nil {
		notifier = realtime.Nop{}
	}
	return &Store{
		DB:       db,
		Users:    dir,
		Names:    resolver,
		Notifier: notifier,
		Log:      log,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

type CreateInput struct {
	RevieweeID uuid.UUID `json:"reviewee_id" validate:"required"`
	JobID      uuid.UUID `json:"job_id" validate:"required"`
	Rating     int       `json:"rating" validate:"min=1,max=5"`
	Comment    *string   `json:"comment" validate:"omitempty,max=2000"`
}

// Create stores a review written by the caller and refreshes the reviewee's
// average rating in the same transaction.
func (s *Store) Create(ctx context.Context, callerExternalID string, in CreateInput) (*models.Review, error) {
	if strings.TrimSpace(callerExternalID) == "" {
		return nil, apperr.Unauthorized("caller identity required")
	}
	caller, err := s.Users.GetByExternalID(ctx, callerExternalID)
	if err != nil {
		return nil, err
	}
	if caller == nil {
		return nil, apperr.Unauthorized("caller is not a registered user")
	}

	var review models.Review
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.Job
		if err := tx.First(&job, "id = ?", in.JobID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("job not found")
			}
			return apperr.Internal(err, "failed to fetch job")
		}
		if job.PaymentStatus != models.PaymentStatusCompleted {
			return apperr.InvalidState("job must be paid before it can be reviewed")
		}
		if job.PostedBy != caller.ID {
			return apperr.Unauthorized("only the hirer of this job can review it")
		}
		var reviewee models.User
		if err := tx.First(&reviewee, "id = ?", in.RevieweeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("reviewee not found")
			}
			return apperr.Internal(err, "failed to fetch reviewee")
		}
		if err := validation.Struct(in); err != nil {
			return err
		}
		if job.AcceptedBy == nil || *job.AcceptedBy != reviewee.ID {
			return apperr.ValidationFailed("reviewee must be the worker who did the job")
		}

		review = models.Review{
			JobID:        job.ID,
			ReviewerID:   caller.ID,
			RevieweeID:   reviewee.ID,
			ReviewerName: caller.Name,
			RevieweeName: reviewee.Name,
			Rating:       in.Rating,
			Comment:      in.Comment,
			CreatedAt:    s.Now(),
		}
		if err := tx.Create(&review).Error; err != nil {
			return apperr.Internal(err, "failed to save review")
		}
		return refreshRating(tx, reviewee.ID)
	})
	if err != nil {
		if ae, ok := apperr.As(err); ok && ae.Code == apperr.CodeInternalError {
			s.Log.Error("failed to create review", zap.Error(err), zap.String("job_id", in.JobID.String()))
		}
		return nil, err
	}

	s.Log.Info("review created",
		zap.String("review_id", review.ID.String()),
		zap.String("job_id", review.JobID.String()),
		zap.Int("rating", review.Rating),
	)
	s.Notifier.Notify(ctx, realtime.Event{Type: realtime.EventReviewCreated, JobID: review.JobID, Data: review}, review.RevieweeID)
	return &review, nil
}

func refreshRating(tx *gorm.DB, userID uuid.UUID) error {
	var avg float64
	if err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0)").
		Where("reviewee_id = ?", userID).
		Scan(&avg).Error; err != nil {
		return apperr.Internal(err, "failed to compute rating")
	}
	if err := tx.Model(&models.User{}).Where("id = ?", userID).UpdateColumn("rating", avg).Error; err != nil {
		return apperr.Internal(err, "failed to update rating")
	}
	return nil
}

func (s *Store) ListByReviewee(ctx context.Context, userID uuid.UUID) ([]models.Review, error) {
	return s.list(ctx, "reviewee_id = ?", userID)
}

func (s *Store) ListByReviewer(ctx context.Context, userID uuid.UUID) ([]models.Review, error) {
	return s.list(ctx, "reviewer_id = ?", userID)
}

func (s *Store) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Review, error) {
	return s.list(ctx, "job_id = ?", jobID)
}

func (s *Store) list(ctx context.Context, where string, id uuid.UUID) ([]models.Review, error) {
	var out []models.Review
	if err := s.DB.WithContext(ctx).Where(where, id).Order("created_at DESC").Find(&out).Error; err != nil {
		s.Log.Error("failed to list reviews", zap.Error(err))
		return nil, apperr.Internal(err, "failed to list reviews")
	}

	rows := make([]names.Row, 0, len(out))
	for i := range out {
		r := &out[i]
		rows = append(rows, names.Row{ID: r.ID, Fields: []names.Field{
			{Column: "reviewer_name", Value: &r.ReviewerName, UserID: &r.ReviewerID},
			{Column: "reviewee_name", Value: &r.RevieweeName, UserID: &r.RevieweeID},
		}})
	}
	s.Names.Fill(ctx, &models.Review{}, rows)
	return out, nil
}
