package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/models"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/validation"
)

// Directory maps external identities to internal profiles.
type Directory struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewDirectory(db *gorm.DB, log *zap.Logger) *Directory {
	return &Directory{DB: db, Log: log}
}

type CreateInput struct {
	ExternalID      string   `json:"external_id" validate:"required,max=128"`
	Name            string   `json:"name" validate:"required,max=120"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Skills          []string `json:"skills" validate:"omitempty,dive,required"`
	Bio             *string  `json:"bio"`
	Location        *string  `json:"location"`
	ProfileImageURL *string  `json:"profile_image_url" validate:"omitempty,url"`
}

// CreateUser inserts a pending profile for a new external identity. When the
// identity already exists the stored profile is returned untouched and created is false.
func (d *Directory) CreateUser(ctx context.Context, in CreateInput) (u *models.User, created bool, err error) {
	in.ExternalID = strings.TrimSpace(in.ExternalID)
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, false, err
	}

	user := models.User{
		ExternalID:      in.ExternalID,
		Name:            in.Name,
		Email:           strings.ToLower(strings.TrimSpace(in.Email)),
		Role:            models.RolePending,
		Bio:             in.Bio,
		Location:        in.Location,
		ProfileImageURL: in.ProfileImageURL,
		Rating:          0,
		JobsCompleted:   0,
	}
	if in.Skills != nil {
		user.Skills = datatypes.JSONSlice[string](in.Skills)
	}

	// the unique index on external_id decides races between concurrent sign-ins
	res := d.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "external_id"}}, DoNothing: true}).
		Create(&user)
	if res.Error != nil {
		d.Log.Error("failed to create user", zap.Error(res.Error), zap.String("external_id", in.ExternalID))
		return nil, false, apperr.Internal(res.Error, "failed to create user")
	}
	if res.RowsAffected == 1 {
		d.Log.Info("user created", zap.String("user_id", user.ID.String()), zap.String("external_id", in.ExternalID))
		return &user, true, nil
	}

	existing, err := d.GetByExternalID(ctx, in.ExternalID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, apperr.Internal(errors.New("conflicting insert vanished"), "failed to create user")
	}
	return existing, false, nil
}

// GetByExternalID returns nil, nil when no profile exists.
func (d *Directory) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, nil
	}
	var u models.User
	err := d.DB.WithContext(ctx).Where("external_id = ?", externalID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to fetch user")
	}
	return &u, nil
}

// GetProfile is the profile screen read; same contract as GetByExternalID.
func (d *Directory) GetProfile(ctx context.Context, externalID string) (*models.User, error) {
	return d.GetByExternalID(ctx, externalID)
}

// IDByExternalID returns the internal id, or nil when unknown.
func (d *Directory) IDByExternalID(ctx context.Context, externalID string) (*uuid.UUID, error) {
	u, err := d.GetByExternalID(ctx, externalID)
	if err != nil || u == nil {
		return nil, err
	}
	return &u.ID, nil
}

type ProfileUpdate struct {
	ExternalID string      `json:"-" validate:"required"`
	Role       models.Role `json:"role" validate:"required,oneof=hirer worker"`
	Bio        *string     `json:"bio"`
	Skills     []string    `json:"skills" validate:"omitempty,dive,required"`
	Location   *string     `json:"location"`
}

// UpdateProfile overwrites role and the optional fields; absent optionals are cleared.
// Concurrent updates are last-write-wins.
func (d *Directory) UpdateProfile(ctx context.Context, in ProfileUpdate) (*models.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var skills datatypes.JSONSlice[string]
	if in.Skills != nil {
		skills = datatypes.JSONSlice[string](in.Skills)
	}

	res := d.DB.WithContext(ctx).Model(&models.User{}).
		Where("external_id = ?", in.ExternalID).
		Updates(map[string]any{
			"role":     in.Role,
			"bio":      in.Bio,
			"skills":   skills,
			"location": in.Location,
		})
	if res.Error != nil {
		d.Log.Error("failed to update profile", zap.Error(res.Error), zap.String("external_id", in.ExternalID))
		return nil, apperr.Internal(res.Error, "failed to update profile")
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("user not found")
	}
	return d.GetByExternalID(ctx, in.ExternalID)
}

// GetByID returns nil, nil when the user does not exist.
func (d *Directory) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := d.DB.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to fetch user")
	}
	return &u, nil
}

// GetByIDs is the batch read: unknown ids are dropped, the rest keep input order.
func (d *Directory) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	var found []models.User
	if err := d.DB.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, apperr.Internal(err, "failed to fetch users")
	}

	byID := make(map[uuid.UUID]models.User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}

	out := make([]models.User, 0, len(found))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		u, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, u)
	}
	return out, nil
}
