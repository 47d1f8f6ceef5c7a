// Package names resolves the display-name snapshots cached on jobs, messages
// and reviews, backfilling rows that were written without them.
package names

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/models"
)

// Lookup is the slice of the user directory the resolver needs.
type Lookup interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
}

type Resolver struct {
	users Lookup
	db    *gorm.DB
	log   *zap.Logger
}

func NewResolver(users Lookup, db *gorm.DB, log *zap.Logger) *Resolver {
	return &Resolver{users: users, db: db, log: log}
}

// Field is one cached name column and the user it mirrors.
// A nil UserID means there is nobody to resolve yet.
type Field struct {
	Column string
	Value  *string
	UserID *uuid.UUID
}

// Row is a record whose snapshots may need filling.
type Row struct {
	ID     uuid.UUID
	Fields []Field
}

// Names fetches display names for ids in one batch. Unknown ids are absent from the map.
func (r *Resolver) Names(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	found, err := r.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, u := range found {
		out[u.ID] = u.Name
	}
	return out, nil
}

// Fill resolves every empty snapshot in rows with a single directory lookup,
// writes the names into the caller's structs and persists them on model's table.
// Failures are logged; reads never fail because a snapshot could not be filled.
func (r *Resolver) Fill(ctx context.Context, model any, rows []Row) {
	var missing []uuid.UUID
	seen := map[uuid.UUID]bool{}
	for _, row := range rows {
		for _, f := range row.Fields {
			if f.UserID == nil || *f.Value != "" || seen[*f.UserID] {
				continue
			}
			seen[*f.UserID] = true
			missing = append(missing, *f.UserID)
		}
	}
	if len(missing) == 0 {
		return
	}

	resolved, err := r.Names(ctx, missing...)
	if err != nil {
		r.log.Warn("name backfill lookup failed", zap.Error(err), zap.Int("users", len(missing)))
		return
	}

	for _, row := range rows {
		patch := map[string]any{}
		for _, f := range row.Fields {
			if f.UserID == nil || *f.Value != "" {
				continue
			}
			name, ok := resolved[*f.UserID]
			if !ok || name == "" {
				continue
			}
			*f.Value = name
			patch[f.Column] = name
		}
		if len(patch) == 0 {
			continue
		}
		err := r.db.WithContext(ctx).Model(model).Where("id = ?", row.ID).UpdateColumns(patch).Error
		if err != nil {
			r.log.Warn("name backfill write failed", zap.Error(err), zap.String("row_id", row.ID.String()))
		}
	}
}
