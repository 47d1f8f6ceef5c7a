package jobs

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/models"
)

// transitions maps each status to the only status it may move to.
// cancelled and pending have no entries: nothing enters or leaves them.
var transitions = map[models.JobStatus]models.JobStatus{
	models.JobStatusOpen:       models.JobStatusInProgress,
	models.JobStatusInProgress: models.JobStatusCompleted,
}

// Next reports the successor of a status.
func Next(from models.JobStatus) (models.JobStatus, bool) {
	to, ok := transitions[from]
	return to, ok
}

// transition moves a job from `from` to its successor and applies patch in the
// same UPDATE ... WHERE status = from. Zero affected rows means the job is gone
// (NotFound) or somebody else moved it first (InvalidState).
func transition(db *gorm.DB, jobID uuid.UUID, from models.JobStatus, patch map[string]any) error {
	to, ok := Next(from)
	if !ok {
		return apperr.InvalidState(fmt.Sprintf("no transition out of %s", from))
	}

	update := make(map[string]any, len(patch)+1)
	for k, v := range patch {
		update[k] = v
	}
	update["status"] = to

	res := db.Model(&models.Job{}).Where("id = ? AND status = ?", jobID, from).Updates(update)
	if res.Error != nil {
		return apperr.Internal(res.Error, "failed to update job")
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var current models.Job
	err := db.Select("id", "status").First(&current, "id = ?", jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("job not found")
	}
	if err != nil {
		return apperr.Internal(err, "failed to fetch job")
	}
	return apperr.InvalidState(fmt.Sprintf("job is %s, expected %s", current.Status, from))
}
