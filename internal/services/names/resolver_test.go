package names

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/db/dbtest"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/models"
)

type fakeLookup struct {
	users map[uuid.UUID]string
	calls int
	err   error
}

func (f *fakeLookup) GetByIDs(_ context.Context, ids []uuid.UUID) ([]models.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []models.User
	for _, id := range ids {
		if name, ok := f.users[id]; ok {
			out = append(out, models.User{ID: id, Name: name})
		}
	}
	return out, nil
}

func TestFillBackfillsAndPersists(t *testing.T) {
	gdb := dbtest.New(t)
	ctx := context.Background()

	hirer, worker := uuid.New(), uuid.New()
	lookup := &fakeLookup{users: map[uuid.UUID]string{hirer: "Hema", worker: "Wasim"}}
	r := NewResolver(lookup, gdb, zaptest.NewLogger(t))

	job := models.Job{Title: "Fix tap", Wage: "200", PostedBy: hirer, AcceptedBy: &worker, Status: models.JobStatusInProgress}
	require.NoError(t, gdb.Create(&job).Error)

	r.Fill(ctx, &models.Job{}, []Row{{
		ID: job.ID,
		Fields: []Field{
			{Column: "hirer_name", Value: &job.HirerName, UserID: &job.PostedBy},
			{Column: "worker_name", Value: &job.WorkerName, UserID: job.AcceptedBy},
		},
	}})

	assert.Equal(t, "Hema", job.HirerName)
	assert.Equal(t, "Wasim", job.WorkerName)
	assert.Equal(t, 1, lookup.calls)

	var stored models.Job
	require.NoError(t, gdb.First(&stored, "id = ?", job.ID).Error)
	assert.Equal(t, "Hema", stored.HirerName)
	assert.Equal(t, "Wasim", stored.WorkerName)
}

func TestFillSkipsPresentAndUnresolvable(t *testing.T) {
	gdb := dbtest.New(t)
	lookup := &fakeLookup{users: map[uuid.UUID]string{}}
	r := NewResolver(lookup, gdb, zaptest.NewLogger(t))

	poster := uuid.New()
	present := "Already"
	empty := ""
	r.Fill(context.Background(), &models.Job{}, []Row{{
		ID: uuid.New(),
		Fields: []Field{
			{Column: "hirer_name", Value: &present, UserID: &poster},
			{Column: "worker_name", Value: &empty, UserID: nil},
		},
	}})
	assert.Equal(t, 0, lookup.calls, "nothing to resolve")

	ghost := uuid.New()
	r.Fill(context.Background(), &models.Job{}, []Row{{
		ID:     uuid.New(),
		Fields: []Field{{Column: "hirer_name", Value: &empty, UserID: &ghost}},
	}})
	assert.Equal(t, "", empty)
}

func TestFillLookupErrorLeavesRows(t *testing.T) {
	r := NewResolver(&fakeLookup{err: errors.New("down")}, dbtest.New(t), zaptest.NewLogger(t))
	id := uuid.New()
	name := ""
	r.Fill(context.Background(), &models.Review{}, []Row{{ID: uuid.New(), Fields: []Field{{Column: "reviewer_name", Value: &name, UserID: &id}}}})
	assert.Equal(t, "", name)
}

func TestNames(t *testing.T) {
	a := uuid.New()
	r := NewResolver(&fakeLookup{users: map[uuid.UUID]string{a: "Anu"}}, dbtest.New(t), zaptest.NewLogger(t))

	got, err := r.Names(context.Background(), a, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]string{a: "Anu"}, got)

	none, err := r.Names(context.Background())
	require.NoError(t, err)
	assert.Empty(t, none)
}
