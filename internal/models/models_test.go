package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobParticipants(t *testing.T) {
	hirer, worker, stranger := uuid.New(), uuid.New(), uuid.New()
	job := Job{PostedBy: hirer, HirerName: "Hema", WorkerName: "Wasim"}

	assert.True(t, job.IsParticipant(hirer))
	assert.False(t, job.IsParticipant(worker), "no acceptor yet")

	id, _ := job.OtherParty(hirer)
	assert.Nil(t, id)

	job.AcceptedBy = &worker
	assert.True(t, job.IsParticipant(worker))
	assert.False(t, job.IsParticipant(stranger))

	id, name := job.OtherParty(hirer)
	require.NotNil(t, id)
	assert.Equal(t, worker, *id)
	assert.Equal(t, "Wasim", name)

	id, name = job.OtherParty(worker)
	require.NotNil(t, id)
	assert.Equal(t, hirer, *id)
	assert.Equal(t, "Hema", name)
}

func TestJobStatusValid(t *testing.T) {
	for _, s := range []JobStatus{JobStatusOpen, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled, JobStatusPending} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, JobStatus("in_progress").Valid())
	assert.False(t, JobStatus("").Valid())
}

func TestGenerateTransactionID(t *testing.T) {
	seen := map[string]bool{}
	for range 50 {
		id := GenerateTransactionID()
		assert.Regexp(t, `^PAY-[A-Z0-9]{8}$`, id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 1)
}
