package messages

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/db/dbtest"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/models"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/services/names"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/services/users"
)

type recorder struct {
	events []realtime.Event
	to     [][]uuid.UUID
}

func (r *recorder) Notify(_ context.Context, ev realtime.Event, ids ...uuid.UUID) {
	r.events = append(r.events, ev)
	r.to = append(r.to, ids)
}

type fixture struct {
	db     *gorm.DB
	store  *Store
	clock  *dbtest.Clock
	events *recorder
	hirer  models.User
	worker models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zaptest.NewLogger(t)
	gdb := dbtest.New(t)
	ev := &recorder{}
	clock := dbtest.NewClock()
	store := NewStore(gdb, names.NewResolver(users.NewDirectory(gdb, log), gdb, log), ev, log)
	store.Now = clock.Now

	f := &fixture{db: gdb, store: store, clock: clock, events: ev}
	f.hirer = models.User{ExternalID: "h", Name: "Hema", Role: models.RoleHirer}
	f.worker = models.User{ExternalID: "w", Name: "Wasim", Role: models.RoleWorker}
	require.NoError(t, gdb.Create(&f.hirer).Error)
	require.NoError(t, gdb.Create(&f.worker).Error)
	return f
}

func (f *fixture) job(t *testing.T, title string, status models.JobStatus) *models.Job {
	t.Helper()
	j := models.Job{
		Title: title, Wage: "500", Location: "Pune",
		PostedBy: f.hirer.ID, HirerName: f.hirer.Name,
		Status: status, CreatedAt: f.clock.Now(),
	}
	if status != models.JobStatusOpen {
		j.AcceptedBy = &f.worker.ID
		j.WorkerName = f.worker.Name
	}
	require.NoError(t, f.db.Create(&j).Error)
	return &j
}

func TestSendRequiresAcceptedJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	open := f.job(t, "Open", models.JobStatusOpen)

	_, err := f.store.Send(ctx, f.hirer.ID, open.ID, SendInput{ReceiverID: f.worker.ID, Content: "hi"})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidState))

	_, err = f.store.Send(ctx, f.hirer.ID, uuid.New(), SendInput{ReceiverID: f.worker.ID, Content: "hi"})
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	done := f.job(t, "Done", models.JobStatusCompleted)
	_, err = f.store.Send(ctx, f.hirer.ID, done.ID, SendInput{ReceiverID: f.worker.ID, Content: "thanks"})
	assert.NoError(t, err, "completed jobs keep their chat")
}

func TestSendRejectsOutsiders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.job(t, "Paint", models.JobStatusInProgress)
	stranger := uuid.New()

	cases := []struct {
		name             string
		sender, receiver uuid.UUID
	}{
		{"stranger to worker", stranger, f.worker.ID},
		{"hirer to stranger", f.hirer.ID, stranger},
		{"hirer to self", f.hirer.ID, f.hirer.ID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.store.Send(ctx, tc.sender, job.ID, SendInput{ReceiverID: tc.receiver, Content: "anything"})
			assert.True(t, apperr.Is(err, apperr.CodeUnauthorized))
		})
	}

	_, err := f.store.Send(ctx, f.hirer.ID, job.ID, SendInput{ReceiverID: f.worker.ID, Content: "   "})
	assert.True(t, apperr.Is(err, apperr.CodeValidationFailed))
}

func TestSendAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.job(t, "Paint", models.JobStatusInProgress)

	first, err := f.store.Send(ctx, f.hirer.ID, job.ID, SendInput{ReceiverID: f.worker.ID, Content: "When can you come?"})
	require.NoError(t, err)
	assert.False(t, first.Read)
	assert.Equal(t, "Hema", first.SenderName)
	assert.Equal(t, "Wasim", first.ReceiverName)

	_, err = f.store.Send(ctx, f.worker.ID, job.ID, SendInput{ReceiverID: f.hirer.ID, Content: "Tomorrow 9am"})
	require.NoError(t, err)

	history, err := f.store.List(ctx, f.worker.ID, job.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "When can you come?", history[0].Content)
	assert.Equal(t, "Tomorrow 9am", history[1].Content)

	_, err = f.store.List(ctx, uuid.New(), job.ID)
	assert.True(t, apperr.Is(err, apperr.CodeUnauthorized))

	require.Len(t, f.events.events, 2)
	assert.Equal(t, realtime.EventNewMessage, f.events.events[0].Type)
	assert.ElementsMatch(t, []uuid.UUID{f.hirer.ID, f.worker.ID}, f.events.to[0])
}

func TestListBackfillsNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.job(t, "Paint", models.JobStatusInProgress)

	raw := models.Message{JobID: job.ID, SenderID: f.worker.ID, ReceiverID: f.hirer.ID, Content: "legacy", CreatedAt: f.clock.Now()}
	require.NoError(t, f.db.Create(&raw).Error)

	history, err := f.store.List(ctx, f.hirer.ID, job.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Wasim", history[0].SenderName)
	assert.Equal(t, "Hema", history[0].ReceiverName)
}

func TestMarkAsReadIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.job(t, "Paint", models.JobStatusInProgress)

	for _, content := range []string{"one", "two", "three"} {
		_, err := f.store.Send(ctx, f.hirer.ID, job.ID, SendInput{ReceiverID: f.worker.ID, Content: content})
		require.NoError(t, err)
	}
	_, err := f.store.Send(ctx, f.worker.ID, job.ID, SendInput{ReceiverID: f.hirer.ID, Content: "reply"})
	require.NoError(t, err)

	n, err := f.store.MarkAsRead(ctx, f.worker.ID, job.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	n, err = f.store.MarkAsRead(ctx, f.worker.ID, job.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	last := f.events.events[len(f.events.events)-1]
	assert.Equal(t, realtime.EventMessagesRead, last.Type)
	assert.Equal(t, []uuid.UUID{f.hirer.ID}, f.events.to[len(f.events.to)-1])

	_, err = f.store.MarkAsRead(ctx, uuid.New(), job.ID)
	assert.True(t, apperr.Is(err, apperr.CodeUnauthorized))
}

func TestUserChatsAndUnreadCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	quiet := f.job(t, "Quiet", models.JobStatusInProgress)
	busy := f.job(t, "Busy", models.JobStatusInProgress)
	f.job(t, "Still open", models.JobStatusOpen)
	f.job(t, "Finished", models.JobStatusCompleted)

	_, err := f.store.Send(ctx, f.hirer.ID, busy.ID, SendInput{ReceiverID: f.worker.ID, Content: "first"})
	require.NoError(t, err)
	_, err = f.store.Send(ctx, f.hirer.ID, busy.ID, SendInput{ReceiverID: f.worker.ID, Content: "second"})
	require.NoError(t, err)

	chats, err := f.store.UserChats(ctx, f.worker.ID)
	require.NoError(t, err)
	require.Len(t, chats, 2, "only in-progress jobs are chats")

	assert.Equal(t, busy.ID, chats[0].JobID, "latest activity first")
	assert.Equal(t, "second", chats[0].LastMessage)
	assert.EqualValues(t, 2, chats[0].UnreadCount)
	assert.False(t, chats[0].IsHirer)
	require.NotNil(t, chats[0].OtherPartyID)
	assert.Equal(t, f.hirer.ID, *chats[0].OtherPartyID)
	assert.Equal(t, "Hema", chats[0].OtherPartyName)

	assert.Equal(t, quiet.ID, chats[1].JobID)
	assert.Empty(t, chats[1].LastMessage)
	assert.True(t, chats[1].LastMessageTime.Equal(quiet.CreatedAt), "falls back to job creation time")
	assert.Zero(t, chats[1].UnreadCount)

	hirerChats, err := f.store.UserChats(ctx, f.hirer.ID)
	require.NoError(t, err)
	require.Len(t, hirerChats, 2)
	assert.True(t, hirerChats[0].IsHirer)
	assert.Zero(t, hirerChats[0].UnreadCount, "own messages are not unread")

	unread, err := f.store.UnreadCounts(ctx, f.worker.ID)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, busy.ID, unread[0].JobID)

	none, err := f.store.UserChats(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}
