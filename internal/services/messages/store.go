package messages

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/models"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/services/names"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/validation"
)

// Store holds the per-job chat between a job's poster and its acceptor.
type Store struct {
	DB       *gorm.DB
	Names    *names.Resolver
	Notifier realtime.Notifier
	Log      *zap.Logger
	Now      func() time.Time
}

func NewStore(db *gorm.DB, resolver *names.Resolver, notifier realtime.Notifier, log *zap.Logger) *Store {
	if notifier == nil {
		notifier = realtime.Nop{}
	}
	return &Store{
		DB:       db,
		Names:    resolver,
		Notifier: notifier,
		Log:      log,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

type SendInput struct {
	ReceiverID uuid.UUID `json:"receiver_id" validate:"required"`
	Content    string    `json:"content" validate:"required,max=4000"`
}

// Send appends a message from senderID to the other participant of the job.
func (s *Store) Send(ctx context.Context, senderID, jobID uuid.UUID, in SendInput) (*models.Message, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	job, err := s.job(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusInProgress && job.Status != models.JobStatusCompleted {
		return nil, apperr.InvalidState("chat is only available once the job is accepted")
	}
	if !pairMatches(job, senderID, in.ReceiverID) {
		return nil, apperr.Unauthorized("sender and receiver must be the job's hirer and worker")
	}

	resolved, err := s.Names.Names(ctx, senderID, in.ReceiverID)
	if err != nil {
		s.Log.Warn("failed to resolve participant names", zap.Error(err), zap.String("job_id", jobID.String()))
	}

	msg := models.Message{
		JobID:        job.ID,
		SenderID:     senderID,
		ReceiverID:   in.ReceiverID,
		Content:      in.Content,
		Read:         false,
		SenderName:   resolved[senderID],
		ReceiverName: resolved[in.ReceiverID],
		CreatedAt:    s.Now(),
	}
	if err := s.DB.WithContext(ctx).Create(&msg).Error; err != nil {
		s.Log.Error("failed to save message", zap.Error(err), zap.String("job_id", jobID.String()))
		return nil, apperr.Internal(err, "failed to send message")
	}

	s.Notifier.Notify(ctx, realtime.Event{Type: realtime.EventNewMessage, JobID: job.ID, Data: msg}, senderID, in.ReceiverID)
	return &msg, nil
}

// List returns the full history of a job's chat, oldest first.
func (s *Store) List(ctx context.Context, requesterID, jobID uuid.UUID) ([]models.Message, error) {
	job, err := s.job(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsParticipant(requesterID) {
		return nil, apperr.Unauthorized("not a participant of this job")
	}

	var out []models.Message
	if err := s.DB.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		s.Log.Error("failed to fetch messages", zap.Error(err), zap.String("job_id", jobID.String()))
		return nil, apperr.Internal(err, "failed to fetch messages")
	}

	rows := make([]names.Row, 0, len(out))
	for i := range out {
		m := &out[i]
		rows = append(rows, names.Row{ID: m.ID, Fields: []names.Field{
			{Column: "sender_name", Value: &m.SenderName, UserID: &m.SenderID},
			{Column: "receiver_name", Value: &m.ReceiverName, UserID: &m.ReceiverID},
		}})
	}
	s.Names.Fill(ctx, &models.Message{}, rows)
	return out, nil
}

// MarkAsRead flips every unread message addressed to userID on the job in one
// statement and returns how many changed. A repeat call returns 0.
func (s *Store) MarkAsRead(ctx context.Context, userID, jobID uuid.UUID) (int64, error) {
	job, err := s.job(ctx, jobID)
	if err != nil {
		return 0, err
	}
	if !job.IsParticipant(userID) {
		return 0, apperr.Unauthorized("not a participant of this job")
	}

	res := s.DB.WithContext(ctx).Model(&models.Message{}).
		Where("job_id = ? AND receiver_id = ? AND read = ?", jobID, userID, false).
		Update("read", true)
	if res.Error != nil {
		s.Log.Error("failed to mark messages read", zap.Error(res.Error), zap.String("job_id", jobID.String()))
		return 0, apperr.Internal(res.Error, "failed to mark messages as read")
	}

	if res.RowsAffected > 0 {
		if other, _ := job.OtherParty(userID); other != nil {
			s.Notifier.Notify(ctx, realtime.Event{
				Type:  realtime.EventMessagesRead,
				JobID: job.ID,
				Data:  map[string]any{"reader_id": userID, "count": res.RowsAffected},
			}, *other)
		}
	}
	return res.RowsAffected, nil
}

// Chat summarises one active conversation from a participant's point of view.
type Chat struct {
	JobID           uuid.UUID  `json:"job_id"`
	JobTitle        string     `json:"job_title"`
	HirerName       string     `json:"hirer_name"`
	WorkerName      string     `json:"worker_name"`
	IsHirer         bool       `json:"is_hirer"`
	OtherPartyID    *uuid.UUID `json:"other_party_id,omitempty"`
	OtherPartyName  string     `json:"other_party_name"`
	LastMessage     string     `json:"last_message,omitempty"`
	LastMessageTime time.Time  `json:"last_message_time"`
	UnreadCount     int64      `json:"unread_count"`
}

// UserChats lists the user's in-progress jobs as chats, most recent activity first.
func (s *Store) UserChats(ctx context.Context, userID uuid.UUID) ([]Chat, error) {
	var jobs []models.Job
	if err := s.DB.WithContext(ctx).
		Where("status = ? AND (posted_by = ? OR accepted_by = ?)", models.JobStatusInProgress, userID, userID).
		Find(&jobs).Error; err != nil {
		s.Log.Error("failed to fetch chats", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, apperr.Internal(err, "failed to fetch chats")
	}
	if len(jobs) == 0 {
		return []Chat{}, nil
	}

	jobIDs := make([]uuid.UUID, len(jobs))
	for i := range jobs {
		jobIDs[i] = jobs[i].ID
	}

	var counts []struct {
		JobID uuid.UUID
		Total int64
	}
	if err := s.DB.WithContext(ctx).Model(&models.Message{}).
		Select("job_id, COUNT(*) AS total").
		Where("job_id IN ? AND receiver_id = ? AND read = ?", jobIDs, userID, false).
		Group("job_id").
		Scan(&counts).Error; err != nil {
		s.Log.Error("failed to count unread messages", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, apperr.Internal(err, "failed to count unread messages")
	}
	unread := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		unread[c.JobID] = c.Total
	}

	rows := make([]names.Row, 0, len(jobs))
	for i := range jobs {
		j := &jobs[i]
		rows = append(rows, names.Row{ID: j.ID, Fields: []names.Field{
			{Column: "hirer_name", Value: &j.HirerName, UserID: &j.PostedBy},
			{Column: "worker_name", Value: &j.WorkerName, UserID: j.AcceptedBy},
		}})
	}
	s.Names.Fill(ctx, &models.Job{}, rows)

	out := make([]Chat, 0, len(jobs))
	for i := range jobs {
		j := &jobs[i]
		otherID, otherName := j.OtherParty(userID)
		chat := Chat{
			JobID:           j.ID,
			JobTitle:        j.Title,
			HirerName:       j.HirerName,
			WorkerName:      j.WorkerName,
			IsHirer:         j.PostedBy == userID,
			OtherPartyID:    otherID,
			OtherPartyName:  otherName,
			LastMessageTime: j.CreatedAt,
			UnreadCount:     unread[j.ID],
		}

		var last models.Message
		err := s.DB.WithContext(ctx).
			Where("job_id = ?", j.ID).
			Order("created_at DESC").
			Limit(1).
			Take(&last).Error
		switch {
		case err == nil:
			chat.LastMessage = last.Content
			chat.LastMessageTime = last.CreatedAt
		case !errors.Is(err, gorm.ErrRecordNotFound):
			s.Log.Error("failed to fetch latest message", zap.Error(err), zap.String("job_id", j.ID.String()))
			return nil, apperr.Internal(err, "failed to fetch chats")
		}
		out = append(out, chat)
	}

	slices.SortStableFunc(out, func(a, b Chat) int {
		return b.LastMessageTime.Compare(a.LastMessageTime)
	})
	return out, nil
}

// UnreadCounts is UserChats restricted to chats with unread messages.
func (s *Store) UnreadCounts(ctx context.Context, userID uuid.UUID) ([]Chat, error) {
	chats, err := s.UserChats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(chats, func(c Chat) bool { return c.UnreadCount == 0 }), nil
}

func (s *Store) job(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := s.DB.WithContext(ctx).First(&job, "id = ?", jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("job not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to fetch job")
	}
	return &job, nil
}

func pairMatches(job *models.Job, sender, receiver uuid.UUID) bool {
	if job.AcceptedBy == nil || sender == receiver {
		return false
	}
	acceptor := *job.AcceptedBy
	return (sender == job.PostedBy && receiver == acceptor) ||
		(sender == acceptor && receiver == job.PostedBy)
}
