package realtime

import (
	"context"

	"github.com/google/uuid"
)

// Event types pushed to participants.
const (
	EventNewMessage      = "new_message"
	EventMessagesRead    = "messages_read"
	EventJobStatusUpdate = "job_status_update"
	EventReviewCreated   = "review_created"
)

// Event is the payload delivered on a user's notification channel.
type Event struct {
	Type  string    `json:"type"`
	JobID uuid.UUID `json:"job_id"`
	Data  any       `json:"data,omitempty"`
}

// Notifier delivers an event to users. Delivery is best effort: it never
// fails the operation that produced the event.
type Notifier interface {
	Notify(ctx context.Context, ev Event, userIDs ...uuid.UUID)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event, ...uuid.UUID) {}
