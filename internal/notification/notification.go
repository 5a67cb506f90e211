package notification

import (
	"context"

	"github.com/google/uuid"
)

// Notification is one message to one recipient. Delivery channels decide how
// to render it.
type Notification struct {
	RecipientID uuid.UUID `json:"recipient_id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Link        string    `json:"link,omitempty"`
}

// Sender delivers a notification over one channel. Failures are the
// channel's problem to report; callers fire and forget.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}
