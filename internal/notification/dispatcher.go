package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eproba/server/internal/core/events"
	"github.com/eproba/server/internal/user"
	"github.com/google/uuid"
)

// RecipientDirectory resolves event recipients to deliverable addresses.
type RecipientDirectory interface {
	GetByID(id uuid.UUID) (*user.User, error)
}

// Mail is the email side of delivery, separate from Sender because it needs
// an address, not just a user id.
type Mail interface {
	SendTo(ctx context.Context, email string, n Notification) error
}

type Bus interface {
	Subscribe(eventType string, handler events.Handler)
}

// Dispatcher turns task workflow events into push and email notifications.
// Delivery failures are logged and dropped: notifications never fail the
// workflow that triggered them.
type Dispatcher struct {
	users   RecipientDirectory
	push    Sender
	mailer  Mail
	baseURL string
	logger  *slog.Logger
}

func NewDispatcher(users RecipientDirectory, push Sender, mailer Mail, baseURL string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		users:   users,
		push:    push,
		mailer:  mailer,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Register subscribes the dispatcher to the task transition events.
func (d *Dispatcher) Register(bus Bus) {
	bus.Subscribe(events.EventTypeTaskSubmitted, d.handle)
	bus.Subscribe(events.EventTypeTaskApproved, d.handle)
	bus.Subscribe(events.EventTypeTaskRejected, d.handle)
}

func (d *Dispatcher) handle(ctx context.Context, event events.Event) error {
	te, ok := event.(*events.TaskTransitionEvent)
	if !ok {
		d.logger.Warn("unexpected event payload", "event_type", event.EventType())
		return nil
	}

	n := d.render(te)

	if d.push != nil {
		if err := d.push.Send(ctx, n); err != nil {
			d.logger.Error("push notification failed",
				"error", err,
				"event_id", te.EventID(),
				"recipient_id", n.RecipientID)
		}
	}

	if d.mailer != nil {
		recipient, err := d.users.GetByID(te.RecipientID)
		if err != nil {
			d.logger.Error("notification recipient not found",
				"error", err,
				"recipient_id", te.RecipientID)
			return nil
		}
		if err := d.mailer.SendTo(ctx, recipient.Email, n); err != nil {
			d.logger.Error("notification email failed",
				"error", err,
				"event_id", te.EventID(),
				"recipient_id", n.RecipientID)
		}
	}

	return nil
}

func (d *Dispatcher) render(te *events.TaskTransitionEvent) Notification {
	n := Notification{
		RecipientID: te.RecipientID,
		Link:        fmt.Sprintf("%s/worksheets/%s", d.baseURL, te.WorksheetID),
	}

	switch te.EventType() {
	case events.EventTypeTaskSubmitted:
		n.Title = "Task awaiting your approval"
		n.Body = fmt.Sprintf("%s asks you to approve %q on worksheet %q.",
			te.ActorName, te.TaskName, te.WorksheetName)
		// Approvers land on their pending queue, not the owner's sheet.
		n.Link = fmt.Sprintf("%s/tasks/to-approve", d.baseURL)
	case events.EventTypeTaskApproved:
		n.Title = "Task approved"
		n.Body = fmt.Sprintf("%s approved %q on worksheet %q.",
			te.ActorName, te.TaskName, te.WorksheetName)
	case events.EventTypeTaskRejected:
		n.Title = "Task rejected"
		n.Body = fmt.Sprintf("%s rejected %q on worksheet %q.",
			te.ActorName, te.TaskName, te.WorksheetName)
	}

	return n
}
