// Package notificationworker consumes task.due events and delivers an
// email reminder to the task's owner.
package notificationworker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xpanvictor/xarvis/internal/apperrors"
	"github.com/xpanvictor/xarvis/internal/domains/task"
	"github.com/xpanvictor/xarvis/internal/domains/user"
	"github.com/xpanvictor/xarvis/internal/eventbus"
	"github.com/xpanvictor/xarvis/pkg/Logger"
)

const ConsumerName = "notification-worker"

// EmailMessage is the fully-rendered message handed to an EmailSender.
type EmailMessage struct {
	ToEmail string
	Subject string
	Body    string
}

// EmailSender is the outbound capability this worker depends on; swap in a
// real SMTP/API-backed sender in production and a recording fake in tests.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// Worker renders and delivers the reminder for each task.due event,
// deduping by event ID the same way RecurrenceWorker does.
type Worker struct {
	users  user.UserRepository
	dedup  eventbus.Dedup
	sender EmailSender
	logger *Logger.Logger
}

func NewWorker(users user.UserRepository, dedup eventbus.Dedup, sender EmailSender, logger *Logger.Logger) *Worker {
	return &Worker{users: users, dedup: dedup, sender: sender, logger: logger}
}

func (w *Worker) Register(bus eventbus.Bus) {
	bus.Subscribe(eventbus.TopicTaskDue, ConsumerName, w.handle)
}

func (w *Worker) handle(ctx context.Context, evt eventbus.Event) error {
	seen, err := w.dedup.Seen(ConsumerName, evt.ID)
	if err != nil {
		return apperrors.UpstreamTransient(err)
	}
	if seen {
		return nil
	}

	var payload task.TaskDuePayload
	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		w.logger.Errorw("malformed task.due payload, dropping", "error", err)
		return nil
	}

	owner, err := w.users.GetByID(payload.OwnerID.String())
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) || apperrors.Is(err, apperrors.KindNotFound) {
			w.logger.Warnw("owner no longer exists, dropping reminder", "task_id", payload.TaskID)
			return w.dedup.MarkSeen(ConsumerName, evt.ID)
		}
		return apperrors.UpstreamTransient(err)
	}

	msg := render(owner.Email, payload)
	if err := w.sender.Send(ctx, msg); err != nil {
		return apperrors.UpstreamTransient(err)
	}
	return w.dedup.MarkSeen(ConsumerName, evt.ID)
}

func render(ownerEmail string, p task.TaskDuePayload) EmailMessage {
	due := "no due date"
	if p.DueAt != nil {
		due = p.DueAt.Format("Jan 2, 2006 3:04 PM MST")
	}
	return EmailMessage{
		ToEmail: ownerEmail,
		Subject: fmt.Sprintf("Reminder: %s", p.Title),
		Body:    fmt.Sprintf("Your task %q is due %s.", p.Title, due),
	}
}
