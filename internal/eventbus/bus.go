// Package eventbus is the publish/subscribe fabric TaskCore and its workers
// use to react to each other without a direct dependency. Delivery is
// at-least-once and unordered across topics; consumers are expected to
// dedup by event ID the way RecurrenceWorker and NotificationWorker do.
package eventbus

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TopicTaskCompleted = "task.completed"
	TopicTaskDue       = "task.due"
)

// Event is the envelope carried on every topic. Payload holds the
// topic-specific struct as JSON bytes; each handler unmarshals it into the
// payload type of its topic.
type Event struct {
	ID         uuid.UUID
	Topic      string
	OccurredAt time.Time
	Payload    []byte
}

// Handler processes one delivery. Returning an error that wraps an
// apperrors upstream-transient kind asks the bus to retry later; any other
// error is treated as a permanent failure and the delivery is dropped after
// logging.
type Handler func(ctx context.Context, evt Event) error

// Bus is the capability TaskCore and the workers depend on. Publish is used
// by producers (TaskCore, ReminderScheduler); Subscribe is used by
// consumers (RecurrenceWorker, NotificationWorker) during startup, before
// Run is called.
type Bus interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(topic, consumerName string, h Handler)
	// Run blocks serving subscribed handlers until ctx is cancelled.
	Run(ctx context.Context) error
	Close() error
}
