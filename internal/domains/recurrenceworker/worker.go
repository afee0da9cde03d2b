package recurrenceworker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/xpanvictor/xarvis/internal/apperrors"
	"github.com/xpanvictor/xarvis/internal/domains/task"
	"github.com/xpanvictor/xarvis/internal/eventbus"
	"github.com/xpanvictor/xarvis/pkg/Logger"
)

const ConsumerName = "recurrence-worker"

// Worker consumes task.completed and, for tasks with a non-none recurrence,
// creates the successor task. It reads the source task directly from the
// repository rather than over the network: RecurrenceWorker shares this
// module's process boundary with TaskCore, so the service-role JWT minted
// by the auth substrate is reserved for genuinely out-of-process callers.
type Worker struct {
	repo   task.Repository
	dedup  eventbus.Dedup
	logger *Logger.Logger
	clock  func() time.Time
}

func NewWorker(repo task.Repository, dedup eventbus.Dedup, logger *Logger.Logger) *Worker {
	return &Worker{repo: repo, dedup: dedup, logger: logger, clock: time.Now}
}

// SetClock overrides the worker's notion of "now". Production callers never
// need this; it lets tests pin the instant NextOccurrence advances against.
func (w *Worker) SetClock(clock func() time.Time) {
	w.clock = clock
}

func (w *Worker) Register(bus eventbus.Bus) {
	bus.Subscribe(eventbus.TopicTaskCompleted, ConsumerName, w.handle)
}

func (w *Worker) handle(ctx context.Context, evt eventbus.Event) error {
	seen, err := w.dedup.Seen(ConsumerName, evt.ID)
	if err != nil {
		return apperrors.UpstreamTransient(err)
	}
	if seen {
		return nil
	}

	var payload task.TaskCompletedPayload
	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		w.logger.Errorw("malformed task.completed payload, dropping", "error", err)
		return nil
	}
	if payload.Recurrence == task.RecurrenceNone {
		return w.dedup.MarkSeen(ConsumerName, evt.ID)
	}

	source, err := w.repo.GetByIDAnyOwner(payload.TaskID)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			w.logger.Warnw("source task vanished before successor could be created", "task_id", payload.TaskID)
			return w.dedup.MarkSeen(ConsumerName, evt.ID)
		}
		return apperrors.UpstreamTransient(err)
	}

	now := w.clock()
	anchor := payload.CompletedAt
	if anchor.IsZero() {
		anchor = now
	}
	if source.DueAt != nil {
		anchor = *source.DueAt
	}
	nextDue := NextOccurrence(anchor, payload.Recurrence, now)

	var nextRemind *time.Time
	if source.RemindAt != nil && source.DueAt != nil {
		offset := source.DueAt.Sub(*source.RemindAt)
		r := nextDue.Add(-offset)
		nextRemind = &r
	}

	now2 := w.clock()
	successor := &task.Task{
		ID:           uuid.New(),
		OwnerID:      source.OwnerID,
		Title:        source.Title,
		Description:  source.Description,
		Priority:     source.Priority,
		DueAt:        &nextDue,
		RemindAt:     nextRemind,
		Recurrence:   source.Recurrence,
		ParentTaskID: &source.ID,
		Tags:         source.Tags,
		CreatedAt:    now2,
		UpdatedAt:    now2,
	}
	if err := w.repo.Create(successor); err != nil {
		return apperrors.UpstreamTransient(err)
	}
	// Create never persists Tags directly; the join table is populated through
	// AddTag, same as task.Service.attachTags does for a fresh task.
	for _, name := range source.Tags {
		if err := w.repo.AddTag(source.OwnerID, successor.ID, name); err != nil {
			return apperrors.UpstreamTransient(err)
		}
	}
	return w.dedup.MarkSeen(ConsumerName, evt.ID)
}
