package recurrenceworker_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/xpanvictor/xarvis/internal/domains/recurrenceworker"
	"github.com/xpanvictor/xarvis/internal/domains/task"
	"github.com/xpanvictor/xarvis/internal/domains/task/taskfake"
	"github.com/xpanvictor/xarvis/internal/eventbus"
	"github.com/xpanvictor/xarvis/pkg/Logger"
)

// capturingBus records the single handler registered for a topic so the
// test can redeliver the exact same Event (same ID) multiple times, the
// way an at-least-once bus legitimately would.
type capturingBus struct {
	handlers map[string]eventbus.Handler
}

func newCapturingBus() *capturingBus {
	return &capturingBus{handlers: make(map[string]eventbus.Handler)}
}

func (b *capturingBus) Publish(ctx context.Context, topic string, payload []byte) error { return nil }
func (b *capturingBus) Subscribe(topic, consumerName string, h eventbus.Handler) {
	b.handlers[topic] = h
}
func (b *capturingBus) Run(ctx context.Context) error { return nil }
func (b *capturingBus) Close() error                  { return nil }

func (b *capturingBus) deliver(ctx context.Context, topic string, evt eventbus.Event) error {
	return b.handlers[topic](ctx, evt)
}

// Redelivering the same task.completed event any number of times produces
// exactly one successor task.
func TestWorkerCreatesExactlyOneSuccessorAcrossRedeliveries(t *testing.T) {
	repo := taskfake.New()
	dedup := eventbus.NewMemoryDedup()
	worker := recurrenceworker.NewWorker(repo, dedup, Logger.New(false))
	worker.SetClock(func() time.Time { return mustUTC(t, "2025-01-06T09:05:00Z") })

	bus := newCapturingBus()
	worker.Register(bus)

	owner := uuid.New()
	due := mustUTC(t, "2025-01-06T09:00:00Z")
	source := &task.Task{
		ID:         uuid.New(),
		OwnerID:    owner,
		Title:      "ship release",
		Priority:   task.PriorityHigh,
		DueAt:      &due,
		Recurrence: task.RecurrenceWeekly,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.Create(source))

	payload := task.TaskCompletedPayload{
		TaskID:      source.ID,
		OwnerID:     owner,
		Recurrence:  task.RecurrenceWeekly,
		DueAt:       &due,
		CompletedAt: mustUTC(t, "2025-01-06T09:05:00Z"),
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	evt := eventbus.Event{ID: uuid.New(), Topic: eventbus.TopicTaskCompleted, Payload: data}

	for i := 0; i < 3; i++ {
		require.NoError(t, bus.deliver(context.Background(), eventbus.TopicTaskCompleted, evt))
	}

	all, err := repo.List(owner, task.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2) // source + exactly one successor

	var successor *task.Task
	for i := range all {
		if all[i].ID != source.ID {
			successor = &all[i]
		}
	}
	require.NotNil(t, successor)
	require.NotNil(t, successor.ParentTaskID)
	require.Equal(t, source.ID, *successor.ParentTaskID)
	require.NotNil(t, successor.DueAt)
	require.Equal(t, mustUTC(t, "2025-01-13T09:00:00Z"), successor.DueAt.UTC())
}

func TestWorkerSkipsNonRecurringTasks(t *testing.T) {
	repo := taskfake.New()
	dedup := eventbus.NewMemoryDedup()
	worker := recurrenceworker.NewWorker(repo, dedup, Logger.New(false))
	bus := newCapturingBus()
	worker.Register(bus)

	owner := uuid.New()
	source := &task.Task{ID: uuid.New(), OwnerID: owner, Title: "one off", Recurrence: task.RecurrenceNone}
	require.NoError(t, repo.Create(source))

	payload := task.TaskCompletedPayload{TaskID: source.ID, OwnerID: owner, Recurrence: task.RecurrenceNone}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	evt := eventbus.Event{ID: uuid.New(), Topic: eventbus.TopicTaskCompleted, Payload: data}

	require.NoError(t, bus.deliver(context.Background(), eventbus.TopicTaskCompleted, evt))

	all, err := repo.List(owner, task.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
}
