package reminderscheduler_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/xpanvictor/xarvis/internal/domains/reminderscheduler"
	"github.com/xpanvictor/xarvis/internal/domains/task"
	"github.com/xpanvictor/xarvis/internal/domains/task/taskfake"
	"github.com/xpanvictor/xarvis/internal/eventbus"
	"github.com/xpanvictor/xarvis/pkg/Logger"
)

// Across any sequence of sweeps, at most one due-reminder event is
// emitted for a given task's current remindAt.
func TestSweepEmitsReminderAtMostOnce(t *testing.T) {
	repo := taskfake.New()
	bus := eventbus.NewMemoryBus()

	var mu sync.Mutex
	var received []task.TaskDuePayload
	bus.Subscribe(eventbus.TopicTaskDue, "test", func(_ context.Context, evt eventbus.Event) error {
		var p task.TaskDuePayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return err
		}
		mu.Lock()
		received = append(received, p)
		mu.Unlock()
		return nil
	})

	owner := uuid.New()
	remindAt := time.Now().Add(-time.Second) // already due
	tsk := &task.Task{ID: uuid.New(), OwnerID: owner, Title: "stand-up", RemindAt: &remindAt}
	require.NoError(t, repo.Create(tsk))

	sched := reminderscheduler.NewScheduler(repo, bus, Logger.New(false), reminderscheduler.Config{})

	// Run several sweeps, as multiple ticks (or multiple scheduler
	// instances sharing the Store) legitimately would.
	for i := 0; i < 5; i++ {
		require.NoError(t, sched.Sweep(context.Background()))
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	require.Equal(t, tsk.ID, received[0].TaskID)

	stored, err := repo.GetByID(owner, tsk.ID)
	require.NoError(t, err)
	require.True(t, stored.ReminderSent)
}

func TestSweepIgnoresNotYetDueAndAlreadySentReminders(t *testing.T) {
	repo := taskfake.New()
	bus := eventbus.NewMemoryBus()

	var count int
	bus.Subscribe(eventbus.TopicTaskDue, "test", func(_ context.Context, evt eventbus.Event) error {
		count++
		return nil
	})

	owner := uuid.New()
	future := time.Now().Add(time.Hour)
	notYetDue := &task.Task{ID: uuid.New(), OwnerID: owner, Title: "later", RemindAt: &future}
	require.NoError(t, repo.Create(notYetDue))

	past := time.Now().Add(-time.Minute)
	alreadySent := &task.Task{ID: uuid.New(), OwnerID: owner, Title: "done", RemindAt: &past, ReminderSent: true}
	require.NoError(t, repo.Create(alreadySent))

	sched := reminderscheduler.NewScheduler(repo, bus, Logger.New(false), reminderscheduler.Config{})
	require.NoError(t, sched.Sweep(context.Background()))

	require.Equal(t, 0, count)
}

func TestSweepRespectsBatchSize(t *testing.T) {
	repo := taskfake.New()
	bus := eventbus.NewMemoryBus()
	owner := uuid.New()
	past := time.Now().Add(-time.Minute)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(&task.Task{ID: uuid.New(), OwnerID: owner, Title: "t", RemindAt: &past}))
	}

	var count int
	bus.Subscribe(eventbus.TopicTaskDue, "test", func(_ context.Context, evt eventbus.Event) error {
		count++
		return nil
	})

	sched := reminderscheduler.NewScheduler(repo, bus, Logger.New(false), reminderscheduler.Config{BatchSize: 2})
	require.NoError(t, sched.Sweep(context.Background()))
	require.Equal(t, 2, count)
}
