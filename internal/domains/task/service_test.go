package task_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xpanvictor/xarvis/internal/apperrors"
	"github.com/xpanvictor/xarvis/internal/domains/task"
	"github.com/xpanvictor/xarvis/internal/domains/task/taskfake"
	"github.com/xpanvictor/xarvis/internal/eventbus"
	"github.com/xpanvictor/xarvis/pkg/Logger"
)

func newService(t *testing.T) (task.Service, *taskfake.Repository, *eventbus.MemoryBus) {
	t.Helper()
	repo := taskfake.New()
	bus := eventbus.NewMemoryBus()
	svc := task.NewService(repo, bus, Logger.New(false))
	return svc, repo, bus
}

func TestCreateTaskThenGetTaskRoundTrips(t *testing.T) {
	svc, _, _ := newService(t)
	owner := uuid.New()

	created, err := svc.CreateTask(context.Background(), owner, task.CreateTaskRequest{
		Title:    "buy milk",
		Priority: task.PriorityHigh,
	})
	require.NoError(t, err)

	got, err := svc.GetTask(context.Background(), owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, created.Priority, got.Priority)
	assert.Equal(t, owner, got.OwnerID)
}

func TestCreateTaskRejectsEmptyTitle(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.CreateTask(context.Background(), uuid.New(), task.CreateTaskRequest{Title: "   "})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestCreateTaskRejectsOversizedTitle(t *testing.T) {
	svc, _, _ := newService(t)
	huge := make([]byte, task.MaxTitleLen+1)
	for i := range huge {
		huge[i] = 'a'
	}
	_, err := svc.CreateTask(context.Background(), uuid.New(), task.CreateTaskRequest{Title: string(huge)})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

// GetTask never returns a task to anyone but its owner, and the
// cross-owner case is indistinguishable from "doesn't exist".
func TestGetTaskCrossOwnerIsolation(t *testing.T) {
	svc, _, _ := newService(t)
	owner := uuid.New()
	other := uuid.New()

	created, err := svc.CreateTask(context.Background(), owner, task.CreateTaskRequest{Title: "secret"})
	require.NoError(t, err)

	_, err = svc.GetTask(context.Background(), other, created.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	err = svc.DeleteTask(context.Background(), other, created.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	// the task must still exist for its real owner
	_, err = svc.GetTask(context.Background(), owner, created.ID)
	require.NoError(t, err)
}

// AddTag/RemoveTag are idempotent set operations.
func TestTagOperationsAreIdempotent(t *testing.T) {
	svc, _, _ := newService(t)
	owner := uuid.New()
	created, err := svc.CreateTask(context.Background(), owner, task.CreateTaskRequest{Title: "grocery run"})
	require.NoError(t, err)

	_, err = svc.AddTag(context.Background(), owner, created.ID, "Errands")
	require.NoError(t, err)
	got, err := svc.AddTag(context.Background(), owner, created.ID, "errands")
	require.NoError(t, err)
	assert.Equal(t, []string{"errands"}, got.Tags)

	got, err = svc.RemoveTag(context.Background(), owner, created.ID, "nonexistent")
	require.NoError(t, err)
	assert.Equal(t, []string{"errands"}, got.Tags)

	got, err = svc.RemoveTag(context.Background(), owner, created.ID, "errands")
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestUpdateTaskWithCurrentValuesIsANoOp(t *testing.T) {
	svc, _, _ := newService(t)
	owner := uuid.New()
	created, err := svc.CreateTask(context.Background(), owner, task.CreateTaskRequest{
		Title:       "write report",
		Description: "quarterly numbers",
		Priority:    task.PriorityMedium,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateTask(context.Background(), owner, created.ID, task.UpdateTaskRequest{
		Title:       &created.Title,
		Description: &created.Description,
		Priority:    &created.Priority,
	})
	require.NoError(t, err)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Description, updated.Description)
	assert.Equal(t, created.Priority, updated.Priority)
}

func TestClearingRemindAtAlsoClearsReminderSent(t *testing.T) {
	svc, repo, _ := newService(t)
	owner := uuid.New()
	created, err := svc.CreateTask(context.Background(), owner, task.CreateTaskRequest{Title: "call dentist"})
	require.NoError(t, err)

	future := time.Now().Add(time.Hour)
	_, err = svc.SetReminder(context.Background(), owner, created.ID, &future)
	require.NoError(t, err)

	// Simulate the scheduler having already fired.
	stored, err := repo.GetByID(owner, created.ID)
	require.NoError(t, err)
	stored.ReminderSent = true
	require.NoError(t, repo.Update(stored))

	updated, err := svc.UpdateTask(context.Background(), owner, created.ID, task.UpdateTaskRequest{ClearRemindAt: true})
	require.NoError(t, err)
	assert.Nil(t, updated.RemindAt)
	assert.False(t, updated.ReminderSent)
}

func TestSetReminderRejectsPastInstant(t *testing.T) {
	svc, _, _ := newService(t)
	owner := uuid.New()
	created, err := svc.CreateTask(context.Background(), owner, task.CreateTaskRequest{Title: "x"})
	require.NoError(t, err)

	past := time.Now().Add(-time.Minute)
	_, err = svc.SetReminder(context.Background(), owner, created.ID, &past)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

// ToggleComplete publishes task.completed exactly on the false->true
// transition, and not on the reverse transition.
func TestToggleCompletePublishesOnlyOnCompletion(t *testing.T) {
	svc, _, bus := newService(t)
	owner := uuid.New()
	created, err := svc.CreateTask(context.Background(), owner, task.CreateTaskRequest{
		Title:      "ship release",
		Recurrence: task.RecurrenceWeekly,
	})
	require.NoError(t, err)

	var captured []task.TaskCompletedPayload
	bus.Subscribe(eventbus.TopicTaskCompleted, "test", func(_ context.Context, evt eventbus.Event) error {
		var p task.TaskCompletedPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return err
		}
		captured = append(captured, p)
		return nil
	})

	updated, err := svc.ToggleComplete(context.Background(), owner, created.ID)
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	require.Len(t, captured, 1)
	assert.Equal(t, created.ID, captured[0].TaskID)

	// Flipping back to incomplete must not publish again.
	_, err = svc.ToggleComplete(context.Background(), owner, created.ID)
	require.NoError(t, err)
	assert.Len(t, captured, 1)
}

// Search is a case-insensitive substring match over title/description.
func TestSearchTasksSoundness(t *testing.T) {
	svc, _, _ := newService(t)
	owner := uuid.New()
	_, err := svc.CreateTask(context.Background(), owner, task.CreateTaskRequest{Title: "Buy Milk"})
	require.NoError(t, err)
	_, err = svc.CreateTask(context.Background(), owner, task.CreateTaskRequest{Title: "Walk the dog", Description: "need fresh MILK for the cafe too"})
	require.NoError(t, err)
	_, err = svc.CreateTask(context.Background(), owner, task.CreateTaskRequest{Title: "Read a book"})
	require.NoError(t, err)

	results, err := svc.SearchTasks(context.Background(), owner, "milk")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestListTasksOrderingIsStableAcrossCalls(t *testing.T) {
	svc, _, _ := newService(t)
	owner := uuid.New()
	for _, title := range []string{"charlie", "alpha", "bravo"} {
		_, err := svc.CreateTask(context.Background(), owner, task.CreateTaskRequest{Title: title})
		require.NoError(t, err)
	}

	filter := task.TaskFilter{SortKey: task.SortTitle}
	first, err := svc.ListTasks(context.Background(), owner, filter)
	require.NoError(t, err)
	second, err := svc.ListTasks(context.Background(), owner, filter)
	require.NoError(t, err)
	require.Len(t, first, 3)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
	assert.Equal(t, "alpha", first[0].Title)
	assert.Equal(t, "bravo", first[1].Title)
	assert.Equal(t, "charlie", first[2].Title)
}

func TestDeleteTaskCascadesTagsButNotSuccessors(t *testing.T) {
	svc, _, _ := newService(t)
	owner := uuid.New()
	parent, err := svc.CreateTask(context.Background(), owner, task.CreateTaskRequest{Title: "parent", Tags: []string{"home"}})
	require.NoError(t, err)

	successor, err := svc.CreateSuccessor(context.Background(), owner, task.CreateTaskRequest{Title: "parent"}, parent.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(context.Background(), owner, parent.ID))

	_, err = svc.GetTask(context.Background(), owner, parent.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	// The successor is an independent work item and survives.
	still, err := svc.GetTask(context.Background(), owner, successor.ID)
	require.NoError(t, err)
	assert.Equal(t, parent.ID, *still.ParentTaskID)
}
