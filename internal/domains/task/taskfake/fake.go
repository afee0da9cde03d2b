// Package taskfake is an in-memory task.Repository used by tests across
// TaskCore, the recurrence worker, and the reminder scheduler, in place of
// a generated mock.
package taskfake

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xpanvictor/xarvis/internal/apperrors"
	"github.com/xpanvictor/xarvis/internal/domains/task"
)

type Repository struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]task.Task
}

func New() *Repository {
	return &Repository{tasks: make(map[uuid.UUID]task.Task)}
}

func cloneTask(t task.Task) task.Task {
	cp := t
	if t.DueAt != nil {
		d := *t.DueAt
		cp.DueAt = &d
	}
	if t.RemindAt != nil {
		r := *t.RemindAt
		cp.RemindAt = &r
	}
	if t.ParentTaskID != nil {
		p := *t.ParentTaskID
		cp.ParentTaskID = &p
	}
	cp.Tags = append([]string(nil), t.Tags...)
	return cp
}

func (r *Repository) Create(t *task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID] = cloneTask(*t)
	return nil
}

func (r *Repository) GetByID(ownerID, id uuid.UUID) (*task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, apperrors.NotFound()
	}
	out := cloneTask(t)
	return &out, nil
}

func (r *Repository) GetByIDAnyOwner(id uuid.UUID) (*task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, apperrors.NotFound()
	}
	out := cloneTask(t)
	return &out, nil
}

func (r *Repository) Update(t *task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.tasks[t.ID]
	if !ok || existing.OwnerID != t.OwnerID {
		return apperrors.NotFound()
	}
	r.tasks[t.ID] = cloneTask(*t)
	return nil
}

func (r *Repository) Delete(ownerID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.tasks[id]
	if !ok || existing.OwnerID != ownerID {
		return apperrors.NotFound()
	}
	delete(r.tasks, id)
	return nil
}

func (r *Repository) List(ownerID uuid.UUID, f task.TaskFilter) ([]task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []task.Task
	now := time.Now().UTC()
	for _, t := range r.tasks {
		if t.OwnerID != ownerID {
			continue
		}
		if f.Priority != nil && t.Priority != *f.Priority {
			continue
		}
		if f.Completed != nil && t.Completed != *f.Completed {
			continue
		}
		if f.Overdue && (t.Completed || t.DueAt == nil || !t.DueAt.Before(now)) {
			continue
		}
		if f.Tag != "" && !containsTag(t.Tags, f.Tag) {
			continue
		}
		out = append(out, cloneTask(t))
	}
	sortTasks(out, f)
	return out, nil
}

func containsTag(tags []string, name string) bool {
	for _, t := range tags {
		if t == name {
			return true
		}
	}
	return false
}

func sortTasks(ts []task.Task, f task.TaskFilter) {
	less := func(i, j int) bool {
		var cmp bool
		switch f.SortKey {
		case task.SortUpdatedAt:
			cmp = ts[i].UpdatedAt.Before(ts[j].UpdatedAt)
		case task.SortDueAt:
			return dueAtLess(ts[i].DueAt, ts[j].DueAt, f.SortDesc)
		case task.SortPriority:
			cmp = ts[i].Priority < ts[j].Priority
		case task.SortTitle:
			cmp = strings.ToLower(ts[i].Title) < strings.ToLower(ts[j].Title)
		default:
			cmp = ts[i].CreatedAt.Before(ts[j].CreatedAt)
		}
		if f.SortDesc {
			return !cmp
		}
		return cmp
	}
	sort.SliceStable(ts, less)
}

// dueAtLess sorts a nil dueAt last on an ascending sort and first on a
// descending one, so "no due date" never sits among the most urgent.
func dueAtLess(a, b *time.Time, desc bool) bool {
	if a == nil && b == nil {
		return false
	}
	if a == nil {
		return desc
	}
	if b == nil {
		return !desc
	}
	if desc {
		return a.After(*b)
	}
	return a.Before(*b)
}

func (r *Repository) Search(ownerID uuid.UUID, query string) ([]task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	needle := strings.ToLower(query)
	var out []task.Task
	for _, t := range r.tasks {
		if t.OwnerID != ownerID {
			continue
		}
		if strings.Contains(strings.ToLower(t.Title), needle) || strings.Contains(strings.ToLower(t.Description), needle) {
			out = append(out, cloneTask(t))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Repository) AddTag(ownerID, taskID uuid.UUID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[taskID]
	if !ok || t.OwnerID != ownerID {
		return apperrors.NotFound()
	}
	if !containsTag(t.Tags, name) {
		t.Tags = append(t.Tags, name)
	}
	r.tasks[taskID] = t
	return nil
}

func (r *Repository) RemoveTag(ownerID, taskID uuid.UUID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[taskID]
	if !ok || t.OwnerID != ownerID {
		return apperrors.NotFound()
	}
	out := t.Tags[:0]
	for _, existing := range t.Tags {
		if existing != name {
			out = append(out, existing)
		}
	}
	t.Tags = out
	r.tasks[taskID] = t
	return nil
}

func (r *Repository) ClaimDueReminders(now time.Time, limit int) ([]task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for id, t := range r.tasks {
		if !t.Completed && !t.ReminderSent && t.RemindAt != nil && !t.RemindAt.After(now) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return r.tasks[ids[i]].RemindAt.Before(*r.tasks[ids[j]].RemindAt)
	})
	if len(ids) > limit {
		ids = ids[:limit]
	}
	claimed := make([]task.Task, 0, len(ids))
	for _, id := range ids {
		t := r.tasks[id]
		t.ReminderSent = true
		r.tasks[id] = t
		claimed = append(claimed, cloneTask(t))
	}
	return claimed, nil
}

var _ task.Repository = (*Repository)(nil)
