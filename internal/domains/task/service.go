package task

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xpanvictor/xarvis/internal/apperrors"
	"github.com/xpanvictor/xarvis/internal/eventbus"
	"github.com/xpanvictor/xarvis/pkg/Logger"
)

// TaskCompletedPayload is published whenever a task transitions into the
// completed state. RecurrenceWorker is the only subscriber today.
type TaskCompletedPayload struct {
	TaskID      uuid.UUID  `json:"task_id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Recurrence  Recurrence `json:"recurrence"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	RemindAt    *time.Time `json:"remind_at,omitempty"`
	OffsetSecs  *int64     `json:"offset_seconds,omitempty"`
	CompletedAt time.Time  `json:"completed_at"`
}

// TaskDuePayload is published by ReminderScheduler once it has claimed and
// flipped reminderSent on a row; NotificationWorker is the subscriber.
type TaskDuePayload struct {
	TaskID  uuid.UUID  `json:"task_id"`
	OwnerID uuid.UUID  `json:"owner_id"`
	Title   string     `json:"title"`
	DueAt   *time.Time `json:"due_at,omitempty"`
}

// Service implements TaskCore's task operations. Every method is scoped to
// the owner passed in, which handlers derive from the authenticated
// principal, never from the request body.
type Service interface {
	CreateTask(ctx context.Context, ownerID uuid.UUID, req CreateTaskRequest) (*Task, error)
	GetTask(ctx context.Context, ownerID, id uuid.UUID) (*Task, error)
	ListTasks(ctx context.Context, ownerID uuid.UUID, f TaskFilter) ([]Task, error)
	SearchTasks(ctx context.Context, ownerID uuid.UUID, query string) ([]Task, error)
	UpdateTask(ctx context.Context, ownerID, id uuid.UUID, req UpdateTaskRequest) (*Task, error)
	DeleteTask(ctx context.Context, ownerID, id uuid.UUID) error
	ToggleComplete(ctx context.Context, ownerID, id uuid.UUID) (*Task, error)
	AddTag(ctx context.Context, ownerID, id uuid.UUID, name string) (*Task, error)
	RemoveTag(ctx context.Context, ownerID, id uuid.UUID, name string) (*Task, error)
	SetReminder(ctx context.Context, ownerID, id uuid.UUID, remindAt *time.Time) (*Task, error)
	SetRecurrence(ctx context.Context, ownerID, id uuid.UUID, r Recurrence) (*Task, error)

	// CreateSuccessor creates a task linked to parentTaskID as its successor.
	// RecurrenceWorker does not call it; the worker writes successors through
	// Repository directly.
	CreateSuccessor(ctx context.Context, ownerID uuid.UUID, req CreateTaskRequest, parentTaskID uuid.UUID) (*Task, error)
}

type service struct {
	repo   Repository
	bus    eventbus.Bus
	logger *Logger.Logger
}

func NewService(repo Repository, bus eventbus.Bus, logger *Logger.Logger) Service {
	return &service{repo: repo, bus: bus, logger: logger}
}

func validateTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", apperrors.Validation("title must not be empty")
	}
	if len(t) > MaxTitleLen {
		return "", apperrors.Validation("title exceeds maximum length")
	}
	return t, nil
}

func validateDescription(d string) (string, error) {
	if len(d) > MaxDescriptionLen {
		return "", apperrors.Validation("description exceeds maximum length")
	}
	return d, nil
}

func (s *service) CreateTask(ctx context.Context, ownerID uuid.UUID, req CreateTaskRequest) (*Task, error) {
	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}
	desc, err := validateDescription(req.Description)
	if err != nil {
		return nil, err
	}
	rec := req.Recurrence
	if rec == "" {
		rec = RecurrenceNone
	}
	if !rec.IsValid() {
		return nil, apperrors.Validation("unknown recurrence value")
	}
	now := time.Now().UTC()
	t := &Task{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Description: desc,
		Priority:    req.Priority,
		DueAt:       req.DueAt,
		Recurrence:  rec,
		Tags:        normalizeTags(req.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	tags := t.Tags
	if err := s.repo.Create(t); err != nil {
		return nil, err
	}
	if err := s.attachTags(ownerID, t, tags); err != nil {
		return nil, err
	}
	s.logger.Infow("task created", "task_id", t.ID, "owner_id", ownerID)
	return t, nil
}

// attachTags upserts each of tags onto the task via the repository's
// AddTag, which owns the case-folded lookup-or-create join logic. Create
// itself never persists the Tags field (and may replace t with a tagless
// copy), so callers pass the tag list they held before calling Create.
func (s *service) attachTags(ownerID uuid.UUID, t *Task, tags []string) error {
	for _, name := range tags {
		if err := s.repo.AddTag(ownerID, t.ID, name); err != nil {
			return err
		}
	}
	if len(tags) > 0 {
		fresh, err := s.repo.GetByID(ownerID, t.ID)
		if err != nil {
			return err
		}
		*t = *fresh
	}
	return nil
}

func (s *service) GetTask(ctx context.Context, ownerID, id uuid.UUID) (*Task, error) {
	return s.repo.GetByID(ownerID, id)
}

func (s *service) ListTasks(ctx context.Context, ownerID uuid.UUID, f TaskFilter) ([]Task, error) {
	return s.repo.List(ownerID, f)
}

func (s *service) SearchTasks(ctx context.Context, ownerID uuid.UUID, query string) ([]Task, error) {
	return s.repo.Search(ownerID, query)
}

func (s *service) UpdateTask(ctx context.Context, ownerID, id uuid.UUID, req UpdateTaskRequest) (*Task, error) {
	t, err := s.repo.GetByID(ownerID, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		title, err := validateTitle(*req.Title)
		if err != nil {
			return nil, err
		}
		t.Title = title
	}
	if req.Description != nil {
		desc, err := validateDescription(*req.Description)
		if err != nil {
			return nil, err
		}
		t.Description = desc
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.ClearDueAt {
		t.DueAt = nil
	} else if req.DueAt != nil {
		t.DueAt = req.DueAt
	}
	if req.ClearRemindAt {
		t.RemindAt = nil
		t.ReminderSent = false
	} else if req.RemindAt != nil {
		if !req.RemindAt.After(time.Now().UTC()) {
			return nil, apperrors.Validation("reminder must be in the future")
		}
		t.RemindAt = req.RemindAt
		t.ReminderSent = false
	}
	if req.Recurrence != nil {
		if !req.Recurrence.IsValid() {
			return nil, apperrors.Validation("unknown recurrence value")
		}
		t.Recurrence = *req.Recurrence
	}
	t.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) DeleteTask(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.Delete(ownerID, id)
}

func (s *service) ToggleComplete(ctx context.Context, ownerID, id uuid.UUID) (*Task, error) {
	t, err := s.repo.GetByID(ownerID, id)
	if err != nil {
		return nil, err
	}
	wasCompleted := t.Completed
	t.Completed = !t.Completed
	t.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(t); err != nil {
		return nil, err
	}
	if !wasCompleted && t.Completed {
		if err := s.publishCompleted(ctx, t); err != nil {
			s.logger.Errorw("failed to publish task.completed", "task_id", t.ID, "error", err)
		}
	}
	return t, nil
}

func (s *service) publishCompleted(ctx context.Context, t *Task) error {
	var offset *int64
	if t.DueAt != nil && t.RemindAt != nil {
		d := int64(t.DueAt.Sub(*t.RemindAt).Seconds())
		offset = &d
	}
	payload := TaskCompletedPayload{
		TaskID:      t.ID,
		OwnerID:     t.OwnerID,
		Recurrence:  t.Recurrence,
		DueAt:       t.DueAt,
		RemindAt:    t.RemindAt,
		OffsetSecs:  offset,
		CompletedAt: t.UpdatedAt,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.bus.Publish(ctx, eventbus.TopicTaskCompleted, data)
}

func (s *service) AddTag(ctx context.Context, ownerID, id uuid.UUID, name string) (*Task, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || len(name) > 100 {
		return nil, apperrors.Validation("tag name must be 1-100 characters")
	}
	if err := s.repo.AddTag(ownerID, id, name); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ownerID, id)
}

func (s *service) RemoveTag(ctx context.Context, ownerID, id uuid.UUID, name string) (*Task, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if err := s.repo.RemoveTag(ownerID, id, name); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ownerID, id)
}

func (s *service) SetReminder(ctx context.Context, ownerID, id uuid.UUID, remindAt *time.Time) (*Task, error) {
	t, err := s.repo.GetByID(ownerID, id)
	if err != nil {
		return nil, err
	}
	if remindAt != nil && !remindAt.After(time.Now().UTC()) {
		return nil, apperrors.Validation("reminder must be in the future")
	}
	if remindAt != nil && t.DueAt != nil && remindAt.After(*t.DueAt) {
		return nil, apperrors.Validation("reminder must not be after due date")
	}
	t.RemindAt = remindAt
	t.ReminderSent = false
	t.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) SetRecurrence(ctx context.Context, ownerID, id uuid.UUID, r Recurrence) (*Task, error) {
	if !r.IsValid() {
		return nil, apperrors.Validation("unknown recurrence value")
	}
	t, err := s.repo.GetByID(ownerID, id)
	if err != nil {
		return nil, err
	}
	t.Recurrence = r
	t.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) CreateSuccessor(ctx context.Context, ownerID uuid.UUID, req CreateTaskRequest, parentTaskID uuid.UUID) (*Task, error) {
	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	t := &Task{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Title:        title,
		Description:  req.Description,
		Priority:     req.Priority,
		DueAt:        req.DueAt,
		Recurrence:   req.Recurrence,
		ParentTaskID: &parentTaskID,
		Tags:         normalizeTags(req.Tags),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	tags := t.Tags
	if err := s.repo.Create(t); err != nil {
		return nil, err
	}
	if err := s.attachTags(ownerID, t, tags); err != nil {
		return nil, err
	}
	return t, nil
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
