package task

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority is the urgency tier of a task. Order matters: low < medium < high,
// collated numerically wherever priority is used as a sort key.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, true
	case "medium", "":
		return PriorityMedium, true
	case "high":
		return PriorityHigh, true
	default:
		return PriorityMedium, false
	}
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	default:
		return "medium"
	}
}

// Recurrence governs whether completing a task spawns a successor.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

func (r Recurrence) IsValid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, "":
		return true
	default:
		return false
	}
}

const (
	MaxTitleLen       = 500
	MaxDescriptionLen = 2000
)

// Task is the unit of work owned exclusively by one User.
type Task struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	Title        string
	Description  string
	Completed    bool
	Priority     Priority
	DueAt        *time.Time
	RemindAt     *time.Time
	ReminderSent bool
	Recurrence   Recurrence
	ParentTaskID *uuid.UUID
	Tags         []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateTaskRequest is the validated input to CreateTask.
type CreateTaskRequest struct {
	Title       string
	Description string
	Priority    Priority
	DueAt       *time.Time
	Recurrence  Recurrence
	Tags        []string
}

// UpdateTaskRequest carries partial overrides; nil fields are left untouched.
// RemindAt/DueAt use a double-pointer-free convention: Clear flags distinguish
// "leave as is" from "set to nil", since *time.Time alone cannot.
type UpdateTaskRequest struct {
	Title         *string
	Description   *string
	Priority      *Priority
	DueAt         *time.Time
	ClearDueAt    bool
	RemindAt      *time.Time
	ClearRemindAt bool
	Recurrence    *Recurrence
}

// TaskFilter is the ANDed predicate set accepted by ListTasks.
type TaskFilter struct {
	Priority  *Priority
	Tag       string
	Completed *bool
	Overdue   bool
	SortKey   SortKey
	SortDesc  bool
}

type SortKey string

const (
	SortCreatedAt SortKey = "createdAt"
	SortUpdatedAt SortKey = "updatedAt"
	SortDueAt     SortKey = "dueAt"
	SortPriority  SortKey = "priority"
	SortTitle     SortKey = "title"
)

// Repository is the Store-backed persistence boundary for tasks and their
// tag associations. Every method is already scoped to an owner where the
// operation requires it. Callers are TaskCore's service, RecurrenceWorker
// and ReminderScheduler, the last two in-process and without a principal.
type Repository interface {
	Create(t *Task) error
	GetByID(ownerID, id uuid.UUID) (*Task, error)
	// GetByIDAnyOwner is used only by the recurrence worker, which reads
	// the source task of a completion event without an owner scope in
	// order to copy it into a successor.
	GetByIDAnyOwner(id uuid.UUID) (*Task, error)
	Update(t *Task) error
	Delete(ownerID, id uuid.UUID) error
	List(ownerID uuid.UUID, f TaskFilter) ([]Task, error)
	Search(ownerID uuid.UUID, query string) ([]Task, error)

	AddTag(ownerID, taskID uuid.UUID, name string) error
	RemoveTag(ownerID, taskID uuid.UUID, name string) error

	// ClaimDueReminders claims up to limit rows matching the reminder-pending
	// predicate and flips reminderSent atomically, returning the claimed
	// rows. Implementations must use a lock-or-skip primitive so that
	// concurrent schedulers never claim the same row twice.
	ClaimDueReminders(now time.Time, limit int) ([]Task, error)
}
