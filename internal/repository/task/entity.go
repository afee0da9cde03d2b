package task

import (
	"time"

	"github.com/google/uuid"
	"github.com/xpanvictor/xarvis/internal/domains/task"
	"gorm.io/gorm"
)

// TagEntity is a per-owner label. Uniqueness is enforced on (owner_id, name)
// where name is already lower-cased by the domain layer before it reaches
// here, so case-folding never needs to happen in SQL.
type TagEntity struct {
	ID        uuid.UUID `gorm:"primaryKey;type:char(36);not null"`
	OwnerID   uuid.UUID `gorm:"column:owner_id;type:char(36);not null;uniqueIndex:idx_owner_tag_name"`
	Name      string    `gorm:"column:name;type:varchar(100);not null;uniqueIndex:idx_owner_tag_name"`
	CreatedAt time.Time `gorm:"autoCreateTime(3)"`
}

func (TagEntity) TableName() string { return "tags" }

func (t *TagEntity) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TaskEntity is the GORM row shape for a task.
type TaskEntity struct {
	ID           uuid.UUID       `gorm:"primaryKey;type:char(36);not null"`
	OwnerID      uuid.UUID       `gorm:"column:owner_id;type:char(36);not null;index"`
	Title        string          `gorm:"column:title;type:varchar(500);not null"`
	Description  string          `gorm:"column:description;type:text"`
	Completed    bool            `gorm:"column:completed;not null;default:false;index"`
	Priority     int             `gorm:"column:priority;type:smallint;not null;default:1;index"`
	DueAt        *time.Time      `gorm:"column:due_at;index"`
	RemindAt     *time.Time      `gorm:"column:remind_at;index"`
	ReminderSent bool            `gorm:"column:reminder_sent;not null;default:false;index"`
	Recurrence   string          `gorm:"column:recurrence;type:varchar(20);not null;default:none"`
	ParentTaskID *uuid.UUID      `gorm:"column:parent_task_id;type:char(36);index"`
	Tags         []TagEntity     `gorm:"many2many:task_tags;"`
	CreatedAt    time.Time       `gorm:"autoCreateTime(3)"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime(3)"`
	DeletedAt    *gorm.DeletedAt `gorm:"index"`
}

func (TaskEntity) TableName() string { return "tasks" }

func (t *TaskEntity) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *TaskEntity) ToDomain() *task.Task {
	tags := make([]string, 0, len(t.Tags))
	for _, tg := range t.Tags {
		tags = append(tags, tg.Name)
	}
	var parentID *uuid.UUID
	if t.ParentTaskID != nil {
		id := *t.ParentTaskID
		parentID = &id
	}
	return &task.Task{
		ID:           t.ID,
		OwnerID:      t.OwnerID,
		Title:        t.Title,
		Description:  t.Description,
		Completed:    t.Completed,
		Priority:     task.Priority(t.Priority),
		DueAt:        t.DueAt,
		RemindAt:     t.RemindAt,
		ReminderSent: t.ReminderSent,
		Recurrence:   task.Recurrence(t.Recurrence),
		ParentTaskID: parentID,
		Tags:         tags,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// FromDomain converts a domain Task to its row shape. Tags are intentionally
// left empty; callers manage the tag association separately via the
// repository's AddTag/RemoveTag, which operate on the join table directly.
func FromDomain(dt *task.Task) *TaskEntity {
	return &TaskEntity{
		ID:           dt.ID,
		OwnerID:      dt.OwnerID,
		Title:        dt.Title,
		Description:  dt.Description,
		Completed:    dt.Completed,
		Priority:     int(dt.Priority),
		DueAt:        dt.DueAt,
		RemindAt:     dt.RemindAt,
		ReminderSent: dt.ReminderSent,
		Recurrence:   string(dt.Recurrence),
		ParentTaskID: dt.ParentTaskID,
		CreatedAt:    dt.CreatedAt,
		UpdatedAt:    dt.UpdatedAt,
	}
}
