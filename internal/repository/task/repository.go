package task

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xpanvictor/xarvis/internal/apperrors"
	"github.com/xpanvictor/xarvis/internal/domains/task"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormTaskRepo struct {
	db *gorm.DB
}

func NewGormTaskRepo(db *gorm.DB) task.Repository {
	return &GormTaskRepo{db: db}
}

func (g *GormTaskRepo) Create(t *task.Task) error {
	entity := FromDomain(t)
	if err := g.db.Create(entity).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	*t = *entity.ToDomain()
	return nil
}

func (g *GormTaskRepo) getEntity(where *gorm.DB) (*TaskEntity, error) {
	var entity TaskEntity
	if err := where.Preload("Tags").First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound()
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &entity, nil
}

func (g *GormTaskRepo) GetByID(ownerID, id uuid.UUID) (*task.Task, error) {
	entity, err := g.getEntity(g.db.Where("id = ? AND owner_id = ?", id, ownerID))
	if err != nil {
		return nil, err
	}
	return entity.ToDomain(), nil
}

func (g *GormTaskRepo) GetByIDAnyOwner(id uuid.UUID) (*task.Task, error) {
	entity, err := g.getEntity(g.db.Where("id = ?", id))
	if err != nil {
		return nil, err
	}
	return entity.ToDomain(), nil
}

func (g *GormTaskRepo) Update(t *task.Task) error {
	entity := FromDomain(t)
	res := g.db.Model(&TaskEntity{}).Where("id = ? AND owner_id = ?", t.ID, t.OwnerID).Updates(map[string]interface{}{
		"title":         entity.Title,
		"description":   entity.Description,
		"completed":     entity.Completed,
		"priority":      entity.Priority,
		"due_at":        entity.DueAt,
		"remind_at":     entity.RemindAt,
		"reminder_sent": entity.ReminderSent,
		"recurrence":    entity.Recurrence,
		"updated_at":    entity.UpdatedAt,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound()
	}
	return nil
}

func (g *GormTaskRepo) Delete(ownerID, id uuid.UUID) error {
	res := g.db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&TaskEntity{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound()
	}
	return nil
}

func (g *GormTaskRepo) List(ownerID uuid.UUID, f task.TaskFilter) ([]task.Task, error) {
	query := g.db.Model(&TaskEntity{}).Preload("Tags").Where("owner_id = ?", ownerID)
	query = g.applyFilter(query, f)
	query = g.applyOrdering(query, f)

	var entities []TaskEntity
	if err := query.Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return toDomainSlice(entities), nil
}

func (g *GormTaskRepo) applyFilter(query *gorm.DB, f task.TaskFilter) *gorm.DB {
	if f.Priority != nil {
		query = query.Where("priority = ?", int(*f.Priority))
	}
	if f.Completed != nil {
		query = query.Where("completed = ?", *f.Completed)
	}
	if f.Overdue {
		query = query.Where("completed = ? AND due_at IS NOT NULL AND due_at < ?", false, time.Now().UTC())
	}
	if f.Tag != "" {
		query = query.Joins("JOIN task_tags ON task_tags.task_entity_id = tasks.id").
			Joins("JOIN tags ON tags.id = task_tags.tag_entity_id").
			Where("tags.name = ?", f.Tag)
	}
	return query
}

func (g *GormTaskRepo) applyOrdering(query *gorm.DB, f task.TaskFilter) *gorm.DB {
	col := "created_at"
	switch f.SortKey {
	case task.SortUpdatedAt:
		col = "updated_at"
	case task.SortDueAt:
		col = "due_at"
	case task.SortPriority:
		col = "priority"
	case task.SortTitle:
		col = "title"
	}
	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}
	if col == "due_at" {
		// Tasks without a due date sort last on an ascending sort and first
		// on a descending one, so "no due date" never sits among the most
		// urgent.
		if f.SortDesc {
			return query.Order("due_at IS NULL DESC, due_at DESC")
		}
		return query.Order("due_at IS NULL, due_at ASC")
	}
	return query.Order(fmt.Sprintf("%s %s", col, dir))
}

func (g *GormTaskRepo) Search(ownerID uuid.UUID, query string) ([]task.Task, error) {
	like := "%" + query + "%"
	var entities []TaskEntity
	if err := g.db.Preload("Tags").Where("owner_id = ? AND (title LIKE ? OR description LIKE ?)", ownerID, like, like).
		Order("created_at DESC").Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("failed to search tasks: %w", err)
	}
	return toDomainSlice(entities), nil
}

func (g *GormTaskRepo) AddTag(ownerID, taskID uuid.UUID, name string) error {
	var entity TaskEntity
	if err := g.db.Where("id = ? AND owner_id = ?", taskID, ownerID).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound()
		}
		return fmt.Errorf("failed to load task: %w", err)
	}

	var tag TagEntity
	err := g.db.Where("owner_id = ? AND name = ?", ownerID, name).First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		tag = TagEntity{ID: uuid.New(), OwnerID: ownerID, Name: name}
		if err := g.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error; err != nil {
			return fmt.Errorf("failed to create tag: %w", err)
		}
		if err := g.db.Where("owner_id = ? AND name = ?", ownerID, name).First(&tag).Error; err != nil {
			return fmt.Errorf("failed to load tag after create: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to load tag: %w", err)
	}

	if err := g.db.Model(&entity).Association("Tags").Append(&tag); err != nil {
		return fmt.Errorf("failed to associate tag: %w", err)
	}
	return nil
}

func (g *GormTaskRepo) RemoveTag(ownerID, taskID uuid.UUID, name string) error {
	var entity TaskEntity
	if err := g.db.Where("id = ? AND owner_id = ?", taskID, ownerID).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound()
		}
		return fmt.Errorf("failed to load task: %w", err)
	}
	var tag TagEntity
	if err := g.db.Where("owner_id = ? AND name = ?", ownerID, name).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // removing a tag that isn't set is a no-op
		}
		return fmt.Errorf("failed to load tag: %w", err)
	}
	if err := g.db.Model(&entity).Association("Tags").Delete(&tag); err != nil {
		return fmt.Errorf("failed to remove tag association: %w", err)
	}
	return nil
}

// ClaimDueReminders selects rows due for a reminder, locking them against
// concurrent schedulers with FOR UPDATE SKIP LOCKED, flips reminderSent
// within the same transaction, and returns the claimed rows. The flip
// happens before the caller publishes, satisfying at-most-once delivery by
// construction: a crash between commit and publish merely loses a
// notification, never duplicates one.
func (g *GormTaskRepo) ClaimDueReminders(now time.Time, limit int) ([]task.Task, error) {
	var claimed []TaskEntity
	err := g.db.Transaction(func(tx *gorm.DB) error {
		var entities []TaskEntity
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("completed = ? AND reminder_sent = ? AND remind_at IS NOT NULL AND remind_at <= ?", false, false, now).
			Order("remind_at ASC").
			Limit(limit).
			Find(&entities).Error
		if err != nil {
			return err
		}
		if len(entities) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, len(entities))
		for i, e := range entities {
			ids[i] = e.ID
		}
		if err := tx.Model(&TaskEntity{}).Where("id IN ?", ids).Update("reminder_sent", true).Error; err != nil {
			return err
		}
		claimed, err = loadWithTags(tx, ids)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to claim due reminders: %w", err)
	}
	return toDomainSlice(claimed), nil
}

func loadWithTags(tx *gorm.DB, ids []uuid.UUID) ([]TaskEntity, error) {
	var entities []TaskEntity
	if err := tx.Preload("Tags").Where("id IN ?", ids).Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

func toDomainSlice(entities []TaskEntity) []task.Task {
	tasks := make([]task.Task, len(entities))
	for i := range entities {
		tasks[i] = *entities[i].ToDomain()
	}
	return tasks
}
