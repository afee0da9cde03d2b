// Package eventbus holds the GORM-backed processed-events ledger. It lives
// under internal/repository so it stays alongside the other storage
// adapters, while internal/eventbus/dedup.go owns the interface consumers
// depend on.
package eventbus

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProcessedEventEntity records that a given consumer has already handled a
// given event ID, keyed on the pair so the same event can be independently
// processed by multiple consumers (RecurrenceWorker and NotificationWorker
// never share a row).
type ProcessedEventEntity struct {
	ConsumerName string    `gorm:"column:consumer_name;type:varchar(100);primaryKey"`
	EventID      uuid.UUID `gorm:"column:event_id;type:char(36);primaryKey"`
	ProcessedAt  time.Time `gorm:"autoCreateTime(3)"`
}

func (ProcessedEventEntity) TableName() string { return "processed_events" }

type GormDedup struct {
	db *gorm.DB
}

func NewGormDedup(db *gorm.DB) *GormDedup {
	return &GormDedup{db: db}
}

func (g *GormDedup) Seen(consumerName string, eventID uuid.UUID) (bool, error) {
	var row ProcessedEventEntity
	err := g.db.Where("consumer_name = ? AND event_id = ?", consumerName, eventID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (g *GormDedup) MarkSeen(consumerName string, eventID uuid.UUID) error {
	row := ProcessedEventEntity{ConsumerName: consumerName, EventID: eventID}
	return g.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}
