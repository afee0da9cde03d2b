package database

import (
	convoRepo "github.com/xpanvictor/xarvis/internal/repository/conversation"
	eventbusRepo "github.com/xpanvictor/xarvis/internal/repository/eventbus"
	taskRepo "github.com/xpanvictor/xarvis/internal/repository/task"
	userRepo "github.com/xpanvictor/xarvis/internal/repository/user"
	"gorm.io/gorm"
)

// MigrateDB brings the schema up to date for every entity this service
// owns. Order matters only insofar as GORM needs a referenced table to
// exist before it can add a foreign key to it; AutoMigrate handles that
// itself for the join tables it derives from struct tags (task_tags).
func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&userRepo.UserEntity{},
		&taskRepo.TagEntity{},
		&taskRepo.TaskEntity{},
		&convoRepo.ConversationEntity{},
		&convoRepo.MessageEntity{},
		&eventbusRepo.ProcessedEventEntity{},
	)
}
