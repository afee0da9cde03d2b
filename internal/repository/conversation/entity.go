package conversation

import (
	"time"

	"github.com/google/uuid"
	"github.com/xpanvictor/xarvis/internal/domains/conversation"
	"gorm.io/gorm"
)

// ConversationEntity is the GORM row shape for a conversation.
type ConversationEntity struct {
	ID        uuid.UUID `gorm:"primaryKey;type:char(36);not null"`
	OwnerID   uuid.UUID `gorm:"column:owner_id;type:char(36);not null;index"`
	Title     *string   `gorm:"column:title;type:varchar(200)"`
	CreatedAt time.Time `gorm:"autoCreateTime(3)"`
	UpdatedAt time.Time `gorm:"autoUpdateTime(3)"`
}

func (ConversationEntity) TableName() string { return "conversations" }

func (c *ConversationEntity) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *ConversationEntity) ToDomain() *conversation.Conversation {
	return &conversation.Conversation{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// MessageEntity is the GORM row shape for one conversation turn.
type MessageEntity struct {
	ID             uuid.UUID `gorm:"primaryKey;type:char(36);not null"`
	ConversationID uuid.UUID `gorm:"column:conversation_id;type:char(36);not null;index"`
	Role           string    `gorm:"column:role;type:varchar(20);not null"`
	Content        string    `gorm:"column:content;type:text;not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime(3);index"`
}

func (MessageEntity) TableName() string { return "messages" }

func (m *MessageEntity) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *MessageEntity) ToDomain() *conversation.Message {
	return &conversation.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           conversation.MessageRole(m.Role),
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}
