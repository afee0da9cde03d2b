package conversation

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/xpanvictor/xarvis/internal/apperrors"
	"github.com/xpanvictor/xarvis/internal/domains/conversation"
	"gorm.io/gorm"
)

type GormRepo struct {
	db *gorm.DB
}

func NewGormRepo(db *gorm.DB) conversation.Repository {
	return &GormRepo{db: db}
}

func (g *GormRepo) CreateConversation(ownerID uuid.UUID) (*conversation.Conversation, error) {
	entity := &ConversationEntity{ID: uuid.New(), OwnerID: ownerID}
	if err := g.db.Create(entity).Error; err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return entity.ToDomain(), nil
}

func (g *GormRepo) GetConversation(ownerID, id uuid.UUID) (*conversation.Conversation, error) {
	var entity ConversationEntity
	err := g.db.Where("id = ? AND owner_id = ?", id, ownerID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound()
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return entity.ToDomain(), nil
}

func (g *GormRepo) ListConversations(ownerID uuid.UUID) ([]conversation.Conversation, error) {
	var entities []ConversationEntity
	if err := g.db.Where("owner_id = ?", ownerID).Order("updated_at DESC").Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	out := make([]conversation.Conversation, len(entities))
	for i := range entities {
		out[i] = *entities[i].ToDomain()
	}
	return out, nil
}

func (g *GormRepo) SetTitle(ownerID, id uuid.UUID, title string) error {
	res := g.db.Model(&ConversationEntity{}).Where("id = ? AND owner_id = ?", id, ownerID).Update("title", title)
	if res.Error != nil {
		return fmt.Errorf("failed to set conversation title: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound()
	}
	return nil
}

func (g *GormRepo) AppendMessage(ownerID, conversationID uuid.UUID, role conversation.MessageRole, content string) (*conversation.Message, error) {
	// Confirm the conversation belongs to this owner before appending.
	if _, err := g.GetConversation(ownerID, conversationID); err != nil {
		return nil, err
	}
	entity := &MessageEntity{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Role:           string(role),
		Content:        content,
	}
	if err := g.db.Create(entity).Error; err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	g.db.Model(&ConversationEntity{}).Where("id = ?", conversationID).Update("updated_at", gorm.Expr("NOW()"))
	return entity.ToDomain(), nil
}

func (g *GormRepo) ListMessages(ownerID, conversationID uuid.UUID) ([]conversation.Message, error) {
	if _, err := g.GetConversation(ownerID, conversationID); err != nil {
		return nil, err
	}
	var entities []MessageEntity
	if err := g.db.Where("conversation_id = ?", conversationID).Order("created_at ASC").Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	out := make([]conversation.Message, len(entities))
	for i := range entities {
		out[i] = *entities[i].ToDomain()
	}
	return out, nil
}
