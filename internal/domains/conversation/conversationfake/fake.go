// Package conversationfake is an in-memory conversation.Repository for
// tests, mirroring taskfake's hand-rolled-over-mocked approach.
package conversationfake

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xpanvictor/xarvis/internal/apperrors"
	"github.com/xpanvictor/xarvis/internal/domains/conversation"
)

type Repository struct {
	mu        sync.Mutex
	convos    map[uuid.UUID]conversation.Conversation
	messages  map[uuid.UUID][]conversation.Message
}

func New() *Repository {
	return &Repository{
		convos:   make(map[uuid.UUID]conversation.Conversation),
		messages: make(map[uuid.UUID][]conversation.Message),
	}
}

func (r *Repository) CreateConversation(ownerID uuid.UUID) (*conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	c := conversation.Conversation{ID: uuid.New(), OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}
	r.convos[c.ID] = c
	return &c, nil
}

func (r *Repository) GetConversation(ownerID, id uuid.UUID) (*conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convos[id]
	if !ok || c.OwnerID != ownerID {
		return nil, apperrors.NotFound()
	}
	return &c, nil
}

func (r *Repository) ListConversations(ownerID uuid.UUID) ([]conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []conversation.Conversation
	for _, c := range r.convos {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *Repository) SetTitle(ownerID, id uuid.UUID, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convos[id]
	if !ok || c.OwnerID != ownerID {
		return apperrors.NotFound()
	}
	c.Title = &title
	c.UpdatedAt = time.Now().UTC()
	r.convos[id] = c
	return nil
}

func (r *Repository) AppendMessage(ownerID, conversationID uuid.UUID, role conversation.MessageRole, content string) (*conversation.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convos[conversationID]
	if !ok || c.OwnerID != ownerID {
		return nil, apperrors.NotFound()
	}
	msg := conversation.Message{ID: uuid.New(), ConversationID: conversationID, Role: role, Content: content, CreatedAt: time.Now().UTC()}
	r.messages[conversationID] = append(r.messages[conversationID], msg)
	c.UpdatedAt = msg.CreatedAt
	r.convos[conversationID] = c
	return &msg, nil
}

func (r *Repository) ListMessages(ownerID, conversationID uuid.UUID) ([]conversation.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convos[conversationID]
	if !ok || c.OwnerID != ownerID {
		return nil, apperrors.NotFound()
	}
	out := append([]conversation.Message(nil), r.messages[conversationID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

var _ conversation.Repository = (*Repository)(nil)
