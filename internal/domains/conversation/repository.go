// Package conversation owns the conversation/message history the Agent
// reads and appends to on every turn.
package conversation

import (
	"time"

	"github.com/google/uuid"
)

// MessageRole distinguishes the human side of a conversation turn from the
// assistant's reply. Tool-call bookkeeping lives in the Agent layer, not in
// stored history: only the two roles a user would recognize are persisted.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Conversation groups an ordered sequence of Messages under one owner. The
// Title is nil until the agent derives one from the first exchange.
type Conversation struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Title     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is a single persisted conversation turn.
type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	Role           MessageRole
	Content        string
	CreatedAt      time.Time
}

// Repository persists conversations and their messages. Every method is
// scoped by owner where ambiguity would otherwise let one user read
// another's history.
type Repository interface {
	CreateConversation(ownerID uuid.UUID) (*Conversation, error)
	GetConversation(ownerID, id uuid.UUID) (*Conversation, error)
	ListConversations(ownerID uuid.UUID) ([]Conversation, error)
	SetTitle(ownerID, id uuid.UUID, title string) error

	AppendMessage(ownerID, conversationID uuid.UUID, role MessageRole, content string) (*Message, error)
	ListMessages(ownerID, conversationID uuid.UUID) ([]Message, error)
}
