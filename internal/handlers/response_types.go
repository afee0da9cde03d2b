package handlers

import (
	"github.com/xpanvictor/xarvis/internal/domains/user"
)

// Response wrapper types for Swagger documentation

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Message string `json:"message" example:"Operation completed successfully"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"Something went wrong"`
	Details string `json:"details,omitempty" example:"Validation error details"`
}

// RegisterResponse represents the response for user registration
type RegisterResponse struct {
	Message string            `json:"message" example:"User registered successfully"`
	User    user.UserResponse `json:"user"`
}

// LoginResponse represents the response for user login
type LoginResponse struct {
	Message string            `json:"message" example:"Login successful"`
	User    user.UserResponse `json:"user"`
	Tokens  user.AuthTokens   `json:"tokens"`
}

// RefreshTokenResponse represents the response for token refresh
type RefreshTokenResponse struct {
	Message string          `json:"message" example:"Token refreshed successfully"`
	Tokens  user.AuthTokens `json:"tokens"`
}

// ProfileResponse represents the response for getting user profile
type ProfileResponse struct {
	User user.UserResponse `json:"user"`
}

// UpdateProfileResponse represents the response for updating user profile
type UpdateProfileResponse struct {
	Message string            `json:"message" example:"Profile updated successfully"`
	User    user.UserResponse `json:"user"`
}

// DeleteAccountResponse represents the response for account deletion
type DeleteAccountResponse struct {
	Message string `json:"message" example:"Account deleted successfully"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required" example:"jwt-refresh-token-here"`
}

// ConversationSummaryResponse is one row of a conversation listing: title and
// timestamps only, no message bodies.
type ConversationSummaryResponse struct {
	ID        string  `json:"id"`
	Title     *string `json:"title,omitempty"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// ListConversationsResponse represents the response for listing a user's
// conversations.
type ListConversationsResponse struct {
	Conversations []ConversationSummaryResponse `json:"conversations"`
}

// MessageResponse is a single persisted conversation turn as seen by a
// client: never includes the tool-call bookkeeping the Agent uses internally.
type MessageResponse struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

// ConversationTurnResponse is returned after a user message is processed by
// the Agent: the conversation it landed in and the assistant's reply.
type ConversationTurnResponse struct {
	ConversationID string          `json:"conversationId"`
	Message        MessageResponse `json:"message"`
}

// ConversationHistoryResponse represents the full message history of one
// conversation.
type ConversationHistoryResponse struct {
	ConversationID string            `json:"conversationId"`
	Messages       []MessageResponse `json:"messages"`
}
