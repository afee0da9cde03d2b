package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xpanvictor/xarvis/internal/domains/agent"
	"github.com/xpanvictor/xarvis/internal/domains/conversation"
	"github.com/xpanvictor/xarvis/internal/domains/user"
	"github.com/xpanvictor/xarvis/pkg/Logger"
)

// ConversationHandler exposes the Agent's turn-taking loop and the
// conversation history it reads and appends to.
type ConversationHandler struct {
	agentSvc agent.Service
	convos   conversation.Repository
	logger   *Logger.Logger
}

func NewConvoHandler(agentSvc agent.Service, convos conversation.Repository, logger *Logger.Logger) *ConversationHandler {
	return &ConversationHandler{agentSvc: agentSvc, convos: convos, logger: logger}
}

func messageResponseFrom(m *conversation.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID.String(),
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

// PostMessage hands one user utterance to the Agent and returns its reply,
// creating a new conversation when conversationId is omitted.
func (h *ConversationHandler) PostMessage(c *gin.Context) {
	info, ok := ExtractUserInfo(c)
	if !ok {
		return
	}
	var body struct {
		ConversationID *string `json:"conversationId"`
		Message        string  `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request data", Details: err.Error()})
		return
	}

	var convoID *uuid.UUID
	if body.ConversationID != nil && *body.ConversationID != "" {
		id, err := uuid.Parse(*body.ConversationID)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid conversation id"})
			return
		}
		convoID = &id
	}

	resolvedID, reply, err := h.agentSvc.Respond(c.Request.Context(), info.UserID, convoID, body.Message)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, ConversationTurnResponse{
		ConversationID: resolvedID.String(),
		Message:        messageResponseFrom(reply),
	})
}

// ListConversations returns the caller's conversations, most recently
// updated first.
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	info, ok := ExtractUserInfo(c)
	if !ok {
		return
	}
	convos, err := h.convos.ListConversations(info.UserID)
	if err != nil {
		writeErr(c, err)
		return
	}
	out := make([]ConversationSummaryResponse, len(convos))
	for i, cv := range convos {
		out[i] = ConversationSummaryResponse{
			ID:        cv.ID.String(),
			Title:     cv.Title,
			CreatedAt: cv.CreatedAt.Format(time.RFC3339),
			UpdatedAt: cv.UpdatedAt.Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, ListConversationsResponse{Conversations: out})
}

// GetConversationHistory returns every message in one conversation, in
// chronological order.
func (h *ConversationHandler) GetConversationHistory(c *gin.Context) {
	info, ok := ExtractUserInfo(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid conversation id"})
		return
	}
	messages, err := h.convos.ListMessages(info.UserID, id)
	if err != nil {
		writeErr(c, err)
		return
	}
	out := make([]MessageResponse, len(messages))
	for i := range messages {
		out[i] = messageResponseFrom(&messages[i])
	}
	c.JSON(http.StatusOK, ConversationHistoryResponse{ConversationID: id.String(), Messages: out})
}

// RegisterConversationRoutes wires the conversation surface behind
// user-role authentication.
func (h *ConversationHandler) RegisterConversationRoutes(r *gin.RouterGroup, userService user.UserService) {
	convo := r.Group("/conversation")
	convo.Use(AuthMiddleware(userService, h.logger), RequireRole(user.RoleUser))
	{
		convo.POST("/message", h.PostMessage)
		convo.GET("", h.ListConversations)
		convo.GET("/:id", h.GetConversationHistory)
	}
}
