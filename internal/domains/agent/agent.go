package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xpanvictor/xarvis/internal/constants/prompts"
	"github.com/xpanvictor/xarvis/internal/domains/conversation"
	"github.com/xpanvictor/xarvis/pkg/Logger"
	"github.com/xpanvictor/xarvis/pkg/assistant"
	toolsystem "github.com/xpanvictor/xarvis/pkg/tool_system"
)

const DefaultMaxToolIterations = 8

// Config tunes the turn-taking loop's bounds.
type Config struct {
	MaxToolIterations int
	TurnDeadline      time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxToolIterations <= 0 {
		c.MaxToolIterations = DefaultMaxToolIterations
	}
	if c.TurnDeadline <= 0 {
		c.TurnDeadline = 30 * time.Second
	}
	return c
}

// Service runs one user turn end to end: Receive, Plan, Dispatch, Loop,
// Commit. The user message is stored before planning starts and the
// assistant reply after the loop ends, as two separate writes; a turn that
// fails in between leaves the user message stored without a reply.
type Service interface {
	Respond(ctx context.Context, ownerID uuid.UUID, conversationID *uuid.UUID, userMessage string) (uuid.UUID, *conversation.Message, error)
}

type service struct {
	convos   conversation.Repository
	registry toolsystem.Registry
	exec     toolsystem.Executor
	llm      assistant.Client
	cfg      Config
	logger   *Logger.Logger
}

func NewService(convos conversation.Repository, registry toolsystem.Registry, llm assistant.Client, cfg Config, logger *Logger.Logger) Service {
	return &service{
		convos:   convos,
		registry: registry,
		exec:     toolsystem.NewExecutor(),
		llm:      llm,
		cfg:      cfg.withDefaults(),
		logger:   logger,
	}
}

func (s *service) Respond(ctx context.Context, ownerID uuid.UUID, conversationID *uuid.UUID, userMessage string) (uuid.UUID, *conversation.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.TurnDeadline)
	defer cancel()

	convoID, isFirstTurn, err := s.resolveConversation(ownerID, conversationID)
	if err != nil {
		return uuid.Nil, nil, err
	}

	if _, err := s.convos.AppendMessage(ownerID, convoID, conversation.RoleUser, userMessage); err != nil {
		return uuid.Nil, nil, err
	}

	s.exec.SetUserContext(&toolsystem.UserContext{UserID: ownerID, CurrentDateTime: time.Now().UTC()})

	history, err := s.convos.ListMessages(ownerID, convoID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	transcript := buildTranscript(history)

	reply, err := s.runLoop(ctx, transcript)
	if err != nil {
		return uuid.Nil, nil, err
	}

	stored, err := s.convos.AppendMessage(ownerID, convoID, conversation.RoleAssistant, reply)
	if err != nil {
		return uuid.Nil, nil, err
	}

	if isFirstTurn {
		if err := s.convos.SetTitle(ownerID, convoID, deriveTitle(userMessage)); err != nil {
			s.logger.Warnw("failed to set conversation title", "conversation_id", convoID, "error", err)
		}
	}

	return convoID, stored, nil
}

func (s *service) resolveConversation(ownerID uuid.UUID, conversationID *uuid.UUID) (uuid.UUID, bool, error) {
	if conversationID != nil {
		c, err := s.convos.GetConversation(ownerID, *conversationID)
		if err != nil {
			return uuid.Nil, false, err
		}
		return c.ID, false, nil
	}
	c, err := s.convos.CreateConversation(ownerID)
	if err != nil {
		return uuid.Nil, false, err
	}
	return c.ID, true, nil
}

// runLoop implements Plan/Dispatch/Loop: repeatedly calls the LLMClient,
// dispatching any requested tool calls against the bounded registry, until a
// final assistant message arrives or the iteration bound is exceeded.
func (s *service) runLoop(ctx context.Context, transcript []assistant.Message) (string, error) {
	tools := s.registry.GetContractTools()

	for iter := 0; iter < s.cfg.MaxToolIterations; iter++ {
		result, err := s.llm.Complete(ctx, assistant.CompletionRequest{Messages: transcript, Tools: tools})
		if err != nil {
			return "", fmt.Errorf("assistant completion failed: %w", err)
		}

		if len(result.Message.ToolCalls) == 0 {
			return result.Message.Content, nil
		}

		transcript = append(transcript, result.Message)
		for _, call := range result.Message.ToolCalls {
			if !toolNameRegistered(s.registry, call.Name) {
				// Safety: the model named something outside the bounded tool
				// surface. Refuse to dispatch it and end the turn with an
				// explicit error reply rather than silently ignoring it.
				return fmt.Sprintf("I can't do that: %q is not one of my available actions.", call.Name), nil
			}
			execResult, execErr := s.exec.Execute(ctx, s.registry, call)
			transcript = append(transcript, toolResultMessage(call, execResult, execErr))
		}
	}

	return "I wasn't able to finish that within the allotted steps; here's where things stand: " +
		lastAssistantText(transcript), nil
}

func toolNameRegistered(reg toolsystem.Registry, name string) bool {
	for _, t := range reg.List() {
		if t.Spec.Name == name {
			return true
		}
	}
	return false
}

func toolResultMessage(call assistant.ToolCall, result *toolsystem.ToolExecutionResult, execErr error) assistant.Message {
	payload := map[string]any{}
	if execErr != nil {
		payload["error"] = execErr.Error()
	} else if result != nil {
		payload["result"] = result.Result
	}
	data, _ := json.Marshal(payload)
	return assistant.Message{
		Role:       assistant.RoleTool,
		Content:    string(data),
		ToolCallID: call.ID,
		ToolName:   call.Name,
	}
}

func lastAssistantText(transcript []assistant.Message) string {
	for i := len(transcript) - 1; i >= 0; i-- {
		if transcript[i].Role == assistant.RoleAssistant && transcript[i].Content != "" {
			return transcript[i].Content
		}
	}
	return ""
}

func buildTranscript(history []conversation.Message) []assistant.Message {
	out := make([]assistant.Message, 0, len(history)+1)
	out = append(out, assistant.Message{Role: assistant.RoleSystem, Content: prompts.DEFAULT_PROMPT.Current().Content})
	for _, m := range history {
		role := assistant.RoleUser
		if m.Role == conversation.RoleAssistant {
			role = assistant.RoleAssistant
		}
		out = append(out, assistant.Message{Role: role, Content: m.Content})
	}
	return out
}

const titleMaxLen = 60

func deriveTitle(firstMessage string) string {
	t := strings.TrimSpace(firstMessage)
	if len(t) <= titleMaxLen {
		return t
	}
	return strings.TrimSpace(t[:titleMaxLen]) + "…"
}
