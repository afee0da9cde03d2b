// Package openaiadapter implements assistant.Client against the OpenAI
// chat-completions API.
package openaiadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/xpanvictor/xarvis/pkg/assistant"
)

type Adapter struct {
	client openai.Client
	model  string
}

// New builds an adapter bound to a single chat model. model defaults to
// GPT-4o when empty.
func New(apiKey, model string) *Adapter {
	if model == "" {
		model = openai.ChatModelGPT4o
	}
	return &Adapter{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (a *Adapter) Complete(ctx context.Context, req assistant.CompletionRequest) (assistant.CompletionResult, error) {
	params := openai.ChatCompletionNewParams{
		Model:    a.model,
		Messages: convertMessages(req.Messages),
	}
	if len(req.Tools) > 0 {
		params.Tools = convertTools(req.Tools)
	}

	completion, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return assistant.CompletionResult{}, fmt.Errorf("openai completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return assistant.CompletionResult{}, fmt.Errorf("openai completion: no choices returned")
	}
	choice := completion.Choices[0]

	msg := assistant.Message{Role: assistant.RoleAssistant, Content: choice.Message.Content}
	for _, tc := range choice.Message.ToolCalls {
		var args map[string]any
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			return assistant.CompletionResult{}, fmt.Errorf("openai tool call %q: malformed arguments: %w", tc.Function.Name, err)
		}
		msg.ToolCalls = append(msg.ToolCalls, assistant.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}

	return assistant.CompletionResult{
		Message:      msg,
		FinishReason: string(choice.FinishReason),
	}, nil
}

func convertMessages(msgs []assistant.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case assistant.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case assistant.RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		case assistant.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		case assistant.RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		}
	}
	return out
}

func convertTools(tools []assistant.ToolSchema) []openai.ChatCompletionToolUnionParam {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		properties := make(map[string]any, len(t.Parameters))
		for name, p := range t.Parameters {
			properties[name] = paramToJSONSchema(p)
		}
		out = append(out, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openai.String(t.Description),
			Parameters: openai.FunctionParameters{
				"type":       "object",
				"properties": properties,
				"required":   t.Required,
			},
		}))
	}
	return out
}

func paramToJSONSchema(p assistant.ParamSchema) map[string]any {
	schema := map[string]any{"type": p.Type, "description": p.Description}
	if len(p.Enum) > 0 {
		schema["enum"] = p.Enum
	}
	if p.Items != nil {
		schema["items"] = paramToJSONSchema(*p.Items)
	}
	return schema
}
