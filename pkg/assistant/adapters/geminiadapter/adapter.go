// Package geminiadapter implements assistant.Client against Google's
// Gemini API via the generative-ai-go client.
package geminiadapter

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/xpanvictor/xarvis/pkg/assistant"
	"google.golang.org/api/option"
)

type Adapter struct {
	client *genai.Client
	model  string
}

// New builds a Gemini client for apiKey; callers own the returned Adapter's
// lifetime and release the client with the Adapter's Close method when the
// process is shutting down.
func New(ctx context.Context, apiKey, model string) (*Adapter, error) {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Adapter{client: client, model: model}, nil
}

func (a *Adapter) Close() error { return a.client.Close() }

func (a *Adapter) Complete(ctx context.Context, req assistant.CompletionRequest) (assistant.CompletionResult, error) {
	model := a.client.GenerativeModel(a.model)
	model.Tools = convertTools(req.Tools)

	system, history, last := splitTranscript(req.Messages)
	if system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}

	cs := model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, last...)
	if err != nil {
		return assistant.CompletionResult{}, fmt.Errorf("gemini completion: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return assistant.CompletionResult{}, fmt.Errorf("gemini completion: no candidates returned")
	}

	msg := assistant.Message{Role: assistant.RoleAssistant}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			msg.Content += string(p)
		case genai.FunctionCall:
			msg.ToolCalls = append(msg.ToolCalls, assistant.ToolCall{
				Name:      p.Name,
				Arguments: p.Args,
			})
		}
	}

	finish := ""
	if resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
		finish = resp.Candidates[0].FinishReason.String()
	}
	return assistant.CompletionResult{Message: msg, FinishReason: finish}, nil
}

// splitTranscript peels the leading system message (if any) and the final
// user/tool turn off the transcript, since genai.ChatSession models
// everything before the final turn as History and sends only the last
// turn's parts.
func splitTranscript(msgs []assistant.Message) (system string, history []*genai.Content, last []genai.Part) {
	body := msgs
	if len(body) > 0 && body[0].Role == assistant.RoleSystem {
		system = body[0].Content
		body = body[1:]
	}
	if len(body) == 0 {
		return system, nil, nil
	}
	for _, m := range body[:len(body)-1] {
		history = append(history, &genai.Content{
			Role:  geminiRole(m.Role),
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	last = []genai.Part{genai.Text(body[len(body)-1].Content)}
	return system, history, last
}

func geminiRole(r assistant.Role) string {
	if r == assistant.RoleAssistant {
		return "model"
	}
	return "user"
}

func convertTools(tools []assistant.ToolSchema) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		properties := make(map[string]*genai.Schema, len(t.Parameters))
		for name, p := range t.Parameters {
			properties[name] = convertSchema(p)
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   t.Required,
			},
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func convertSchema(p assistant.ParamSchema) *genai.Schema {
	schema := &genai.Schema{Description: p.Description}
	switch p.Type {
	case "number":
		schema.Type = genai.TypeNumber
	case "boolean":
		schema.Type = genai.TypeBoolean
	case "array":
		schema.Type = genai.TypeArray
		if p.Items != nil {
			schema.Items = convertSchema(*p.Items)
		}
	case "object":
		schema.Type = genai.TypeObject
	default:
		schema.Type = genai.TypeString
	}
	if len(p.Enum) > 0 {
		schema.Enum = p.Enum
	}
	return schema
}
