package toolsystem

import (
	"context"

	"github.com/xpanvictor/xarvis/pkg/assistant"
)

type JSONType string

const (
	JSONString JSONType = "string"
	JSONNumber JSONType = "number"
	JSONObject JSONType = "object"
	JSONArray  JSONType = "array"
	JSONBool   JSONType = "boolean"
)

type ArgSpec struct {
	Name        string
	Type        JSONType
	Description string
	Required    bool
}

type ResultSpec struct {
	Name        string
	Type        JSONType
	Description string
}

type ToolSpec struct {
	Name        string
	Version     string
	Description string
	Args        []ArgSpec
	Result      []ResultSpec
	Tags        []string
}

type ToolHandler func(ctx context.Context, args map[string]any) (map[string]any, error)

// ToContract translates a ToolSpec into the provider-agnostic schema an
// assistant.Client expects.
func (s ToolSpec) ToContract() assistant.ToolSchema {
	params := make(map[string]assistant.ParamSchema, len(s.Args))
	required := make([]string, 0, len(s.Args))
	for _, arg := range s.Args {
		params[arg.Name] = assistant.ParamSchema{
			Type:        string(arg.Type),
			Description: arg.Description,
		}
		if arg.Required {
			required = append(required, arg.Name)
		}
	}
	return assistant.ToolSchema{
		Name:        s.Name,
		Description: s.Description,
		Parameters:  params,
		Required:    required,
	}
}
