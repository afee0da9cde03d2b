package toolsystem

import "fmt"

// ToolBuilder helps create tools with a fluent interface
type ToolBuilder struct {
	name        string
	version     string
	description string
	args        []ArgSpec
	handler     ToolHandler
	tags        []string
}

// NewToolBuilder creates a new tool builder
func NewToolBuilder(name, version, description string) *ToolBuilder {
	return &ToolBuilder{
		name:        name,
		version:     version,
		description: description,
		args:        make([]ArgSpec, 0),
		tags:        make([]string, 0),
	}
}

// AddParameter adds a parameter to the tool
func (tb *ToolBuilder) AddParameter(name string, paramType JSONType, description string, required bool, enum ...string) *ToolBuilder {
	tb.args = append(tb.args, ArgSpec{
		Name:        name,
		Type:        paramType,
		Description: description,
		Required:    required,
	})
	_ = enum // enum values are validated by handlers, not encoded in ArgSpec today
	return tb
}

// AddStringParameter adds a string parameter
func (tb *ToolBuilder) AddStringParameter(name, description string, required bool, enum ...string) *ToolBuilder {
	return tb.AddParameter(name, JSONString, description, required, enum...)
}

// AddNumberParameter adds a number parameter
func (tb *ToolBuilder) AddNumberParameter(name, description string, required bool) *ToolBuilder {
	return tb.AddParameter(name, JSONNumber, description, required)
}

// AddBooleanParameter adds a boolean parameter
func (tb *ToolBuilder) AddBooleanParameter(name, description string, required bool) *ToolBuilder {
	return tb.AddParameter(name, JSONBool, description, required)
}

// AddObjectParameter adds an object parameter
func (tb *ToolBuilder) AddObjectParameter(name, description string, required bool) *ToolBuilder {
	return tb.AddParameter(name, JSONObject, description, required)
}

// AddArrayParameter adds an array parameter
func (tb *ToolBuilder) AddArrayParameter(name, description string, required bool) *ToolBuilder {
	return tb.AddParameter(name, JSONArray, description, required)
}

// SetHandler sets the tool handler function
func (tb *ToolBuilder) SetHandler(handler ToolHandler) *ToolBuilder {
	tb.handler = handler
	return tb
}

// AddTags adds tags to the tool
func (tb *ToolBuilder) AddTags(tags ...string) *ToolBuilder {
	tb.tags = append(tb.tags, tags...)
	return tb
}

// Build creates the final Tool
func (tb *ToolBuilder) Build() (Tool, error) {
	if tb.handler == nil {
		return Tool{}, fmt.Errorf("handler is required for tool %s", tb.name)
	}

	spec := ToolSpec{
		Name:        tb.name,
		Version:     tb.version,
		Description: tb.description,
		Args:        tb.args,
		Tags:        tb.tags,
	}

	return Tool{
		Spec:    spec,
		Handler: tb.handler,
		Version: tb.version,
		Tags:    tb.tags,
	}, nil
}

// BuildAndRegister creates the tool and registers it to the registry
func (tb *ToolBuilder) BuildAndRegister(registry Registry) error {
	tool, err := tb.Build()
	if err != nil {
		return err
	}
	return registry.Register(tool)
}

// ToolParam represents a tool parameter configuration
type ToolParam struct {
	Type        JSONType
	Description string
	Required    bool
	Enum        []string
}

// CreateSimpleTool is a utility function to create a simple tool quickly
func CreateSimpleTool(name, version, description string, handler ToolHandler, params map[string]ToolParam) (Tool, error) {
	builder := NewToolBuilder(name, version, description).SetHandler(handler)

	for paramName, param := range params {
		builder.AddParameter(paramName, param.Type, param.Description, param.Required, param.Enum...)
	}

	return builder.Build()
}
