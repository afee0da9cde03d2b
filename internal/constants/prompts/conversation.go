// Package prompts holds versioned system-prompt text for the Agent. Keeping
// every revision addressable by version lets a conversation pin the prompt
// it started with even after CurrentVersion moves on.
package prompts

// PromptDefinition is one addressable revision of a prompt.
type PromptDefinition struct {
	Version float32
	Content string
}

// SYS_PROMPT groups every revision of a single named prompt under the
// version currently considered default.
type SYS_PROMPT struct {
	Intent         string
	CurrentVersion float32
	Items          map[float32]PromptDefinition
}

// Current returns the PromptDefinition CurrentVersion points at.
func (s SYS_PROMPT) Current() PromptDefinition {
	return s.Items[s.CurrentVersion]
}

var DEFAULT_PROMPT = SYS_PROMPT{
	Intent:         "Identity",
	CurrentVersion: 0.1,
	Items: map[float32]PromptDefinition{
		0.1: {
			Version: 0.1,
			Content: `You are the task assistant embedded in this application. You help the
user manage their tasks: creating, listing, filtering, completing, and
rescheduling them, entirely through the tools made available to you.
Never claim to have performed an action you did not invoke a tool for.
When a request is ambiguous (for example, a title that matches more than
one task), ask the user to disambiguate instead of guessing.`,
		},
	},
}
