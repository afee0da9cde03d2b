package agent_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/xpanvictor/xarvis/internal/domains/agent"
	"github.com/xpanvictor/xarvis/internal/domains/conversation/conversationfake"
	"github.com/xpanvictor/xarvis/internal/domains/task"
	"github.com/xpanvictor/xarvis/internal/domains/task/taskfake"
	"github.com/xpanvictor/xarvis/internal/eventbus"
	"github.com/xpanvictor/xarvis/pkg/Logger"
	"github.com/xpanvictor/xarvis/pkg/assistant"
)

// scriptedLLM replays a fixed sequence of CompletionResults, one per call,
// standing in for a real provider so tool-dispatch behavior can be tested
// deterministically.
type scriptedLLM struct {
	results []assistant.CompletionResult
	calls   int
}

func (s *scriptedLLM) Complete(ctx context.Context, req assistant.CompletionRequest) (assistant.CompletionResult, error) {
	if s.calls >= len(s.results) {
		return assistant.CompletionResult{Message: assistant.Message{Role: assistant.RoleAssistant, Content: "done"}}, nil
	}
	r := s.results[s.calls]
	s.calls++
	return r, nil
}

func newTestAgent(t *testing.T, llm assistant.Client) (agent.Service, task.Service) {
	t.Helper()
	repo := taskfake.New()
	bus := eventbus.NewMemoryBus()
	taskSvc := task.NewService(repo, bus, Logger.New(false))
	reg, err := agent.BuildRegistry(taskSvc)
	require.NoError(t, err)
	svc := agent.NewService(conversationfake.New(), reg, llm, agent.Config{}, Logger.New(false))
	return svc, taskSvc
}

// A tool call naming something outside the declared surface is rejected
// before dispatch, and the turn ends with an error reply instead of
// invoking anything.
func TestAgentRejectsToolOutsideSurface(t *testing.T) {
	llm := &scriptedLLM{results: []assistant.CompletionResult{
		{Message: assistant.Message{
			Role: assistant.RoleAssistant,
			ToolCalls: []assistant.ToolCall{
				{ID: "1", Name: "bulk_delete_all_tasks", Arguments: map[string]any{}},
			},
		}},
	}}
	svc, _ := newTestAgent(t, llm)

	owner := uuid.New()
	_, msg, err := svc.Respond(context.Background(), owner, nil, "delete all my tasks")
	require.NoError(t, err)
	require.Contains(t, msg.Content, "bulk_delete_all_tasks")
	require.Equal(t, 1, llm.calls)
}

func TestAgentDispatchesAddTaskAndReturnsFinalReply(t *testing.T) {
	llm := &scriptedLLM{results: []assistant.CompletionResult{
		{Message: assistant.Message{
			Role: assistant.RoleAssistant,
			ToolCalls: []assistant.ToolCall{
				{ID: "1", Name: "add_task", Arguments: map[string]any{"title": "buy milk", "priority": "high"}},
			},
		}},
		{Message: assistant.Message{Role: assistant.RoleAssistant, Content: "Added \"buy milk\"."}},
	}}
	svc, taskSvc := newTestAgent(t, llm)

	owner := uuid.New()
	_, msg, err := svc.Respond(context.Background(), owner, nil, "add a task to buy milk, high priority")
	require.NoError(t, err)
	require.Equal(t, `Added "buy milk".`, msg.Content)

	tasks, err := taskSvc.ListTasks(context.Background(), owner, task.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "buy milk", tasks[0].Title)
	require.Equal(t, task.PriorityHigh, tasks[0].Priority)
}

// Ambiguous title matches on complete_task must be surfaced as a
// disambiguation request, never resolved silently.
func TestAgentSurfacesAmbiguousCompleteTaskMatch(t *testing.T) {
	llm := &scriptedLLM{}
	svc, taskSvc := newTestAgent(t, llm)
	owner := uuid.New()
	_, err := taskSvc.CreateTask(context.Background(), owner, task.CreateTaskRequest{Title: "call mom"})
	require.NoError(t, err)
	_, err = taskSvc.CreateTask(context.Background(), owner, task.CreateTaskRequest{Title: "call dentist"})
	require.NoError(t, err)

	llm.results = []assistant.CompletionResult{
		{Message: assistant.Message{
			Role: assistant.RoleAssistant,
			ToolCalls: []assistant.ToolCall{
				{ID: "1", Name: "complete_task", Arguments: map[string]any{"title": "call"}},
			},
		}},
		{Message: assistant.Message{Role: assistant.RoleAssistant, Content: "Which one did you mean?"}},
	}

	_, msg, err := svc.Respond(context.Background(), owner, nil, "mark call as done")
	require.NoError(t, err)
	require.Equal(t, "Which one did you mean?", msg.Content)

	// Neither task should have been completed by the ambiguous call.
	tasks, err := taskSvc.ListTasks(context.Background(), owner, task.TaskFilter{Completed: boolPtr(true)})
	require.NoError(t, err)
	require.Empty(t, tasks)
}

func boolPtr(b bool) *bool { return &b }

func TestAgentLoopTerminatesAtIterationBound(t *testing.T) {
	// Every scripted response requests the same valid tool call, so the
	// model never produces a final message and the bound must trigger.
	results := make([]assistant.CompletionResult, 0, agent.DefaultMaxToolIterations)
	for i := 0; i < agent.DefaultMaxToolIterations; i++ {
		results = append(results, assistant.CompletionResult{Message: assistant.Message{
			Role: assistant.RoleAssistant,
			ToolCalls: []assistant.ToolCall{
				{ID: "1", Name: "list_tasks", Arguments: map[string]any{}},
			},
		}})
	}
	llm := &scriptedLLM{results: results}
	svc, _ := newTestAgent(t, llm)

	_, msg, err := svc.Respond(context.Background(), uuid.New(), nil, "keep listing")
	require.NoError(t, err)
	require.Contains(t, msg.Content, "wasn't able to finish")
	require.Equal(t, agent.DefaultMaxToolIterations, llm.calls)
}
