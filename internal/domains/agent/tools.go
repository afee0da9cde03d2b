// Package agent implements the bounded tool-dispatch loop described as
// "Agent" in the system design: a turn-taking conversation loop that
// translates a user utterance into zero or more TaskCore operations.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xpanvictor/xarvis/internal/apperrors"
	"github.com/xpanvictor/xarvis/internal/domains/task"
	toolsystem "github.com/xpanvictor/xarvis/pkg/tool_system"
)

const toolVersion = "1.0.0"

func userIDFromArgs(args map[string]any) (uuid.UUID, error) {
	raw, _ := args["__user_id"].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("missing or invalid caller identity")
	}
	return id, nil
}

func nowFromArgs(args map[string]any) time.Time {
	raw, _ := args["__current_date_time"].(string)
	if raw == "" {
		return time.Now().UTC()
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC()
	}
	return time.Now().UTC()
}

func taskResult(t *task.Task) map[string]any {
	result := map[string]any{
		"id":         t.ID.String(),
		"title":      t.Title,
		"completed":  t.Completed,
		"priority":   t.Priority.String(),
		"recurrence": string(t.Recurrence),
		"tags":       t.Tags,
	}
	if t.DueAt != nil {
		result["dueAt"] = t.DueAt.Format(time.RFC3339)
	}
	if t.RemindAt != nil {
		result["remindAt"] = t.RemindAt.Format(time.RFC3339)
	}
	return result
}

func tasksResult(ts []task.Task) map[string]any {
	out := make([]map[string]any, len(ts))
	for i := range ts {
		out[i] = taskResult(&ts[i])
	}
	return map[string]any{"tasks": out, "count": len(out)}
}

// resolveTaskRef finds the single task a tool call refers to, either by an
// explicit id argument or by a case-insensitive, unique substring match on
// title. Ambiguous matches are reported by name so the model can ask the
// user to pick, rather than resolved silently.
func resolveTaskRef(svc task.Service, ctx context.Context, ownerID uuid.UUID, args map[string]any) (*task.Task, error) {
	if idRaw, ok := args["id"].(string); ok && idRaw != "" {
		id, err := uuid.Parse(idRaw)
		if err != nil {
			return nil, apperrors.Validation("id is not a valid identifier")
		}
		return svc.GetTask(ctx, ownerID, id)
	}
	titleRaw, _ := args["title"].(string)
	titleRaw = strings.TrimSpace(titleRaw)
	if titleRaw == "" {
		return nil, apperrors.Validation("either id or title must be provided")
	}
	all, err := svc.ListTasks(ctx, ownerID, task.TaskFilter{})
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(titleRaw)
	var matches []task.Task
	for _, t := range all {
		if strings.Contains(strings.ToLower(t.Title), needle) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return nil, apperrors.NotFound()
	case 1:
		return &matches[0], nil
	default:
		titles := make([]string, len(matches))
		for i, m := range matches {
			titles[i] = m.Title
		}
		return nil, apperrors.Validation(fmt.Sprintf(
			"title %q matches %d tasks (%s); ask the user which one", titleRaw, len(matches), strings.Join(titles, ", ")))
	}
}

// BuildRegistry constructs the fixed tool surface the Agent is permitted to
// invoke, each tool mapping one-to-one onto a task.Service operation. This
// is the entire set of operations the dispatcher will accept; anything else
// the model names is rejected before it ever reaches a handler.
func BuildRegistry(svc task.Service) (toolsystem.Registry, error) {
	reg := toolsystem.NewMemoryRegistry()

	tools := []func() (toolsystem.Tool, error){
		addTaskTool(svc),
		listTasksTool(svc),
		filterByPriorityTool(svc),
		filterByTagTool(svc),
		showOverdueTool(svc),
		searchTasksTool(svc),
		combinedFilterTool(svc),
		sortTasksTool(svc),
		completeTaskTool(svc),
		updateTaskTool(svc),
		setPriorityTool(svc),
		setDueDateTool(svc),
		setRecurrenceTool(svc),
		deleteTaskTool(svc),
		addTagTool(svc),
		removeTagTool(svc),
		setReminderTool(svc),
	}
	for _, build := range tools {
		tool, err := build()
		if err != nil {
			return nil, err
		}
		if err := reg.Register(tool); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func addTaskTool(svc task.Service) func() (toolsystem.Tool, error) {
	return func() (toolsystem.Tool, error) {
		return toolsystem.NewToolBuilder("add_task", toolVersion, "Create a new task").
			AddStringParameter("title", "Task title", true).
			AddStringParameter("description", "Task description", false).
			AddStringParameter("priority", "low, medium, or high", false, "low", "medium", "high").
			AddStringParameter("due_date", "Natural-language due date, e.g. 'tomorrow' or 'next friday'", false).
			AddStringParameter("recurrence", "none, daily, weekly, or monthly", false, "none", "daily", "weekly", "monthly").
			AddArrayParameter("tags", "Tags to attach", false).
			SetHandler(func(ctx context.Context, args map[string]any) (map[string]any, error) {
				ownerID, err := userIDFromArgs(args)
				if err != nil {
					return nil, err
				}
				req := task.CreateTaskRequest{Title: stringArg(args, "title"), Description: stringArg(args, "description")}
				if p, ok := args["priority"].(string); ok && p != "" {
					pr, ok := task.ParsePriority(p)
					if !ok {
						return nil, apperrors.Validation("unknown priority")
					}
					req.Priority = pr
				}
				if r, ok := args["recurrence"].(string); ok && r != "" {
					req.Recurrence = task.Recurrence(r)
				}
				if d, ok := args["due_date"].(string); ok && d != "" {
					when, err := ResolveDate(d, nowFromArgs(args))
					if err != nil {
						return nil, apperrors.Validation(err.Error())
					}
					req.DueAt = &when
				}
				req.Tags = stringSliceArg(args, "tags")
				t, err := svc.CreateTask(ctx, ownerID, req)
				if err != nil {
					return nil, err
				}
				return taskResult(t), nil
			}).
			AddTags("task").
			Build()
	}
}

func listTasksTool(svc task.Service) func() (toolsystem.Tool, error) {
	return func() (toolsystem.Tool, error) {
		return toolsystem.NewToolBuilder("list_tasks", toolVersion, "List the caller's tasks").
			SetHandler(func(ctx context.Context, args map[string]any) (map[string]any, error) {
				ownerID, err := userIDFromArgs(args)
				if err != nil {
					return nil, err
				}
				ts, err := svc.ListTasks(ctx, ownerID, task.TaskFilter{})
				if err != nil {
					return nil, err
				}
				return tasksResult(ts), nil
			}).
			AddTags("task").
			Build()
	}
}

func filterByPriorityTool(svc task.Service) func() (toolsystem.Tool, error) {
	return func() (toolsystem.Tool, error) {
		return toolsystem.NewToolBuilder("filter_by_priority", toolVersion, "List tasks at a given priority").
			AddStringParameter("priority", "low, medium, or high", true, "low", "medium", "high").
			SetHandler(func(ctx context.Context, args map[string]any) (map[string]any, error) {
				ownerID, err := userIDFromArgs(args)
				if err != nil {
					return nil, err
				}
				pr, ok := task.ParsePriority(stringArg(args, "priority"))
				if !ok {
					return nil, apperrors.Validation("unknown priority")
				}
				ts, err := svc.ListTasks(ctx, ownerID, task.TaskFilter{Priority: &pr})
				if err != nil {
					return nil, err
				}
				return tasksResult(ts), nil
			}).
			AddTags("task").
			Build()
	}
}

func filterByTagTool(svc task.Service) func() (toolsystem.Tool, error) {
	return func() (toolsystem.Tool, error) {
		return toolsystem.NewToolBuilder("filter_by_tag", toolVersion, "List tasks bearing a given tag").
			AddStringParameter("tag", "Tag name", true).
			SetHandler(func(ctx context.Context, args map[string]any) (map[string]any, error) {
				ownerID, err := userIDFromArgs(args)
				if err != nil {
					return nil, err
				}
				ts, err := svc.ListTasks(ctx, ownerID, task.TaskFilter{Tag: strings.ToLower(stringArg(args, "tag"))})
				if err != nil {
					return nil, err
				}
				return tasksResult(ts), nil
			}).
			AddTags("task").
			Build()
	}
}

func showOverdueTool(svc task.Service) func() (toolsystem.Tool, error) {
	return func() (toolsystem.Tool, error) {
		return toolsystem.NewToolBuilder("show_overdue", toolVersion, "List tasks past their due date and not completed").
			SetHandler(func(ctx context.Context, args map[string]any) (map[string]any, error) {
				ownerID, err := userIDFromArgs(args)
				if err != nil {
					return nil, err
				}
				ts, err := svc.ListTasks(ctx, ownerID, task.TaskFilter{Overdue: true})
				if err != nil {
					return nil, err
				}
				return tasksResult(ts), nil
			}).
			AddTags("task").
			Build()
	}
}

func searchTasksTool(svc task.Service) func() (toolsystem.Tool, error) {
	return func() (toolsystem.Tool, error) {
		return toolsystem.NewToolBuilder("search_tasks", toolVersion, "Full-text search over title and description").
			AddStringParameter("query", "Search text", true).
			SetHandler(func(ctx context.Context, args map[string]any) (map[string]any, error) {
				ownerID, err := userIDFromArgs(args)
				if err != nil {
					return nil, err
				}
				ts, err := svc.SearchTasks(ctx, ownerID, stringArg(args, "query"))
				if err != nil {
					return nil, err
				}
				return tasksResult(ts), nil
			}).
			AddTags("task").
			Build()
	}
}

func combinedFilterTool(svc task.Service) func() (toolsystem.Tool, error) {
	return func() (toolsystem.Tool, error) {
		return toolsystem.NewToolBuilder("combined_filter", toolVersion, "List tasks matching any combination of priority, tag, completion, and overdue").
			AddStringParameter("priority", "low, medium, or high", false, "low", "medium", "high").
			AddStringParameter("tag", "Tag name", false).
			AddBooleanParameter("completed", "Filter by completion state", false).
			AddBooleanParameter("overdue", "Only overdue tasks", false).
			SetHandler(func(ctx context.Context, args map[string]any) (map[string]any, error) {
				ownerID, err := userIDFromArgs(args)
				if err != nil {
					return nil, err
				}
				f := task.TaskFilter{}
				if p, ok := args["priority"].(string); ok && p != "" {
					pr, ok := task.ParsePriority(p)
					if !ok {
						return nil, apperrors.Validation("unknown priority")
					}
					f.Priority = &pr
				}
				if tag, ok := args["tag"].(string); ok && tag != "" {
					f.Tag = strings.ToLower(tag)
				}
				if c, ok := args["completed"].(bool); ok {
					f.Completed = &c
				}
				if o, ok := args["overdue"].(bool); ok {
					f.Overdue = o
				}
				ts, err := svc.ListTasks(ctx, ownerID, f)
				if err != nil {
					return nil, err
				}
				return tasksResult(ts), nil
			}).
			AddTags("task").
			Build()
	}
}

func sortTasksTool(svc task.Service) func() (toolsystem.Tool, error) {
	return func() (toolsystem.Tool, error) {
		return toolsystem.NewToolBuilder("sort_tasks", toolVersion, "List tasks sorted by a given key").
			AddStringParameter("sort_key", "createdAt, updatedAt, dueAt, priority, or title", false).
			AddBooleanParameter("descending", "Sort descending", false).
			SetHandler(func(ctx context.Context, args map[string]any) (map[string]any, error) {
				ownerID, err := userIDFromArgs(args)
				if err != nil {
					return nil, err
				}
				f := task.TaskFilter{}
				if k, ok := args["sort_key"].(string); ok && k != "" {
					f.SortKey = task.SortKey(k)
				}
				if d, ok := args["descending"].(bool); ok {
					f.SortDesc = d
				}
				ts, err := svc.ListTasks(ctx, ownerID, f)
				if err != nil {
					return nil, err
				}
				return tasksResult(ts), nil
			}).
			AddTags("task").
			Build()
	}
}

func completeTaskTool(svc task.Service) func() (toolsystem.Tool, error) {
	return func() (toolsystem.Tool, error) {
		return toolsystem.NewToolBuilder("complete_task", toolVersion, "Mark a task complete or incomplete, identified by id or unique title match").
			AddStringParameter("id", "Task id", false).
			AddStringParameter("title", "Task title or unique substring of it", false).
			SetHandler(func(ctx context.Context, args map[string]any) (map[string]any, error) {
				ownerID, err := userIDFromArgs(args)
				if err != nil {
					return nil, err
				}
				t, err := resolveTaskRef(svc, ctx, ownerID, args)
				if err != nil {
					return nil, err
				}
				updated, err := svc.ToggleComplete(ctx, ownerID, t.ID)
				if err != nil {
					return nil, err
				}
				return taskResult(updated), nil
			}).
			AddTags("task").
			Build()
	}
}

func updateTaskTool(svc task.Service) func() (toolsystem.Tool, error) {
	return func() (toolsystem.Tool, error) {
		return toolsystem.NewToolBuilder("update_task", toolVersion, "Update a task's title, description, or priority").
			AddStringParameter("id", "Task id", false).
			AddStringParameter("title", "Task title or unique substring to identify the task, if id is omitted", false).
			AddStringParameter("new_title", "New title", false).
			AddStringParameter("description", "New description", false).
			AddStringParameter("priority", "low, medium, or high", false, "low", "medium", "high").
			SetHandler(func(ctx context.Context, args map[string]any) (map[string]any, error) {
				ownerID, err := userIDFromArgs(args)
				if err != nil {
					return nil, err
				}
				t, err := resolveTaskRef(svc, ctx, ownerID, args)
				if err != nil {
					return nil, err
				}
				req := task.UpdateTaskRequest{}
				if v, ok := args["new_title"].(string); ok && v != "" {
					req.Title = &v
				}
				if v, ok := args["description"].(string); ok {
					req.Description = &v
				}
				if v, ok := args["priority"].(string); ok && v != "" {
					pr, ok := task.ParsePriority(v)
					if !ok {
						return nil, apperrors.Validation("unknown priority")
					}
					req.Priority = &pr
				}
				updated, err := svc.UpdateTask(ctx, ownerID, t.ID, req)
				if err != nil {
					return nil, err
				}
				return taskResult(updated), nil
			}).
			AddTags("task").
			Build()
	}
}

func setPriorityTool(svc task.Service) func() (toolsystem.Tool, error) {
	return func() (toolsystem.Tool, error) {
		return toolsystem.NewToolBuilder("set_priority", toolVersion, "Set a task's priority").
			AddStringParameter("id", "Task id", false).
			AddStringParameter("title", "Task title or unique substring", false).
			AddStringParameter("priority", "low, medium, or high", true, "low", "medium", "high").
			SetHandler(func(ctx context.Context, args map[string]any) (map[string]any, error) {
				ownerID, err := userIDFromArgs(args)
				if err != nil {
					return nil, err
				}
				t, err := resolveTaskRef(svc, ctx, ownerID, args)
				if err != nil {
					return nil, err
				}
				pr, ok := task.ParsePriority(stringArg(args, "priority"))
				if !ok {
					return nil, apperrors.Validation("unknown priority")
				}
				updated, err := svc.UpdateTask(ctx, ownerID, t.ID, task.UpdateTaskRequest{Priority: &pr})
				if err != nil {
					return nil, err
				}
				return taskResult(updated), nil
			}).
			AddTags("task").
			Build()
	}
}

func setDueDateTool(svc task.Service) func() (toolsystem.Tool, error) {
	return func() (toolsystem.Tool, error) {
		return toolsystem.NewToolBuilder("set_due_date", toolVersion, "Set or clear a task's due date").
			AddStringParameter("id", "Task id", false).
			AddStringParameter("title", "Task title or unique substring", false).
			AddStringParameter("due_date", "Natural-language due date; ignored when empty (use clear to remove the due date)", false).
			AddBooleanParameter("clear", "Clear the due date", false).
			SetHandler(func(ctx context.Context, args map[string]any) (map[string]any, error) {
				ownerID, err := userIDFromArgs(args)
				if err != nil {
					return nil, err
				}
				t, err := resolveTaskRef(svc, ctx, ownerID, args)
				if err != nil {
					return nil, err
				}
				req := task.UpdateTaskRequest{}
				if clear, ok := args["clear"].(bool); ok && clear {
					req.ClearDueAt = true
				} else if d, ok := args["due_date"].(string); ok && d != "" {
					when, err := ResolveDate(d, nowFromArgs(args))
					if err != nil {
						return nil, apperrors.Validation(err.Error())
					}
					req.DueAt = &when
				}
				updated, err := svc.UpdateTask(ctx, ownerID, t.ID, req)
				if err != nil {
					return nil, err
				}
				return taskResult(updated), nil
			}).
			AddTags("task").
			Build()
	}
}

func setRecurrenceTool(svc task.Service) func() (toolsystem.Tool, error) {
	return func() (toolsystem.Tool, error) {
		return toolsystem.NewToolBuilder("set_recurrence", toolVersion, "Set a task's recurrence policy").
			AddStringParameter("id", "Task id", false).
			AddStringParameter("title", "Task title or unique substring", false).
			AddStringParameter("recurrence", "none, daily, weekly, or monthly", true, "none", "daily", "weekly", "monthly").
			SetHandler(func(ctx context.Context, args map[string]any) (map[string]any, error) {
				ownerID, err := userIDFromArgs(args)
				if err != nil {
					return nil, err
				}
				t, err := resolveTaskRef(svc, ctx, ownerID, args)
				if err != nil {
					return nil, err
				}
				r := task.Recurrence(stringArg(args, "recurrence"))
				updated, err := svc.UpdateTask(ctx, ownerID, t.ID, task.UpdateTaskRequest{Recurrence: &r})
				if err != nil {
					return nil, err
				}
				return taskResult(updated), nil
			}).
			AddTags("task").
			Build()
	}
}

func deleteTaskTool(svc task.Service) func() (toolsystem.Tool, error) {
	return func() (toolsystem.Tool, error) {
		return toolsystem.NewToolBuilder("delete_task", toolVersion, "Permanently delete a task").
			AddStringParameter("id", "Task id", false).
			AddStringParameter("title", "Task title or unique substring", false).
			SetHandler(func(ctx context.Context, args map[string]any) (map[string]any, error) {
				ownerID, err := userIDFromArgs(args)
				if err != nil {
					return nil, err
				}
				t, err := resolveTaskRef(svc, ctx, ownerID, args)
				if err != nil {
					return nil, err
				}
				if err := svc.DeleteTask(ctx, ownerID, t.ID); err != nil {
					return nil, err
				}
				return map[string]any{"deleted": t.ID.String()}, nil
			}).
			AddTags("task").
			Build()
	}
}

func addTagTool(svc task.Service) func() (toolsystem.Tool, error) {
	return func() (toolsystem.Tool, error) {
		return toolsystem.NewToolBuilder("add_tag", toolVersion, "Attach a tag to a task").
			AddStringParameter("id", "Task id", false).
			AddStringParameter("title", "Task title or unique substring", false).
			AddStringParameter("tag", "Tag name", true).
			SetHandler(func(ctx context.Context, args map[string]any) (map[string]any, error) {
				ownerID, err := userIDFromArgs(args)
				if err != nil {
					return nil, err
				}
				t, err := resolveTaskRef(svc, ctx, ownerID, args)
				if err != nil {
					return nil, err
				}
				updated, err := svc.AddTag(ctx, ownerID, t.ID, stringArg(args, "tag"))
				if err != nil {
					return nil, err
				}
				return taskResult(updated), nil
			}).
			AddTags("task").
			Build()
	}
}

func removeTagTool(svc task.Service) func() (toolsystem.Tool, error) {
	return func() (toolsystem.Tool, error) {
		return toolsystem.NewToolBuilder("remove_tag", toolVersion, "Remove a tag from a task").
			AddStringParameter("id", "Task id", false).
			AddStringParameter("title", "Task title or unique substring", false).
			AddStringParameter("tag", "Tag name", true).
			SetHandler(func(ctx context.Context, args map[string]any) (map[string]any, error) {
				ownerID, err := userIDFromArgs(args)
				if err != nil {
					return nil, err
				}
				t, err := resolveTaskRef(svc, ctx, ownerID, args)
				if err != nil {
					return nil, err
				}
				updated, err := svc.RemoveTag(ctx, ownerID, t.ID, stringArg(args, "tag"))
				if err != nil {
					return nil, err
				}
				return taskResult(updated), nil
			}).
			AddTags("task").
			Build()
	}
}

func setReminderTool(svc task.Service) func() (toolsystem.Tool, error) {
	return func() (toolsystem.Tool, error) {
		return toolsystem.NewToolBuilder("set_reminder", toolVersion, "Set or clear a task's reminder time").
			AddStringParameter("id", "Task id", false).
			AddStringParameter("title", "Task title or unique substring", false).
			AddStringParameter("remind_at", "Natural-language reminder time, or omit to clear", false).
			AddBooleanParameter("clear", "Clear the reminder", false).
			SetHandler(func(ctx context.Context, args map[string]any) (map[string]any, error) {
				ownerID, err := userIDFromArgs(args)
				if err != nil {
					return nil, err
				}
				t, err := resolveTaskRef(svc, ctx, ownerID, args)
				if err != nil {
					return nil, err
				}
				var remindAt *time.Time
				if clear, ok := args["clear"].(bool); ok && clear {
					remindAt = nil
				} else if r, ok := args["remind_at"].(string); ok && r != "" {
					when, err := ResolveDate(r, nowFromArgs(args))
					if err != nil {
						return nil, apperrors.Validation(err.Error())
					}
					remindAt = &when
				}
				updated, err := svc.SetReminder(ctx, ownerID, t.ID, remindAt)
				if err != nil {
					return nil, err
				}
				return taskResult(updated), nil
			}).
			AddTags("task").
			Build()
	}
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func stringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
