package handlers

import (
	"time"

	"github.com/xpanvictor/xarvis/internal/domains/task"
)

// createTaskBody is the JSON body accepted by POST /tasks.
type createTaskBody struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueAt       *time.Time `json:"dueAt"`
	Recurrence  string     `json:"recurrence"`
	Tags        []string   `json:"tags"`
}

func (b createTaskBody) toDomain() task.CreateTaskRequest {
	priority, _ := task.ParsePriority(b.Priority)
	rec := task.Recurrence(b.Recurrence)
	if rec == "" {
		rec = task.RecurrenceNone
	}
	return task.CreateTaskRequest{
		Title:       b.Title,
		Description: b.Description,
		Priority:    priority,
		DueAt:       b.DueAt,
		Recurrence:  rec,
		Tags:        b.Tags,
	}
}

// updateTaskBody is the JSON body accepted by PUT /tasks/:id. Every field is
// optional; omitted fields leave the existing value untouched. clearDueAt and
// clearRemindAt distinguish "leave as is" from "set to nil" the same way
// task.UpdateTaskRequest does.
type updateTaskBody struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Priority      *string    `json:"priority"`
	DueAt         *time.Time `json:"dueAt"`
	ClearDueAt    bool       `json:"clearDueAt"`
	RemindAt      *time.Time `json:"remindAt"`
	ClearRemindAt bool       `json:"clearRemindAt"`
	Recurrence    *string    `json:"recurrence"`
}

func (b updateTaskBody) toDomain() task.UpdateTaskRequest {
	req := task.UpdateTaskRequest{
		Title:         b.Title,
		Description:   b.Description,
		DueAt:         b.DueAt,
		ClearDueAt:    b.ClearDueAt,
		RemindAt:      b.RemindAt,
		ClearRemindAt: b.ClearRemindAt,
	}
	if b.Priority != nil {
		if pr, ok := task.ParsePriority(*b.Priority); ok {
			req.Priority = &pr
		}
	}
	if b.Recurrence != nil {
		r := task.Recurrence(*b.Recurrence)
		req.Recurrence = &r
	}
	return req
}

// taskResponse is the wire shape for a single task.
type taskResponse struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Completed    bool       `json:"completed"`
	Priority     string     `json:"priority"`
	DueAt        *time.Time `json:"dueAt,omitempty"`
	RemindAt     *time.Time `json:"remindAt,omitempty"`
	ReminderSent bool       `json:"reminderSent"`
	Recurrence   string     `json:"recurrence"`
	ParentTaskID *string    `json:"parentTaskId,omitempty"`
	Tags         []string   `json:"tags"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func taskResponseFrom(t *task.Task) taskResponse {
	resp := taskResponse{
		ID:           t.ID.String(),
		Title:        t.Title,
		Description:  t.Description,
		Completed:    t.Completed,
		Priority:     t.Priority.String(),
		DueAt:        t.DueAt,
		RemindAt:     t.RemindAt,
		ReminderSent: t.ReminderSent,
		Recurrence:   string(t.Recurrence),
		Tags:         t.Tags,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	if t.ParentTaskID != nil {
		id := t.ParentTaskID.String()
		resp.ParentTaskID = &id
	}
	return resp
}

type taskListResponseBody struct {
	Tasks []taskResponse `json:"tasks"`
	Count int            `json:"count"`
}

func taskListResponse(tasks []task.Task) taskListResponseBody {
	out := make([]taskResponse, len(tasks))
	for i := range tasks {
		out[i] = taskResponseFrom(&tasks[i])
	}
	return taskListResponseBody{Tasks: out, Count: len(out)}
}
