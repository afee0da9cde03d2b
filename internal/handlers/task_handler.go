package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xpanvictor/xarvis/internal/apperrors"
	"github.com/xpanvictor/xarvis/internal/domains/task"
	"github.com/xpanvictor/xarvis/internal/domains/user"
	"github.com/xpanvictor/xarvis/pkg/Logger"
)

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	taskService task.Service
	logger      *Logger.Logger
}

func NewTaskHandler(taskService task.Service, logger *Logger.Logger) *TaskHandler {
	return &TaskHandler{taskService: taskService, logger: logger}
}

// writeErr maps an apperrors.Kind to its HTTP status; anything
// uncategorized is a 500.
func writeErr(c *gin.Context, err error) {
	kind, ok := apperrors.KindOf(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	switch kind {
	case apperrors.KindValidation:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case apperrors.KindUnauthorized:
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	case apperrors.KindNotFound:
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case apperrors.KindConflict:
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case apperrors.KindDeadlineExceeded:
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
	}
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	info, ok := ExtractUserInfo(c)
	if !ok {
		return
	}
	var body createTaskBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request data", Details: err.Error()})
		return
	}
	req := body.toDomain()
	t, err := h.taskService.CreateTask(c.Request.Context(), info.UserID, req)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, taskResponseFrom(t))
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	info, ok := ExtractUserInfo(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid task id"})
		return
	}
	t, err := h.taskService.GetTask(c.Request.Context(), info.UserID, id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, taskResponseFrom(t))
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	info, ok := ExtractUserInfo(c)
	if !ok {
		return
	}
	f := task.TaskFilter{
		Tag:      c.Query("tag"),
		Overdue:  c.Query("overdue") == "true",
		SortDesc: c.DefaultQuery("order", "desc") != "asc",
	}
	if p := c.Query("priority"); p != "" {
		if pr, ok := task.ParsePriority(p); ok {
			f.Priority = &pr
		}
	}
	if comp := c.Query("completed"); comp != "" {
		v := comp == "true"
		f.Completed = &v
	}
	switch c.Query("sort") {
	case "updatedAt":
		f.SortKey = task.SortUpdatedAt
	case "dueAt":
		f.SortKey = task.SortDueAt
	case "priority":
		f.SortKey = task.SortPriority
	case "title":
		f.SortKey = task.SortTitle
	default:
		f.SortKey = task.SortCreatedAt
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), info.UserID, f)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, taskListResponse(tasks))
}

func (h *TaskHandler) SearchTasks(c *gin.Context) {
	info, ok := ExtractUserInfo(c)
	if !ok {
		return
	}
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "q is required"})
		return
	}
	tasks, err := h.taskService.SearchTasks(c.Request.Context(), info.UserID, q)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, taskListResponse(tasks))
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	info, ok := ExtractUserInfo(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid task id"})
		return
	}
	var body updateTaskBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request data", Details: err.Error()})
		return
	}
	t, err := h.taskService.UpdateTask(c.Request.Context(), info.UserID, id, body.toDomain())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, taskResponseFrom(t))
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	info, ok := ExtractUserInfo(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid task id"})
		return
	}
	if err := h.taskService.DeleteTask(c.Request.Context(), info.UserID, id); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "task deleted"})
}

func (h *TaskHandler) ToggleComplete(c *gin.Context) {
	info, ok := ExtractUserInfo(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid task id"})
		return
	}
	t, err := h.taskService.ToggleComplete(c.Request.Context(), info.UserID, id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, taskResponseFrom(t))
}

func (h *TaskHandler) AddTag(c *gin.Context) {
	info, ok := ExtractUserInfo(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid task id"})
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request data"})
		return
	}
	t, err := h.taskService.AddTag(c.Request.Context(), info.UserID, id, body.Name)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, taskResponseFrom(t))
}

func (h *TaskHandler) RemoveTag(c *gin.Context) {
	info, ok := ExtractUserInfo(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid task id"})
		return
	}
	name := c.Param("name")
	t, err := h.taskService.RemoveTag(c.Request.Context(), info.UserID, id, name)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, taskResponseFrom(t))
}

func (h *TaskHandler) SetReminder(c *gin.Context) {
	info, ok := ExtractUserInfo(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid task id"})
		return
	}
	var body struct {
		RemindAt *time.Time `json:"remindAt"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request data"})
		return
	}
	t, err := h.taskService.SetReminder(c.Request.Context(), info.UserID, id, body.RemindAt)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, taskResponseFrom(t))
}

// RegisterTaskRoutes wires the task surface behind user-role authentication.
func (h *TaskHandler) RegisterTaskRoutes(r *gin.RouterGroup, userService user.UserService) {
	tasks := r.Group("/tasks")
	tasks.Use(AuthMiddleware(userService, h.logger), RequireRole(user.RoleUser))
	{
		tasks.POST("", h.CreateTask)
		tasks.GET("", h.ListTasks)
		tasks.GET("/search", h.SearchTasks)
		tasks.GET("/:id", h.GetTask)
		tasks.PUT("/:id", h.UpdateTask)
		tasks.DELETE("/:id", h.DeleteTask)
		tasks.POST("/:id/toggle", h.ToggleComplete)
		tasks.POST("/:id/tags", h.AddTag)
		tasks.DELETE("/:id/tags/:name", h.RemoveTag)
		tasks.PUT("/:id/reminder", h.SetReminder)
	}
}
