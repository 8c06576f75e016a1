package handlers

import (
	"errors"
	"net/http"

	"go-do-list/backend/internal/models"
	"go-do-list/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// GetTasks lists tasks, optionally narrowed by ?folder_id=<id|unassigned>.
func (h *TaskHandler) GetTasks(c *gin.Context) {
	filter, err := services.ParseTaskFilter(c.Query("folder_id"))
	if err != nil {
		handleError(c, err)
		return
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var input models.CreateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, bindErrorMessage(err))
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTask applies a partial update to the task named by ?id=.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := taskIDFromQuery(c)
	if !ok {
		return
	}

	var patch models.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, bindErrorMessage(err))
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), id, patch)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := taskIDFromQuery(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func taskIDFromQuery(c *gin.Context) (uint, bool) {
	raw := c.Query("id")
	if raw == "" {
		badRequest(c, "task id is required")
		return 0, false
	}
	id, ok := parseID(raw)
	if !ok {
		badRequest(c, "invalid task id")
		return 0, false
	}
	return id, true
}

// bindErrorMessage keeps folder_id parse errors readable and hides decoder
// internals otherwise.
func bindErrorMessage(err error) string {
	var folderErr *models.FolderIDError
	if errors.As(err, &folderErr) {
		return folderErr.Error()
	}
	return "invalid request body"
}
