package handlers

import (
	"net/http"
	"time"

	"velum-go/internal/models"
	"velum-go/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TaskHandler struct {
	tasks *services.TaskService
	log   *zap.Logger
}

func NewTaskHandler(tasks *services.TaskService, log *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, log: log}
}

type AssignRequest struct {
	UserID          int        `json:"userId" binding:"required"`
	QuestionnaireID int        `json:"questionnaireId" binding:"required"`
	DueDate         *time.Time `json:"dueDate"`
}

func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.tasks.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, nonNilTasks(tasks))
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req AssignRequest
	if !bindJSON(c, &req) {
		return
	}
	task, err := h.tasks.Assign(c.Request.Context(), actor(c), req.UserID, req.QuestionnaireID, req.DueDate)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.tasks.Delete(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !deleted {
		respondError(c, h.log, models.ErrTaskNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// My lists the caller's tasks.
func (h *TaskHandler) My(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	tasks, err := h.tasks.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, nonNilTasks(tasks))
}

func nonNilTasks(tasks []models.TaskView) []models.TaskView {
	if tasks == nil {
		return []models.TaskView{}
	}
	return tasks
}
