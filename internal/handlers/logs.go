package handlers

import (
	"net/http"
	"strconv"

	"velum-go/internal/models"
	"velum-go/internal/repository"
	"velum-go/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LogsHandler struct {
	logs *services.LogService
	log  *zap.Logger
}

func NewLogsHandler(logs *services.LogService, log *zap.Logger) *LogsHandler {
	return &LogsHandler{logs: logs, log: log}
}

type DeleteLogsRequest struct {
	IDs []int `json:"ids" binding:"required"`
}

// List handles GET /logs?count=&skip=&level=&search=.
func (h *LogsHandler) List(c *gin.Context) {
	f := repository.LogFilter{
		Level:  c.Query("level"),
		Search: c.Query("search"),
	}
	var ok bool
	if f.Count, ok = queryInt(c, "count"); !ok {
		return
	}
	if f.Skip, ok = queryInt(c, "skip"); !ok {
		return
	}

	entries, err := h.logs.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if entries == nil {
		entries = []models.SystemLog{}
	}
	c.JSON(http.StatusOK, entries)
}

func (h *LogsHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.logs.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LogsHandler) DeleteMany(c *gin.Context) {
	var req DeleteLogsRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.logs.DeleteMany(c.Request.Context(), req.IDs)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// queryInt reads an optional non-negative integer query parameter.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return n, true
}
