package handlers

import (
	"net/http"

	"velum-go/internal/models"
	"velum-go/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SettingsHandler struct {
	settings *services.SettingsService
	log      *zap.Logger
}

func NewSettingsHandler(settings *services.SettingsService, log *zap.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, log: log}
}

func (h *SettingsHandler) List(c *gin.Context) {
	settings, err := h.settings.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if settings == nil {
		settings = []models.AppSetting{}
	}
	c.JSON(http.StatusOK, settings)
}

// Update upserts the posted key/value pairs.
func (h *SettingsHandler) Update(c *gin.Context) {
	var settings []models.AppSetting
	if !bindJSON(c, &settings) {
		return
	}
	if err := h.settings.Update(c.Request.Context(), actor(c), settings); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings updated"})
}

// Reset drops every stored override so file and env values apply again.
func (h *SettingsHandler) Reset(c *gin.Context) {
	if err := h.settings.Reset(c.Request.Context(), actor(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings reset"})
}
