package handlers

import (
	"net/http"

	"velum-go/internal/models"
	"velum-go/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type QuestionnaireHandler struct {
	questionnaires *services.QuestionnaireService
	log            *zap.Logger
}

func NewQuestionnaireHandler(questionnaires *services.QuestionnaireService, log *zap.Logger) *QuestionnaireHandler {
	return &QuestionnaireHandler{questionnaires: questionnaires, log: log}
}

type ParseRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *QuestionnaireHandler) List(c *gin.Context) {
	list, err := h.questionnaires.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if list == nil {
		list = []models.Questionnaire{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *QuestionnaireHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	q, err := h.questionnaires.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *QuestionnaireHandler) Create(c *gin.Context) {
	var tmpl models.QuestionnaireTemplate
	if !bindJSON(c, &tmpl) {
		return
	}
	q, err := h.questionnaires.Create(c.Request.Context(), actor(c), tmpl)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (h *QuestionnaireHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var tmpl models.QuestionnaireTemplate
	if !bindJSON(c, &tmpl) {
		return
	}
	q, err := h.questionnaires.Update(c.Request.Context(), actor(c), id, tmpl)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *QuestionnaireHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.questionnaires.Delete(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Parse turns pasted questionnaire text into a draft template. Nothing is
// stored; the admin reviews the draft and posts it back.
func (h *QuestionnaireHandler) Parse(c *gin.Context) {
	var req ParseRequest
	if !bindJSON(c, &req) {
		return
	}
	tmpl, err := h.questionnaires.Parse(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tmpl)
}
