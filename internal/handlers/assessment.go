package handlers

import (
	"encoding/json"
	"net/http"

	"velum-go/internal/models"
	"velum-go/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AssessmentHandler struct {
	assessments *services.AssessmentService
	log         *zap.Logger
}

func NewAssessmentHandler(assessments *services.AssessmentService, log *zap.Logger) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments, log: log}
}

// SubmitRequest is the body of POST /assessments. Answer values are kept raw
// so the scorer sees exactly what the client sent.
type SubmitRequest struct {
	QuestionnaireID int                        `json:"questionnaireId" binding:"required"`
	Answers         map[string]json.RawMessage `json:"answers"`
}

func (h *AssessmentHandler) Submit(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var req SubmitRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := h.assessments.Submit(c.Request.Context(), userID, req.QuestionnaireID, req.Answers)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// My returns the caller's assessment history.
func (h *AssessmentHandler) My(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	history, err := h.assessments.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if history == nil {
		history = []models.AssessmentSummary{}
	}
	c.JSON(http.StatusOK, history)
}
