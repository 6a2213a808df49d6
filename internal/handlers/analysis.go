package handlers

import (
	"fmt"
	"net/http"

	"velum-go/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AnalysisHandler struct {
	analysis *services.AnalysisService
	log      *zap.Logger
}

func NewAnalysisHandler(analysis *services.AnalysisService, log *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis, log: log}
}

func (h *AnalysisHandler) Stats(c *gin.Context) {
	stats, err := h.analysis.OverallStats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AnalysisHandler) UserHistory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	history, err := h.analysis.UserHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// Export returns the questionnaire's answers as a table, or as a CSV
// download when ?format=csv.
func (h *AnalysisHandler) Export(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if c.Query("format") == "csv" {
		data, err := h.analysis.ExportCSV(c.Request.Context(), id)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="questionnaire_%d.csv"`, id))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
		return
	}

	table, err := h.analysis.ExportRows(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

// Run analyzes a batch of records that have no analysis yet. ?limit= caps
// the batch.
func (h *AnalysisHandler) Run(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	n, err := h.analysis.RunBatch(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyzed": n})
}

func (h *AnalysisHandler) Analyze(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	text, err := h.analysis.AnalyzeAssessment(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assessmentId": id, "analysis": text})
}
